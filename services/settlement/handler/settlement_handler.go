package handler

//go:generate mockgen -source=settlement_handler.go -destination=mock_settlement_handler.go -package=handler

import (
	"context"
	"net/http"

	model "auction-engine/internal/models"
	"auction-engine/internal/settlement"
	bidhelpers "auction-engine/services/bidding/helpers"
	"auction-engine/services/settlement/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

type SettlementServiceInterface interface {
	Get(ctx context.Context, transactionID string) (model.Transaction, error)
	GetByAuction(ctx context.Context, auctionID string) (model.Transaction, error)
	Events(ctx context.Context, transactionID string) ([]model.ActionEvent, error)
	Submit(ctx context.Context, ev model.ActionEvent) (settlement.SubmitResult, error)
}

type SettlementHandler struct {
	service SettlementServiceInterface
}

func NewSettlementHandler(service SettlementServiceInterface) *SettlementHandler {
	return &SettlementHandler{service: service}
}

// GetTransactionHandler handles GET /transactions/:transaction_id
func (h *SettlementHandler) GetTransactionHandler(c *gin.Context) {
	transactionID := c.Param("transaction_id")
	txn, err := h.service.Get(c.Request.Context(), transactionID)
	if err != nil {
		bidhelpers.RespondError(c, err)
		utils.Warn("GetTransactionHandler: error retrieving transaction", map[string]any{"transaction_id": transactionID, "error": err.Error()})
		return
	}
	utils.JSONResponse(c, http.StatusOK, txn, "transaction retrieved successfully")
}

// GetAuctionTransactionHandler handles GET /auctions/:auction_id/transaction
func (h *SettlementHandler) GetAuctionTransactionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	txn, err := h.service.GetByAuction(c.Request.Context(), auctionID)
	if err != nil {
		bidhelpers.RespondError(c, err)
		utils.Warn("GetAuctionTransactionHandler: error retrieving transaction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}
	utils.JSONResponse(c, http.StatusOK, txn, "transaction retrieved successfully")
}

// GetTransactionEventsHandler handles GET /transactions/:transaction_id/events
func (h *SettlementHandler) GetTransactionEventsHandler(c *gin.Context) {
	transactionID := c.Param("transaction_id")
	evs, err := h.service.Events(c.Request.Context(), transactionID)
	if err != nil {
		bidhelpers.RespondError(c, err)
		utils.Warn("GetTransactionEventsHandler: error retrieving events", map[string]any{"transaction_id": transactionID, "error": err.Error()})
		return
	}
	if evs == nil {
		evs = []model.ActionEvent{}
	}
	utils.JSONResponse(c, http.StatusOK, evs, "events retrieved successfully")
}

// SubmitActionHandler handles POST /transactions/:transaction_id/events
func (h *SettlementHandler) SubmitActionHandler(c *gin.Context) {
	transactionID := c.Param("transaction_id")
	var req helpers.SubmitActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bidhelpers.HandleBindError(c, "SubmitActionHandler", err)
		return
	}

	ev := req.ToEvent(transactionID, utils.UserID(c), utils.IDOrGenerate(req.EventID))
	result, err := h.service.Submit(c.Request.Context(), ev)
	if err != nil {
		status, message := bidhelpers.RespondError(c, err)
		utils.Warn("SubmitActionHandler: action not applied", map[string]any{
			"transaction_id": transactionID,
			"event_id":       ev.EventID,
			"kind":           ev.Kind,
			"issuer_id":      ev.IssuerID,
			"status":         status,
			"reason":         message,
		})
		return
	}

	resp := helpers.ActionResponse{
		TransactionID: result.Transaction.TransactionID,
		EventID:       ev.EventID,
		NewStatus:     result.Transaction.Status,
		Duplicate:     result.Duplicate,
	}
	message := "action applied successfully"
	if result.Duplicate {
		message = "action already applied"
	}
	utils.JSONResponse(c, http.StatusOK, resp, message)
	bidhelpers.LogSuccess("SubmitActionHandler", message, map[string]any{
		"transaction_id": resp.TransactionID,
		"event_id":       ev.EventID,
		"new_status":     resp.NewStatus,
	})
}
