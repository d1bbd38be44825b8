package handler

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_handler.go -package=handler

import (
	"context"
	"net/http"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	Register(ctx context.Context, auction model.Auction) (model.Auction, error)
	GetState(ctx context.Context, auctionID string) (model.Auction, error)
	Bids(ctx context.Context, auctionID string) ([]model.Bid, error)
	SubmitBid(ctx context.Context, auctionID string, req model.BidRequest) (model.Bid, error)
	Cancel(ctx context.Context, auctionID, requesterID string) (model.Auction, error)
}

type BiddingHandler struct {
	service AuctionServiceInterface
}

func NewBiddingHandler(service AuctionServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *BiddingHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	var start time.Time
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}

	auction, err := h.service.Register(c.Request.Context(), model.Auction{
		ListingID:     req.ListingID,
		SellerID:      utils.UserID(c),
		StartingPrice: req.StartingPrice,
		Increment:     req.Increment,
		BuyNowPrice:   req.BuyNowPrice,
		StartTime:     start,
		EndTime:       req.EndTime.UTC(),
	})
	if err != nil {
		status, _ := helpers.RespondError(c, err)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"handler":    "CreateAuctionHandler",
			"listing_id": req.ListingID,
			"seller_id":  utils.UserID(c),
			"status":     status,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  auction.SellerID,
		"status":     auction.Status,
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetState(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "auction retrieved successfully")
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.Bids(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("GetBidsByAuctionHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, helpers.NewBidResponse(bid))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bidReq := model.BidRequest{BidderID: utils.UserID(c), Amount: req.Amount}
	if req.ClientTime != nil {
		bidReq.ClientTime = *req.ClientTime
	}

	bid, err := h.service.SubmitBid(c.Request.Context(), auctionID, bidReq)
	if err != nil {
		status, message := helpers.RespondError(c, err)
		utils.Warn("PlaceBidHandler: bid not accepted", map[string]any{
			"handler":    "PlaceBidHandler",
			"auction_id": auctionID,
			"bidder_id":  bidReq.BidderID,
			"amount":     req.Amount,
			"status":     status,
			"reason":     message,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
		"sequence":   bid.Sequence,
	})
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *BiddingHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.Cancel(c.Request.Context(), auctionID, utils.UserID(c))
	if err != nil {
		helpers.RespondError(c, err)
		utils.Warn("CancelAuctionHandler: auction not cancelled", map[string]any{
			"auction_id": auctionID,
			"user_id":    utils.UserID(c),
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "auction cancelled successfully")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled successfully", map[string]any{"auction_id": auctionID})
}
