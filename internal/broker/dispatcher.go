package broker

//go:generate mockgen -source=dispatcher.go -destination=mock_dispatcher.go -package=broker

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/events"
	model "auction-engine/internal/models"
	"auction-engine/internal/settlement"
	"auction-engine/utils"
	"context"
	"errors"
	"fmt"
)

// AuctionService is the part of the auction registry the broker routes to
type AuctionService interface {
	SubmitBid(ctx context.Context, auctionID string, req model.BidRequest) (model.Bid, error)
	GetState(ctx context.Context, auctionID string) (model.Auction, error)
	DurableState(ctx context.Context, auctionID string) (model.Auction, error)
}

// SettlementService is the part of the settlement engine the broker routes to
type SettlementService interface {
	Submit(ctx context.Context, ev model.ActionEvent) (settlement.SubmitResult, error)
}

// Session is a connection as seen by the dispatcher
type Session interface {
	Subscriber
	UserID() string
	AllowBid() bool
}

// Dispatcher routes inbound connection messages to the registry and the settlement engine
type Dispatcher struct {
	hub        *Hub
	auctions   AuctionService
	settlement SettlementService
}

// NewDispatcher wires the broker to its services
func NewDispatcher(hub *Hub, auctions AuctionService, settlement SettlementService) *Dispatcher {
	return &Dispatcher{hub: hub, auctions: auctions, settlement: settlement}
}

// Handle processes one inbound message. Failures are answered to the sender only.
func (d *Dispatcher) Handle(ctx context.Context, s Session, msg events.Message) {
	switch m := msg.(type) {
	case events.Join:
		d.join(ctx, s, m)
	case events.Leave:
		d.hub.Leave(m.AuctionID, s)
	case events.PlaceBid:
		d.placeBid(ctx, s, m)
	case events.SubmitAction:
		d.submitAction(ctx, s, m)
	case events.Sync:
		d.sync(ctx, s, m)
	default:
		reply(s, events.Error{Code: "UnknownType", Message: fmt.Sprintf("unsupported message %T", msg)})
	}
}

func (d *Dispatcher) join(ctx context.Context, s Session, m events.Join) {
	state, err := d.auctions.GetState(ctx, m.AuctionID)
	if err != nil {
		replyError(s, m.AuctionID, err)
		return
	}
	d.hub.Join(m.AuctionID, s)
	reply(s, events.AuctionState{Auction: state})
}

func (d *Dispatcher) placeBid(ctx context.Context, s Session, m events.PlaceBid) {
	if s.UserID() == "" {
		replyError(s, m.AuctionID, fmt.Errorf("broker: %w - guests cannot bid", biddingerrors.ErrForbidden))
		return
	}
	if !s.AllowBid() {
		replyError(s, m.AuctionID, fmt.Errorf("broker: %w", biddingerrors.ErrRateLimited))
		return
	}

	bid, err := d.auctions.SubmitBid(ctx, m.AuctionID, model.BidRequest{
		BidderID:   s.UserID(),
		Amount:     m.Amount,
		ClientTime: m.Timestamp,
	})
	if err != nil {
		replyError(s, m.AuctionID, err)
		return
	}

	state, err := d.auctions.GetState(ctx, m.AuctionID)
	if err != nil {
		replyError(s, m.AuctionID, err)
		return
	}
	reply(s, events.BidAccepted{Auction: state, Bid: bid})
}

func (d *Dispatcher) submitAction(ctx context.Context, s Session, m events.SubmitAction) {
	if s.UserID() == "" {
		replyError(s, "", fmt.Errorf("broker: %w - guests cannot submit actions", biddingerrors.ErrForbidden))
		return
	}

	result, err := d.settlement.Submit(ctx, model.ActionEvent{
		EventID:       utils.IDOrGenerate(m.EventID),
		TransactionID: m.TransactionID,
		IssuerID:      s.UserID(),
		Kind:          m.Kind,
		Payload:       m.Payload,
	})
	if err != nil {
		replyError(s, "", err)
		return
	}
	reply(s, events.ActionResult{
		TransactionID: result.Transaction.TransactionID,
		NewStatus:     result.Transaction.Status,
		Duplicate:     result.Duplicate,
	})
}

func (d *Dispatcher) sync(ctx context.Context, s Session, m events.Sync) {
	state, err := d.auctions.DurableState(ctx, m.AuctionID)
	if err != nil {
		replyError(s, m.AuctionID, err)
		return
	}
	reply(s, events.AuctionState{Auction: state})
}

// reply sends an event to one subscriber
func reply(s Subscriber, ev events.Event) {
	data, err := events.Encode(ev)
	if err != nil {
		utils.Error("broker: failed to encode reply", map[string]any{"subscriber_id": s.ID(), "error": err.Error()})
		return
	}
	if !s.Send(data) {
		utils.Warn("broker: reply not delivered", map[string]any{
			"subscriber_id": s.ID(),
			"reason":        biddingerrors.Code(biddingerrors.ErrConnectionUnavailable),
		})
	}
}

// ErrorEvent converts a service error into the error event sent to its requester
func ErrorEvent(auctionID string, err error) events.Error {
	ev := events.Error{
		Code:      biddingerrors.Code(err),
		Message:   err.Error(),
		AuctionID: auctionID,
		Retryable: biddingerrors.IsRetryable(err),
	}
	var rejection *biddingerrors.BidRejection
	if errors.As(err, &rejection) {
		minimum := rejection.Minimum
		ev.MinimumBid = &minimum
	}
	return ev
}

func replyError(s Subscriber, auctionID string, err error) {
	reply(s, ErrorEvent(auctionID, err))
}
