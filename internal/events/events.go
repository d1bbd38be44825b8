// Package events defines the messages exchanged over subscriber connections.
//
// Both directions are closed sets: inbound client messages implement Message,
// outbound server events implement Event. Adding a kind means adding a type and
// a case to Decode or Encode.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	model "auction-engine/internal/models"
)

// ErrUnknownType is returned for envelopes with an unrecognised type tag
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the wire frame for every message in both directions
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Outbound type tags
const (
	TypeNewBid            = "newBid"
	TypeBidAccepted       = "bidAccepted"
	TypeAuctionEnded      = "auctionEnded"
	TypeAuctionState      = "auctionState"
	TypeSettlementUpdated = "settlementUpdated"
	TypeActionResult      = "actionResult"
	TypeError             = "error"
)

// Inbound type tags
const (
	TypeJoin         = "join"
	TypeLeave        = "leave"
	TypePlaceBid     = "placeBid"
	TypeSubmitAction = "submitAction"
	TypeSync         = "sync"
)

// Event is a server to client event
type Event interface {
	isEvent()
}

// NewBid is broadcast to every subscriber of an auction when a bid commits
type NewBid struct {
	AuctionID string        `json:"auctionId"`
	Bid       model.Bid     `json:"bid"`
	Auction   model.Auction `json:"auction"`
}

// BidAccepted is sent to the submitter of a committed bid
type BidAccepted struct {
	Auction model.Auction `json:"auction"`
	Bid     model.Bid     `json:"bid"`
}

// AuctionEnded is broadcast once when an auction is finalized
type AuctionEnded struct {
	AuctionID   string  `json:"auctionId"`
	WinnerID    *string `json:"winnerId"`
	FinalAmount float64 `json:"finalAmount"`
}

// AuctionState carries a full auction snapshot, used on join and for reconciliation
type AuctionState struct {
	Auction model.Auction `json:"auction"`
}

// SettlementUpdated is broadcast after a transaction changes status
type SettlementUpdated struct {
	Transaction model.Transaction `json:"transaction"`
}

// ActionResult answers a submitAction to its issuer
type ActionResult struct {
	TransactionID string                  `json:"transactionId"`
	NewStatus     model.TransactionStatus `json:"newStatus"`
	Duplicate     bool                    `json:"duplicate"`
}

// Error is sent only to the connection whose request failed
type Error struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	AuctionID  string   `json:"auctionId,omitempty"`
	MinimumBid *float64 `json:"minimumBid,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
}

func (NewBid) isEvent()            {}
func (BidAccepted) isEvent()       {}
func (AuctionEnded) isEvent()      {}
func (AuctionState) isEvent()      {}
func (SettlementUpdated) isEvent() {}
func (ActionResult) isEvent()      {}
func (Error) isEvent()             {}

// Encode wraps an event in its envelope
func Encode(ev Event) ([]byte, error) {
	var tag string
	switch ev.(type) {
	case NewBid:
		tag = TypeNewBid
	case BidAccepted:
		tag = TypeBidAccepted
	case AuctionEnded:
		tag = TypeAuctionEnded
	case AuctionState:
		tag = TypeAuctionState
	case SettlementUpdated:
		tag = TypeSettlementUpdated
	case ActionResult:
		tag = TypeActionResult
	case Error:
		tag = TypeError
	default:
		return nil, fmt.Errorf("encode %T: %w", ev, ErrUnknownType)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", tag, err)
	}
	return json.Marshal(Envelope{Type: tag, Payload: payload})
}

// Message is a client to server request
type Message interface {
	isMessage()
}

// Join subscribes the connection to an auction's stream
type Join struct {
	AuctionID string `json:"auctionId"`
}

// Leave stops delivery for an auction
type Leave struct {
	AuctionID string `json:"auctionId"`
}

// PlaceBid submits a bid; the bidder is the connection's authenticated user
type PlaceBid struct {
	AuctionID string    `json:"auctionId"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// SubmitAction submits a settlement action event
type SubmitAction struct {
	TransactionID string              `json:"transactionId"`
	EventID       string              `json:"eventId"`
	Kind          model.ActionKind    `json:"kind"`
	Payload       model.ActionPayload `json:"payload"`
}

// Sync asks for the latest durable state of an auction after a reconnect
type Sync struct {
	AuctionID string `json:"auctionId"`
}

func (Join) isMessage()         {}
func (Leave) isMessage()        {}
func (PlaceBid) isMessage()     {}
func (SubmitAction) isMessage() {}
func (Sync) isMessage()         {}

// Decode parses an inbound envelope into its concrete message
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var msg Message
	switch env.Type {
	case TypeJoin:
		var m Join
		if err := unmarshalPayload(env, &m); err != nil {
			return nil, err
		}
		msg = m
	case TypeLeave:
		var m Leave
		if err := unmarshalPayload(env, &m); err != nil {
			return nil, err
		}
		msg = m
	case TypePlaceBid:
		var m PlaceBid
		if err := unmarshalPayload(env, &m); err != nil {
			return nil, err
		}
		msg = m
	case TypeSubmitAction:
		var m SubmitAction
		if err := unmarshalPayload(env, &m); err != nil {
			return nil, err
		}
		msg = m
	case TypeSync:
		var m Sync
		if err := unmarshalPayload(env, &m); err != nil {
			return nil, err
		}
		msg = m
	default:
		return nil, fmt.Errorf("decode %q: %w", env.Type, ErrUnknownType)
	}
	return msg, nil
}

func unmarshalPayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("decode %s: empty payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return nil
}
