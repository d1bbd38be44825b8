// Package settlement drives a sold auction's transaction from initiation to
// completion through participant-issued action events.
package settlement

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/events"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/internal/serial"
	"auction-engine/internal/telemetry"
	"auction-engine/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Publisher fans settlement updates out to an auction's subscribers
type Publisher interface {
	Broadcast(auctionID string, ev events.Event)
}

// SubmitResult is the outcome of an accepted or deduplicated action event
type SubmitResult struct {
	Transaction model.Transaction
	Duplicate   bool
}

// DefaultActionTimeout bounds the wait for a transaction's writer
const DefaultActionTimeout = 2 * time.Second

// Engine owns transaction status. Each transaction has a single writer.
type Engine struct {
	repo      repository.SettlementDB
	publisher Publisher
	units     *serial.Set
	clock     func() time.Time
	timeout   time.Duration
}

type noopPublisher struct{}

func (noopPublisher) Broadcast(string, events.Event) {}

// NewEngine creates a settlement engine over the given store
func NewEngine(repo repository.SettlementDB, publisher Publisher, clock func() time.Time) *Engine {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		repo:      repo,
		publisher: publisher,
		units:     serial.NewSet(),
		clock:     clock,
		timeout:   DefaultActionTimeout,
	}
}

// SetActionTimeout changes how long Submit waits for a busy transaction
func (e *Engine) SetActionTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// Open seeds the transaction for a finalized auction. It is idempotent per
// auction; an auction without a winner opens nothing and reports false.
func (e *Engine) Open(ctx context.Context, result model.AuctionResult) (model.Transaction, bool, error) {
	if !result.HasWinner() {
		return model.Transaction{}, false, nil
	}

	existing, err := e.repo.GetTransactionByAuction(ctx, result.AuctionID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, biddingerrors.ErrTransactionNotFound) {
		return model.Transaction{}, false, fmt.Errorf("settlement: failed to look up transaction for auction %s: %w", result.AuctionID, err)
	}

	now := e.clock()
	txn := model.Transaction{
		TransactionID: utils.GenerateID(),
		AuctionID:     result.AuctionID,
		ListingID:     result.ListingID,
		SellerID:      result.SellerID,
		BuyerID:       *result.WinnerID,
		Amount:        result.FinalAmount,
		Status:        model.TransactionCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if txn.SellerID == txn.BuyerID {
		return model.Transaction{}, false, fmt.Errorf("settlement: %w - buyer and seller must differ", biddingerrors.ErrInvalidPayload)
	}

	if err := e.repo.CreateTransaction(ctx, txn); err != nil {
		if errors.Is(err, biddingerrors.ErrAlreadyExists) {
			// lost a race with another opener for the same auction
			existing, getErr := e.repo.GetTransactionByAuction(ctx, result.AuctionID)
			if getErr != nil {
				return model.Transaction{}, false, fmt.Errorf("settlement: %w", getErr)
			}
			return existing, true, nil
		}
		return model.Transaction{}, false, fmt.Errorf("settlement: failed to create transaction for auction %s: %w", result.AuctionID, err)
	}

	e.publisher.Broadcast(txn.AuctionID, events.SettlementUpdated{Transaction: txn})
	utils.Info("settlement: transaction opened", map[string]any{
		"transaction_id": txn.TransactionID,
		"auction_id":     txn.AuctionID,
		"buyer_id":       txn.BuyerID,
		"amount":         txn.Amount,
	})
	return txn, true, nil
}

// AuctionEnded seeds settlement when the registry finalizes an auction
func (e *Engine) AuctionEnded(ctx context.Context, result model.AuctionResult) {
	operation := func() (model.Transaction, error) {
		txn, _, err := e.Open(ctx, result)
		if errors.Is(err, biddingerrors.ErrInvalidPayload) {
			return txn, backoff.Permanent(err)
		}
		return txn, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond

	if _, err := backoff.Retry(ctx, operation, backoff.WithBackOff(b), backoff.WithMaxTries(5)); err != nil {
		utils.Error("settlement: failed to open transaction", map[string]any{
			"auction_id": result.AuctionID,
			"error":      err.Error(),
		})
	}
}

// Submit applies one action event. A redelivered event id is a successful no-op;
// an event that does not fit the current status or issuer changes nothing.
func (e *Engine) Submit(ctx context.Context, ev model.ActionEvent) (SubmitResult, error) {
	if ev.EventID == "" || ev.TransactionID == "" || ev.IssuerID == "" {
		return SubmitResult{}, fmt.Errorf("settlement: %w - event, transaction and issuer IDs are required", biddingerrors.ErrInvalidPayload)
	}
	if !ev.Kind.Valid() {
		return SubmitResult{}, fmt.Errorf("settlement: %w - unknown action kind %q", biddingerrors.ErrInvalidPayload, ev.Kind)
	}

	if result, dup, err := e.duplicate(ctx, ev); err != nil || dup {
		return result, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	unit := e.units.Get(ev.TransactionID)
	if err := unit.Acquire(lockCtx); err != nil {
		return SubmitResult{}, fmt.Errorf("settlement: %w - transaction %s: %w", biddingerrors.ErrSubmissionTimeout, ev.TransactionID, err)
	}
	defer unit.Release()

	// the event may have been applied while waiting for the writer
	if result, dup, err := e.duplicate(ctx, ev); err != nil || dup {
		return result, err
	}

	txn, err := e.repo.GetTransaction(ctx, ev.TransactionID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("settlement: %w", err)
	}
	if ev.IssuerID != txn.SellerID && ev.IssuerID != txn.BuyerID {
		return SubmitResult{}, fmt.Errorf("settlement: %w - %s on transaction %s", biddingerrors.ErrNotParticipant, ev.IssuerID, txn.TransactionID)
	}

	to, ok := next(txn, ev.Kind, ev.IssuerID)
	if !ok {
		utils.Info("settlement: action rejected", map[string]any{
			"transaction_id": txn.TransactionID,
			"event_id":       ev.EventID,
			"kind":           ev.Kind,
			"status":         txn.Status,
			"issuer_id":      ev.IssuerID,
		})
		return SubmitResult{}, fmt.Errorf("settlement: %w - %s not allowed from %s by %s", biddingerrors.ErrInvalidTransition, ev.Kind, txn.Status, ev.IssuerID)
	}
	if ev.Kind == model.ActionReview && (ev.Payload.Rating < 1 || ev.Payload.Rating > 5) {
		return SubmitResult{}, fmt.Errorf("settlement: %w - rating must be between 1 and 5", biddingerrors.ErrInvalidPayload)
	}

	now := e.clock()
	ev.FromStatus = txn.Status
	ev.ToStatus = to
	ev.CreatedAt = now

	updated := txn
	updated.Status = to
	updated.UpdatedAt = now
	if ev.Kind == model.ActionReview {
		updated.Rating = ev.Payload.Rating
		updated.Comment = ev.Payload.Comment
	}

	if err := e.repo.ApplyActionEvent(ctx, ev, updated); err != nil {
		if errors.Is(err, biddingerrors.ErrDuplicateEvent) {
			// applied by another process holding the same transaction
			if result, dup, dupErr := e.duplicate(ctx, ev); dupErr != nil || dup {
				return result, dupErr
			}
		}
		return SubmitResult{}, fmt.Errorf("settlement: failed to apply event %s: %w", ev.EventID, err)
	}

	telemetry.SettlementTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(ev.Kind))))
	e.publisher.Broadcast(updated.AuctionID, events.SettlementUpdated{Transaction: updated})
	utils.Info("settlement: transaction advanced", map[string]any{
		"transaction_id": updated.TransactionID,
		"event_id":       ev.EventID,
		"kind":           ev.Kind,
		"from":           ev.FromStatus,
		"to":             ev.ToStatus,
	})
	return SubmitResult{Transaction: updated}, nil
}

// duplicate reports a redelivery of an already applied event. Only the
// original issuer replaying the same action gets the no-op answer.
func (e *Engine) duplicate(ctx context.Context, ev model.ActionEvent) (SubmitResult, bool, error) {
	stored, seen, err := e.repo.FindActionEvent(ctx, ev.TransactionID, ev.EventID)
	if err != nil {
		return SubmitResult{}, false, fmt.Errorf("settlement: failed to check event %s: %w", ev.EventID, err)
	}
	if !seen {
		return SubmitResult{}, false, nil
	}

	result, err := e.current(ctx, ev.TransactionID, true)
	if err != nil {
		return SubmitResult{}, true, err
	}
	txn := result.Transaction
	if ev.IssuerID != txn.SellerID && ev.IssuerID != txn.BuyerID {
		return SubmitResult{}, true, fmt.Errorf("settlement: %w - %s on transaction %s", biddingerrors.ErrNotParticipant, ev.IssuerID, txn.TransactionID)
	}
	if stored.IssuerID != ev.IssuerID || stored.Kind != ev.Kind {
		return SubmitResult{}, true, fmt.Errorf("settlement: %w - event id %s already used for %s by %s", biddingerrors.ErrInvalidPayload, ev.EventID, stored.Kind, stored.IssuerID)
	}

	utils.Debug("settlement: duplicate event ignored", map[string]any{
		"transaction_id": ev.TransactionID,
		"event_id":       ev.EventID,
	})
	return result, true, nil
}

func (e *Engine) current(ctx context.Context, transactionID string, duplicate bool) (SubmitResult, error) {
	txn, err := e.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("settlement: %w", err)
	}
	return SubmitResult{Transaction: txn, Duplicate: duplicate}, nil
}

// Get returns a transaction by id
func (e *Engine) Get(ctx context.Context, transactionID string) (model.Transaction, error) {
	txn, err := e.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("settlement: %w", err)
	}
	return txn, nil
}

// GetByAuction returns the transaction seeded by an auction
func (e *Engine) GetByAuction(ctx context.Context, auctionID string) (model.Transaction, error) {
	txn, err := e.repo.GetTransactionByAuction(ctx, auctionID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("settlement: %w", err)
	}
	return txn, nil
}

// Events returns the accepted action events of a transaction in order
func (e *Engine) Events(ctx context.Context, transactionID string) ([]model.ActionEvent, error) {
	evs, err := e.repo.ListActionEvents(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("settlement: %w", err)
	}
	return evs, nil
}
