package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
)

// AuctionDB defines the durable auction and bid storage used by the registry
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctionsByStatus(ctx context.Context, statuses ...model.AuctionStatus) ([]model.Auction, error)
	// CommitBid inserts an accepted bid and the auction state it produced in one atomic step
	CommitBid(ctx context.Context, bid model.Bid, auction model.Auction) error
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	// TransitionAuction replaces the auction only if its stored status equals from
	TransitionAuction(ctx context.Context, auction model.Auction, from model.AuctionStatus) error
}

// SettlementDB defines transaction and action event storage for the settlement engine
type SettlementDB interface {
	CreateTransaction(ctx context.Context, txn model.Transaction) error
	GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error)
	GetTransactionByAuction(ctx context.Context, auctionID string) (model.Transaction, error)
	// FindActionEvent looks up an applied event by its id within one transaction
	FindActionEvent(ctx context.Context, transactionID, eventID string) (model.ActionEvent, bool, error)
	// ApplyActionEvent appends the event and stores txn if the stored status equals event.FromStatus
	ApplyActionEvent(ctx context.Context, event model.ActionEvent, txn model.Transaction) error
	ListActionEvents(ctx context.Context, transactionID string) ([]model.ActionEvent, error)
}

// event ids are idempotency keys scoped to their transaction
type eventKey struct {
	transactionID string
	eventID       string
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB and SettlementDB
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[string]model.Auction       // key: auctionID
	bids         map[string][]model.Bid         // key: auctionID -> bids in sequence order
	transactions map[string]model.Transaction   // key: transactionID
	byAuction    map[string]string              // key: auctionID -> transactionID
	events       map[string][]model.ActionEvent // key: transactionID -> log
	eventIDs     map[eventKey]model.ActionEvent
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:     make(map[string]model.Auction),
		bids:         make(map[string][]model.Bid),
		transactions: make(map[string]model.Transaction),
		byAuction:    make(map[string]string),
		events:       make(map[string][]model.ActionEvent),
		eventIDs:     make(map[eventKey]model.ActionEvent),
	}
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}
	if _, ok := r.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrAlreadyExists)
	}
	r.auctions[auction.AuctionID] = auction.Clone()
	return nil
}

// GetAuction returns the stored auction
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return auction.Clone(), nil
}

// ListAuctionsByStatus returns auctions in any of the given statuses ordered by end time
func (r *MemoryRepo) ListAuctionsByStatus(_ context.Context, statuses ...model.AuctionStatus) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[model.AuctionStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	out := make([]model.Auction, 0)
	for _, a := range r.auctions {
		if len(want) == 0 || want[a.Status] {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return out, nil
}

// CommitBid records an accepted bid and the new auction state together
func (r *MemoryRepo) CommitBid(_ context.Context, bid model.Bid, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("commit bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if stored.Status != model.AuctionActive {
		return fmt.Errorf("commit bid for auction %s: %w - stored status %s", bid.AuctionID, biddingerrors.ErrStatusConflict, stored.Status)
	}
	if bid.Sequence != stored.LastSequence+1 {
		return fmt.Errorf("commit bid for auction %s: %w - expected %d, got %d", bid.AuctionID, biddingerrors.ErrSequenceConflict, stored.LastSequence+1, bid.Sequence)
	}

	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)
	r.auctions[bid.AuctionID] = auction.Clone()
	return nil
}

// GetBidsByAuction returns all accepted bids for an auction in sequence order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return append([]model.Bid{}, r.bids[auctionID]...), nil
}

// TransitionAuction replaces the auction when its stored status still equals from
func (r *MemoryRepo) TransitionAuction(_ context.Context, auction model.Auction, from model.AuctionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.auctions[auction.AuctionID]
	if !ok {
		return fmt.Errorf("transition auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if stored.Status != from {
		return fmt.Errorf("transition auction %s: %w - stored %s, expected %s", auction.AuctionID, biddingerrors.ErrStatusConflict, stored.Status, from)
	}
	r.auctions[auction.AuctionID] = auction.Clone()
	return nil
}

// CreateTransaction stores a new transaction; one per auction
func (r *MemoryRepo) CreateTransaction(_ context.Context, txn model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transactions[txn.TransactionID]; ok {
		return fmt.Errorf("create transaction %s: %w", txn.TransactionID, biddingerrors.ErrAlreadyExists)
	}
	if _, ok := r.byAuction[txn.AuctionID]; ok {
		return fmt.Errorf("create transaction for auction %s: %w", txn.AuctionID, biddingerrors.ErrAlreadyExists)
	}
	r.transactions[txn.TransactionID] = txn
	r.byAuction[txn.AuctionID] = txn.TransactionID
	return nil
}

// GetTransaction returns the stored transaction
func (r *MemoryRepo) GetTransaction(_ context.Context, transactionID string) (model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, ok := r.transactions[transactionID]
	if !ok {
		return model.Transaction{}, fmt.Errorf("get transaction %s: %w", transactionID, biddingerrors.ErrTransactionNotFound)
	}
	return txn, nil
}

// GetTransactionByAuction returns the transaction seeded by an auction
func (r *MemoryRepo) GetTransactionByAuction(_ context.Context, auctionID string) (model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAuction[auctionID]
	if !ok {
		return model.Transaction{}, fmt.Errorf("get transaction for auction %s: %w", auctionID, biddingerrors.ErrTransactionNotFound)
	}
	return r.transactions[id], nil
}

// FindActionEvent returns the applied event with this id on the transaction, if any
func (r *MemoryRepo) FindActionEvent(_ context.Context, transactionID, eventID string) (model.ActionEvent, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.eventIDs[eventKey{transactionID, eventID}]
	return ev, ok, nil
}

// ApplyActionEvent appends the event to the log and stores the transaction atomically
func (r *MemoryRepo) ApplyActionEvent(_ context.Context, event model.ActionEvent, txn model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.transactions[event.TransactionID]
	if !ok {
		return fmt.Errorf("apply event %s: %w", event.EventID, biddingerrors.ErrTransactionNotFound)
	}
	key := eventKey{event.TransactionID, event.EventID}
	if _, dup := r.eventIDs[key]; dup {
		return fmt.Errorf("apply event %s: %w", event.EventID, biddingerrors.ErrDuplicateEvent)
	}
	if stored.Status != event.FromStatus {
		return fmt.Errorf("apply event %s: %w - stored %s, expected %s", event.EventID, biddingerrors.ErrStatusConflict, stored.Status, event.FromStatus)
	}

	r.events[event.TransactionID] = append(r.events[event.TransactionID], event)
	r.eventIDs[key] = event
	r.transactions[event.TransactionID] = txn
	return nil
}

// ListActionEvents returns the event log for a transaction in append order
func (r *MemoryRepo) ListActionEvents(_ context.Context, transactionID string) ([]model.ActionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.transactions[transactionID]; !ok {
		return nil, fmt.Errorf("list events for transaction %s: %w", transactionID, biddingerrors.ErrTransactionNotFound)
	}
	return append([]model.ActionEvent{}, r.events[transactionID]...), nil
}
