package bidding

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/events"
	"auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/internal/serial"
	"auction-engine/internal/telemetry"
	"auction-engine/utils"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Publisher fans events out to the subscribers of an auction. Implementations
// must not block: the registry calls Broadcast while it holds the auction.
type Publisher interface {
	Broadcast(auctionID string, ev events.Event)
}

// EndListener is told about every finalized auction exactly once per process
type EndListener interface {
	AuctionEnded(ctx context.Context, result models.AuctionResult)
}

// Options tune the registry
type Options struct {
	// ExtensionWindow is the anti-snipe window E
	ExtensionWindow time.Duration
	// BidTimeout bounds acquiring the auction plus the persistence round trip
	BidTimeout time.Duration
	Clock      func() time.Time
}

// auctionCell is the authoritative state of one auction
type auctionCell struct {
	writer   *serial.Unit
	snapshot atomic.Pointer[models.Auction]
}

func newAuctionCell(a models.Auction) *auctionCell {
	c := &auctionCell{writer: serial.NewUnit()}
	c.publish(a)
	return c
}

func (c *auctionCell) load() models.Auction {
	return c.snapshot.Load().Clone()
}

func (c *auctionCell) publish(a models.Auction) {
	cp := a.Clone()
	c.snapshot.Store(&cp)
}

// Registry owns live auction state, one single-writer cell per auction
type Registry struct {
	repo      repository.AuctionDB
	publisher Publisher
	opts      Options

	mu    sync.RWMutex
	cells map[string]*auctionCell

	listenersMu sync.RWMutex
	listeners   []EndListener
}

type noopPublisher struct{}

func (noopPublisher) Broadcast(string, events.Event) {}

// NewRegistry creates a registry over the given store
func NewRegistry(repo repository.AuctionDB, publisher Publisher, opts Options) *Registry {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.BidTimeout <= 0 {
		opts.BidTimeout = 2 * time.Second
	}
	if opts.ExtensionWindow < 0 {
		opts.ExtensionWindow = 0
	}
	return &Registry{
		repo:      repo,
		publisher: publisher,
		opts:      opts,
		cells:     make(map[string]*auctionCell),
	}
}

// AddEndListener registers l to receive finalized auction results
func (r *Registry) AddEndListener(l EndListener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *Registry) now() time.Time {
	return r.opts.Clock()
}

// Register validates and persists a new auction and starts tracking it.
// A zero start time means the auction opens immediately.
func (r *Registry) Register(ctx context.Context, a models.Auction) (models.Auction, error) {
	if a.SellerID == "" || a.ListingID == "" {
		return models.Auction{}, fmt.Errorf("registry: %w - missing seller or listing ID", biddingerrors.ErrInvalidBid)
	}
	now := r.now()
	if a.StartTime.IsZero() {
		a.StartTime = now
	}
	if a.StartingPrice <= 0 || a.Increment <= 0 {
		return models.Auction{}, fmt.Errorf("registry: %w - starting price and increment must be positive", biddingerrors.ErrInvalidBid)
	}
	if !wholeCents(a.StartingPrice) || !wholeCents(a.Increment) || (a.BuyNowPrice != nil && !wholeCents(*a.BuyNowPrice)) {
		return models.Auction{}, fmt.Errorf("registry: %w - prices must be whole cents", biddingerrors.ErrInvalidBid)
	}
	if !a.EndTime.After(a.StartTime) {
		return models.Auction{}, fmt.Errorf("registry: %w - end time must be after start time", biddingerrors.ErrInvalidBid)
	}
	if a.BuyNowPrice != nil && *a.BuyNowPrice < a.StartingPrice+a.Increment {
		return models.Auction{}, fmt.Errorf("registry: %w - buy-now price below first acceptable bid", biddingerrors.ErrInvalidBid)
	}

	if a.AuctionID == "" {
		a.AuctionID = utils.GenerateID()
	}
	a.CurrentBid, a.CurrentBidder, a.WinnerID, a.FinalAmount = nil, nil, nil, nil
	a.LastSequence = 0
	a.Status = models.AuctionScheduled
	if !now.Before(a.StartTime) {
		a.Status = models.AuctionActive
	}
	a.CreatedAt, a.UpdatedAt = now, now

	if err := r.repo.CreateAuction(ctx, a); err != nil {
		return models.Auction{}, fmt.Errorf("registry: failed to create auction: %w", err)
	}

	r.mu.Lock()
	r.cells[a.AuctionID] = newAuctionCell(a)
	r.mu.Unlock()

	utils.Info("auction registered", map[string]any{
		"auction_id": a.AuctionID,
		"seller_id":  a.SellerID,
		"status":     a.Status,
		"end_time":   a.EndTime,
	})
	return a.Clone(), nil
}

// cell returns the auction's cell, hydrating it from the store on first use
func (r *Registry) cell(ctx context.Context, auctionID string) (*auctionCell, error) {
	r.mu.RLock()
	c, ok := r.cells[auctionID]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	a, err := r.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to load auction %s: %w", auctionID, err)
	}

	// ended and cancelled auctions never change again, so they are served
	// from a throwaway cell instead of being tracked
	if a.Status.Terminal() {
		return newAuctionCell(a), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cells[auctionID]; ok {
		return c, nil
	}
	c = newAuctionCell(a)
	r.cells[auctionID] = c
	return c, nil
}

// evict stops tracking a cell once its auction is terminal. Holders of the old
// cell still see the terminal snapshot and reject further writes.
func (r *Registry) evict(auctionID string, c *auctionCell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cells[auctionID] == c {
		delete(r.cells, auctionID)
	}
}

// LoadPending hydrates cells for every scheduled or active auction in the store
// and returns how many were newly loaded
func (r *Registry) LoadPending(ctx context.Context) (int, error) {
	pending, err := r.repo.ListAuctionsByStatus(ctx, models.AuctionScheduled, models.AuctionActive)
	if err != nil {
		return 0, fmt.Errorf("registry: failed to list pending auctions: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	loaded := 0
	for _, a := range pending {
		if _, ok := r.cells[a.AuctionID]; ok {
			continue
		}
		r.cells[a.AuctionID] = newAuctionCell(a)
		loaded++
	}
	return loaded, nil
}

// GetState returns the latest committed snapshot without taking the writer
func (r *Registry) GetState(ctx context.Context, auctionID string) (models.Auction, error) {
	c, err := r.cell(ctx, auctionID)
	if err != nil {
		return models.Auction{}, err
	}
	return c.load(), nil
}

// DurableState reads the auction straight from the store, for reconciliation
func (r *Registry) DurableState(ctx context.Context, auctionID string) (models.Auction, error) {
	a, err := r.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("registry: %w", err)
	}
	return a, nil
}

// Bids returns the accepted bids of an auction in sequence order
func (r *Registry) Bids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	bids, err := r.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// Snapshots returns the current snapshot of every tracked, not yet terminal auction
func (r *Registry) Snapshots() []models.Auction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Auction, 0, len(r.cells))
	for _, c := range r.cells {
		if a := c.load(); !a.Status.Terminal() {
			out = append(out, a)
		}
	}
	return out
}

// SubmitBid decides on a bid and, if accepted, commits it durably before
// acknowledging or broadcasting it
func (r *Registry) SubmitBid(ctx context.Context, auctionID string, req models.BidRequest) (models.Bid, error) {
	c, err := r.cell(ctx, auctionID)
	if err != nil {
		return models.Bid{}, err
	}

	// cheap early rejection on the last published snapshot, no contention
	if err := ValidateBid(c.load(), req, r.now()); err != nil {
		r.logRejection(ctx, auctionID, req, err)
		return models.Bid{}, fmt.Errorf("registry: %w", err)
	}

	bid, result, err := r.commitBid(ctx, c, auctionID, req)
	if err != nil {
		return models.Bid{}, err
	}
	if result != nil {
		r.notifyEnded(ctx, *result)
	}
	return bid, nil
}

func (r *Registry) commitBid(ctx context.Context, c *auctionCell, auctionID string, req models.BidRequest) (models.Bid, *models.AuctionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.BidTimeout)
	defer cancel()

	if err := c.writer.Acquire(ctx); err != nil {
		telemetry.BidsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "SubmissionTimeout")))
		utils.Warn("registry: bid timed out waiting for auction", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
		})
		return models.Bid{}, nil, fmt.Errorf("registry: %w - auction %s: %w", biddingerrors.ErrSubmissionTimeout, auctionID, err)
	}
	defer c.writer.Release()

	now := r.now()
	current := c.load()
	if err := ValidateBid(current, req, now); err != nil {
		r.logRejection(ctx, auctionID, req, err)
		return models.Bid{}, nil, fmt.Errorf("registry: %w", err)
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  req.BidderID,
		Sequence:  current.LastSequence + 1,
		Amount:    req.Amount,
		CreatedAt: now,
		Accepted:  true,
	}

	next := current.Clone()
	next.CurrentBid = models.Float64Ptr(req.Amount)
	next.CurrentBidder = models.StringPtr(req.BidderID)
	next.LastSequence = bid.Sequence
	next.UpdatedAt = now
	extended := ExtendEndTime(&next, now, r.opts.ExtensionWindow)

	boughtNow := next.BuyNowPrice != nil && req.Amount >= *next.BuyNowPrice
	if boughtNow {
		closeAuction(&next, models.AuctionEnded)
	}

	if err := r.repo.CommitBid(ctx, bid, next); err != nil {
		// nothing was published, so the in-memory state is still the pre-attempt value
		telemetry.BidsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "StalePersistence")))
		utils.Error("registry: failed to persist bid", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"sequence":   bid.Sequence,
			"error":      err.Error(),
		})
		if errors.Is(err, biddingerrors.ErrSequenceConflict) || errors.Is(err, biddingerrors.ErrStatusConflict) {
			r.resync(ctx, c, auctionID)
		}
		return models.Bid{}, nil, fmt.Errorf("registry: %w - auction %s: %w", biddingerrors.ErrStalePersistence, auctionID, err)
	}

	c.publish(next)
	telemetry.BidsAccepted.Add(ctx, 1)
	r.publisher.Broadcast(auctionID, events.NewBid{AuctionID: auctionID, Bid: bid, Auction: next.Clone()})

	fields := map[string]any{
		"auction_id": auctionID,
		"bid_id":     bid.BidID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
		"sequence":   bid.Sequence,
	}
	if extended {
		fields["extended_to"] = next.EndTime
	}
	utils.Info("registry: bid accepted", fields)

	if !boughtNow {
		return bid, nil, nil
	}
	r.evict(auctionID, c)
	result := resultOf(next)
	telemetry.AuctionsFinalized.Add(ctx, 1, metric.WithAttributes(attribute.Bool("has_winner", true)))
	r.publisher.Broadcast(auctionID, events.AuctionEnded{AuctionID: auctionID, WinnerID: result.WinnerID, FinalAmount: result.FinalAmount})
	utils.Info("registry: auction closed by buy-now", map[string]any{"auction_id": auctionID, "winner_id": req.BidderID})
	return bid, &result, nil
}

// resync replaces the cell with the stored auction after the store disagreed with it
func (r *Registry) resync(ctx context.Context, c *auctionCell, auctionID string) {
	stored, err := r.repo.GetAuction(ctx, auctionID)
	if err != nil {
		utils.Warn("registry: resync failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}
	c.publish(stored)
	if stored.Status.Terminal() {
		r.evict(auctionID, c)
	}
}

// Activate moves a scheduled auction to active once its start time has passed
func (r *Registry) Activate(ctx context.Context, auctionID string) (bool, error) {
	c, err := r.cell(ctx, auctionID)
	if err != nil {
		return false, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, r.opts.BidTimeout)
	defer cancel()
	if err := c.writer.Acquire(lockCtx); err != nil {
		return false, fmt.Errorf("registry: %w - auction %s: %w", biddingerrors.ErrSubmissionTimeout, auctionID, err)
	}
	defer c.writer.Release()

	current := c.load()
	if current.Status != models.AuctionScheduled {
		return false, nil
	}
	now := r.now()
	if now.Before(current.StartTime) {
		return false, fmt.Errorf("registry: %w - auction %s starts at %s", biddingerrors.ErrNotDue, auctionID, current.StartTime)
	}

	next := current.Clone()
	next.Status = models.AuctionActive
	next.UpdatedAt = now
	if err := r.repo.TransitionAuction(lockCtx, next, models.AuctionScheduled); err != nil {
		if errors.Is(err, biddingerrors.ErrStatusConflict) {
			r.resync(lockCtx, c, auctionID)
			return false, nil
		}
		return false, fmt.Errorf("registry: failed to activate auction %s: %w", auctionID, err)
	}

	c.publish(next)
	r.publisher.Broadcast(auctionID, events.AuctionState{Auction: next.Clone()})
	utils.Info("registry: auction activated", map[string]any{"auction_id": auctionID})
	return true, nil
}

// Finalize ends an auction whose end time has passed. It is idempotent: only the
// call that performs the transition reports true and emits auctionEnded.
func (r *Registry) Finalize(ctx context.Context, auctionID string) (bool, error) {
	c, err := r.cell(ctx, auctionID)
	if err != nil {
		return false, err
	}

	result, err := r.finalize(ctx, c, auctionID)
	if err != nil || result == nil {
		return false, err
	}
	r.notifyEnded(ctx, *result)
	return true, nil
}

func (r *Registry) finalize(ctx context.Context, c *auctionCell, auctionID string) (*models.AuctionResult, error) {
	lockCtx, cancel := context.WithTimeout(ctx, r.opts.BidTimeout)
	defer cancel()
	if err := c.writer.Acquire(lockCtx); err != nil {
		return nil, fmt.Errorf("registry: %w - auction %s: %w", biddingerrors.ErrSubmissionTimeout, auctionID, err)
	}
	defer c.writer.Release()

	current := c.load()
	if current.Status.Terminal() {
		return nil, nil
	}
	now := r.now()
	if now.Before(current.EndTime) {
		return nil, fmt.Errorf("registry: %w - auction %s ends at %s", biddingerrors.ErrNotDue, auctionID, current.EndTime)
	}

	from := current.Status
	next := current.Clone()
	closeAuction(&next, models.AuctionEnded)
	next.UpdatedAt = now

	if err := r.repo.TransitionAuction(lockCtx, next, from); err != nil {
		if errors.Is(err, biddingerrors.ErrStatusConflict) {
			// already finalized durably, e.g. before a restart
			r.resync(lockCtx, c, auctionID)
			return nil, nil
		}
		return nil, fmt.Errorf("registry: failed to finalize auction %s: %w", auctionID, err)
	}

	c.publish(next)
	r.evict(auctionID, c)
	telemetry.AuctionsFinalized.Add(ctx, 1, metric.WithAttributes(attribute.Bool("has_winner", next.WinnerID != nil)))
	result := resultOf(next)
	r.publisher.Broadcast(auctionID, events.AuctionEnded{AuctionID: auctionID, WinnerID: result.WinnerID, FinalAmount: result.FinalAmount})
	utils.Info("registry: auction finalized", map[string]any{
		"auction_id":   auctionID,
		"winner_id":    result.WinnerID,
		"final_amount": result.FinalAmount,
		"bids":         next.LastSequence,
	})
	return &result, nil
}

// Cancel withdraws an auction that has not received any bid; only its seller may do so
func (r *Registry) Cancel(ctx context.Context, auctionID, requesterID string) (models.Auction, error) {
	c, err := r.cell(ctx, auctionID)
	if err != nil {
		return models.Auction{}, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, r.opts.BidTimeout)
	defer cancel()
	if err := c.writer.Acquire(lockCtx); err != nil {
		return models.Auction{}, fmt.Errorf("registry: %w - auction %s: %w", biddingerrors.ErrSubmissionTimeout, auctionID, err)
	}
	defer c.writer.Release()

	current := c.load()
	if requesterID != current.SellerID {
		return models.Auction{}, fmt.Errorf("registry: %w - only the seller can cancel", biddingerrors.ErrForbidden)
	}
	if current.Status.Terminal() {
		return models.Auction{}, fmt.Errorf("registry: %w - auction %s is %s", biddingerrors.ErrAuctionNotActive, auctionID, current.Status)
	}
	if current.LastSequence > 0 {
		return models.Auction{}, fmt.Errorf("registry: %w - auction %s already has bids", biddingerrors.ErrForbidden, auctionID)
	}

	next := current.Clone()
	next.Status = models.AuctionCancelled
	next.UpdatedAt = r.now()
	if err := r.repo.TransitionAuction(lockCtx, next, current.Status); err != nil {
		return models.Auction{}, fmt.Errorf("registry: failed to cancel auction %s: %w", auctionID, err)
	}

	c.publish(next)
	r.evict(auctionID, c)
	r.publisher.Broadcast(auctionID, events.AuctionState{Auction: next.Clone()})
	utils.Info("registry: auction cancelled", map[string]any{"auction_id": auctionID, "seller_id": requesterID})
	return next.Clone(), nil
}

func (r *Registry) notifyEnded(ctx context.Context, result models.AuctionResult) {
	// a bidder disconnecting must not stop settlement from being seeded
	ctx = context.WithoutCancel(ctx)
	r.listenersMu.RLock()
	listeners := append([]EndListener(nil), r.listeners...)
	r.listenersMu.RUnlock()

	for _, l := range listeners {
		l.AuctionEnded(ctx, result)
	}
}

func (r *Registry) logRejection(ctx context.Context, auctionID string, req models.BidRequest, err error) {
	telemetry.BidsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", biddingerrors.Code(err))))
	utils.Info("registry: bid rejected", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"amount":     req.Amount,
		"reason":     biddingerrors.Code(err),
	})
}

// closeAuction marks the auction terminal and records the winner, if any
func closeAuction(a *models.Auction, status models.AuctionStatus) {
	a.Status = status
	if a.CurrentBidder != nil {
		a.WinnerID = models.StringPtr(*a.CurrentBidder)
		a.FinalAmount = models.Float64Ptr(*a.CurrentBid)
	}
}

func resultOf(a models.Auction) models.AuctionResult {
	result := models.AuctionResult{
		AuctionID: a.AuctionID,
		ListingID: a.ListingID,
		SellerID:  a.SellerID,
		EndedAt:   a.UpdatedAt,
	}
	if a.WinnerID != nil {
		result.WinnerID = models.StringPtr(*a.WinnerID)
	}
	if a.FinalAmount != nil {
		result.FinalAmount = *a.FinalAmount
	}
	return result
}
