package bidding

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/models"
	"auction-engine/utils"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ExtendEndTime applies the anti-snipe rule for a bid accepted at bidTime:
// a bid inside the last window pushes the end to bidTime+window. The end time
// never moves backward. It reports whether the end time changed.
func ExtendEndTime(a *models.Auction, bidTime time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	if bidTime.Before(a.EndTime.Add(-window)) {
		return false
	}
	extended := bidTime.Add(window)
	if !extended.After(a.EndTime) {
		return false
	}
	a.EndTime = extended
	return true
}

// SchedulerOptions tune the extension scheduler
type SchedulerOptions struct {
	Tick             time.Duration
	LivenessInterval time.Duration
	MaxFinalizeTries uint
}

// Scheduler finalizes auctions whose end time has passed and activates those
// whose start time has come. It only acts through the registry, so it never
// races a bid commit.
type Scheduler struct {
	registry *Registry
	opts     SchedulerOptions

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler driving the given registry
func NewScheduler(registry *Registry, opts SchedulerOptions) *Scheduler {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.LivenessInterval <= 0 {
		opts.LivenessInterval = 30 * time.Second
	}
	if opts.MaxFinalizeTries == 0 {
		opts.MaxFinalizeTries = 5
	}
	return &Scheduler{
		registry: registry,
		opts:     opts,
		inFlight: make(map[string]struct{}),
	}
}

// Run ticks until ctx is cancelled, then waits for in-flight finalizations
func (s *Scheduler) Run(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		utils.Warn("scheduler: initial sweep failed", map[string]any{"error": err.Error()})
	}

	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()
	liveness := time.NewTicker(s.opts.LivenessInterval)
	defer liveness.Stop()

	utils.Info("scheduler started", map[string]any{
		"tick":     s.opts.Tick.String(),
		"liveness": s.opts.LivenessInterval.String(),
	})
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			utils.Info("scheduler stopped", nil)
			return
		case <-ticker.C:
			s.Tick(ctx)
		case <-liveness.C:
			if _, err := s.Sweep(ctx); err != nil {
				utils.Warn("scheduler: liveness sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// Tick looks at every tracked auction once and starts the due transitions.
// Transitions run concurrently across auctions; Tick returns once they are done.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.registry.now()
	for _, a := range s.registry.Snapshots() {
		switch {
		case a.Status == models.AuctionScheduled && !now.Before(a.StartTime):
			s.dispatch(ctx, a.AuctionID, s.activate)
		case a.Status == models.AuctionActive && !now.Before(a.EndTime):
			s.dispatch(ctx, a.AuctionID, s.finalize)
		}
	}
	s.wg.Wait()
}

// Sweep reloads scheduled and active auctions from the store, so auctions
// created elsewhere or missed before a restart are still finalized, then ticks
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	loaded, err := s.registry.LoadPending(ctx)
	if err != nil {
		return 0, err
	}
	if loaded > 0 {
		utils.Info("scheduler: loaded pending auctions", map[string]any{"count": loaded})
	}
	s.Tick(ctx)
	return loaded, nil
}

func (s *Scheduler) dispatch(ctx context.Context, auctionID string, fn func(context.Context, string)) {
	s.mu.Lock()
	if _, busy := s.inFlight[auctionID]; busy {
		s.mu.Unlock()
		return
	}
	s.inFlight[auctionID] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, auctionID)
			s.mu.Unlock()
		}()
		fn(ctx, auctionID)
	}()
}

func (s *Scheduler) finalize(ctx context.Context, auctionID string) {
	operation := func() (bool, error) {
		done, err := s.registry.Finalize(ctx, auctionID)
		if errors.Is(err, biddingerrors.ErrNotDue) {
			// extended by a late bid in the meantime
			return false, backoff.Permanent(err)
		}
		return done, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second

	done, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.opts.MaxFinalizeTries),
	)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNotDue) {
			return
		}
		utils.Error("scheduler: failed to finalize auction", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}
	if done {
		utils.Debug("scheduler: finalized auction", map[string]any{"auction_id": auctionID})
	}
}

func (s *Scheduler) activate(ctx context.Context, auctionID string) {
	if _, err := s.registry.Activate(ctx, auctionID); err != nil && !errors.Is(err, biddingerrors.ErrNotDue) {
		utils.Error("scheduler: failed to activate auction", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
	}
}
