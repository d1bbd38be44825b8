package bidding

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/events"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// recordingPublisher keeps every broadcast event in order
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Broadcast(_ string, ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) snapshot() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func (p *recordingPublisher) ended() []events.AuctionEnded {
	var out []events.AuctionEnded
	for _, ev := range p.snapshot() {
		if e, ok := ev.(events.AuctionEnded); ok {
			out = append(out, e)
		}
	}
	return out
}

type recordingListener struct {
	mu      sync.Mutex
	results []model.AuctionResult
}

func (l *recordingListener) AuctionEnded(_ context.Context, result model.AuctionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, result)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}

// Helper to build a registry over an in-memory store with one active auction
func newTestRegistry(t testing.TB, clock *fakeClock) (*Registry, *recordingPublisher, model.Auction) {
	pub := &recordingPublisher{}
	reg := NewRegistry(repository.NewMemoryRepo(), pub, Options{
		ExtensionWindow: 5 * time.Minute,
		BidTimeout:      5 * time.Second,
		Clock:           clock.Now,
	})

	now := clock.Now()
	a, err := reg.Register(context.Background(), model.Auction{
		ListingID:     "listing1",
		SellerID:      "seller1",
		StartingPrice: 100,
		Increment:     5,
		StartTime:     now.Add(-time.Minute),
		EndTime:       now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, model.AuctionActive, a.Status)
	return reg, pub, a
}

func TestRegistry_Register(t *testing.T) {
	now := time.Now().UTC()
	reg := NewRegistry(repository.NewMemoryRepo(), nil, Options{Clock: newFakeClock(now).Now})

	tests := []struct {
		name          string
		auction       model.Auction
		expectedError error
		expected      model.AuctionStatus
	}{
		{
			name: "starts_now",
			auction: model.Auction{
				ListingID: "l1", SellerID: "s1", StartingPrice: 100, Increment: 5,
				StartTime: now, EndTime: now.Add(time.Hour),
			},
			expected: model.AuctionActive,
		},
		{
			name: "no_start_time",
			auction: model.Auction{
				ListingID: "l0", SellerID: "s1", StartingPrice: 100, Increment: 5,
				EndTime: now.Add(time.Hour),
			},
			expected: model.AuctionActive,
		},
		{
			name: "starts_later",
			auction: model.Auction{
				ListingID: "l2", SellerID: "s1", StartingPrice: 100, Increment: 5,
				StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour),
			},
			expected: model.AuctionScheduled,
		},
		{
			name: "end_before_start",
			auction: model.Auction{
				ListingID: "l3", SellerID: "s1", StartingPrice: 100, Increment: 5,
				StartTime: now, EndTime: now.Add(-time.Hour),
			},
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name: "zero_increment",
			auction: model.Auction{
				ListingID: "l4", SellerID: "s1", StartingPrice: 100,
				StartTime: now, EndTime: now.Add(time.Hour),
			},
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name: "buy_now_too_low",
			auction: model.Auction{
				ListingID: "l5", SellerID: "s1", StartingPrice: 100, Increment: 5,
				BuyNowPrice: model.Float64Ptr(101),
				StartTime:   now, EndTime: now.Add(time.Hour),
			},
			expectedError: biddingerrors.ErrInvalidBid,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			a, err := reg.Register(context.Background(), tc.auction)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			_, parseErr := uuid.Parse(a.AuctionID)
			require.NoError(t, parseErr, "AuctionID should be a valid UUID")
			require.Equal(t, tc.expected, a.Status)
			require.Zero(t, a.LastSequence)

			state, err := reg.GetState(context.Background(), a.AuctionID)
			require.NoError(t, err)
			require.Equal(t, a, state)
		})
	}
}

func TestRegistry_SubmitBid_Scenario(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	reg, pub, a := newTestRegistry(t, clock)
	ctx := context.Background()

	first, err := reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 105})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Sequence)

	_, err = reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "bob", Amount: 103})
	var rejection *biddingerrors.BidRejection
	require.ErrorAs(t, err, &rejection)
	require.ErrorIs(t, err, biddingerrors.ErrBelowMinimum)
	require.Equal(t, 110.0, rejection.Minimum)

	second, err := reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "bob", Amount: 110})
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Sequence)

	state, err := reg.GetState(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, 110.0, *state.CurrentBid)
	require.Equal(t, "bob", *state.CurrentBidder)
	require.Equal(t, int64(2), state.LastSequence)

	durable, err := reg.DurableState(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, state, durable)

	bids, err := reg.Bids(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, []model.Bid{first, second}, bids)

	// rejected bids are never broadcast
	published := pub.snapshot()
	require.Len(t, published, 2)
	require.Equal(t, first, published[0].(events.NewBid).Bid)
	require.Equal(t, second, published[1].(events.NewBid).Bid)
}

func TestRegistry_SubmitBid_SubCentAmountsNeverStored(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	reg, pub, a := newTestRegistry(t, clock)
	ctx := context.Background()

	_, err := reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 104.996})
	require.ErrorIs(t, err, biddingerrors.ErrInvalidBid)

	accepted, err := reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 105})
	require.NoError(t, err)

	_, err = reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "bob", Amount: 109.995})
	require.ErrorIs(t, err, biddingerrors.ErrInvalidBid)

	durable, err := reg.DurableState(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, 105.0, *durable.CurrentBid)
	require.Equal(t, int64(1), durable.LastSequence)

	bids, err := reg.Bids(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, []model.Bid{accepted}, bids)
	require.Len(t, pub.snapshot(), 1)
}

func TestRegistry_SubmitBid_UnknownAuction(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	reg, _, _ := newTestRegistry(t, clock)

	_, err := reg.SubmitBid(context.Background(), "missing", model.BidRequest{BidderID: "alice", Amount: 500})
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
}

func TestRegistry_SubmitBid_ConcurrentBidsAreTotallyOrdered(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	reg, pub, a := newTestRegistry(t, clock)
	ctx := context.Background()

	const bidders = 100
	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{
				BidderID: fmt.Sprintf("bidder-%d", i),
				Amount:   float64(105 + 5*i),
			})
		}(i)
	}
	wg.Wait()

	bids, err := reg.Bids(ctx, a.AuctionID)
	require.NoError(t, err)
	require.NotEmpty(t, bids)
	for i, b := range bids {
		require.Equal(t, int64(i+1), b.Sequence, "sequence must be gapless")
		if i > 0 {
			require.GreaterOrEqual(t, b.Amount, bids[i-1].Amount+a.Increment)
		}
	}

	state, err := reg.GetState(ctx, a.AuctionID)
	require.NoError(t, err)
	last := bids[len(bids)-1]
	require.Equal(t, last.Sequence, state.LastSequence)
	require.Equal(t, last.Amount, *state.CurrentBid)

	// broadcast order matches commit order
	published := pub.snapshot()
	require.Len(t, published, len(bids))
	for i, ev := range published {
		require.Equal(t, bids[i], ev.(events.NewBid).Bid)
	}
}

func TestRegistry_SubmitBid_MatchesSequentialModel(t *testing.T) {
	bidders := []string{"alice", "bob", "carol", "seller1"}

	rapid.Check(t, func(rt *rapid.T) {
		clock := newFakeClock(time.Now().UTC())
		reg, _, a := newTestRegistry(t, clock)
		ctx := context.Background()

		var (
			current  *float64
			sequence int64
		)
		attempts := rapid.IntRange(1, 40).Draw(rt, "attempts")
		for i := 0; i < attempts; i++ {
			bidder := rapid.SampledFrom(bidders).Draw(rt, "bidder")
			amount := float64(rapid.IntRange(50, 400).Draw(rt, "amount"))

			minimum := a.StartingPrice + a.Increment
			if current != nil {
				minimum = *current + a.Increment
			}
			wantAccept := bidder != a.SellerID && amount >= minimum

			bid, err := reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: bidder, Amount: amount})
			if wantAccept != (err == nil) {
				rt.Fatalf("bid %s %.0f (minimum %.0f): accepted=%v err=%v", bidder, amount, minimum, err == nil, err)
			}
			if err != nil {
				continue
			}
			sequence++
			current = model.Float64Ptr(amount)
			if bid.Sequence != sequence {
				rt.Fatalf("expected sequence %d, got %d", sequence, bid.Sequence)
			}
		}

		state, err := reg.GetState(ctx, a.AuctionID)
		if err != nil {
			rt.Fatalf("get state: %v", err)
		}
		if state.LastSequence != sequence {
			rt.Fatalf("expected last sequence %d, got %d", sequence, state.LastSequence)
		}
	})
}

func TestRegistry_SubmitBid_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Now().UTC()
	stored := model.Auction{
		AuctionID:     "auction1",
		ListingID:     "listing1",
		SellerID:      "seller1",
		StartingPrice: 100,
		Increment:     5,
		CurrentBid:    model.Float64Ptr(105),
		CurrentBidder: model.StringPtr("alice"),
		LastSequence:  1,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		Status:        model.AuctionActive,
	}

	tests := []struct {
		name      string
		commitErr error
		mockSetup func(mockRepo *repository.MockAuctionDB)
		expected  model.Auction
	}{
		{
			name:      "store_unavailable",
			commitErr: errors.New("connection reset"),
			mockSetup: func(mockRepo *repository.MockAuctionDB) {},
			expected:  stored,
		},
		{
			name:      "store_moved_ahead",
			commitErr: fmt.Errorf("commit: %w", biddingerrors.ErrSequenceConflict),
			mockSetup: func(mockRepo *repository.MockAuctionDB) {
				ahead := stored.Clone()
				ahead.LastSequence = 2
				ahead.CurrentBid = model.Float64Ptr(120)
				ahead.CurrentBidder = model.StringPtr("carol")
				mockRepo.EXPECT().GetAuction(gomock.Any(), "auction1").Return(ahead, nil)
			},
			expected: func() model.Auction {
				ahead := stored.Clone()
				ahead.LastSequence = 2
				ahead.CurrentBid = model.Float64Ptr(120)
				ahead.CurrentBidder = model.StringPtr("carol")
				return ahead
			}(),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := repository.NewMockAuctionDB(ctrl)
			pub := &recordingPublisher{}
			reg := NewRegistry(mockRepo, pub, Options{
				ExtensionWindow: 5 * time.Minute,
				BidTimeout:      time.Second,
				Clock:           newFakeClock(now).Now,
			})

			mockRepo.EXPECT().GetAuction(gomock.Any(), "auction1").Return(stored, nil)
			mockRepo.EXPECT().CommitBid(gomock.Any(), gomock.Any(), gomock.Any()).Return(tc.commitErr)
			tc.mockSetup(mockRepo)

			_, err := reg.SubmitBid(context.Background(), "auction1", model.BidRequest{BidderID: "bob", Amount: 110})
			require.ErrorIs(t, err, biddingerrors.ErrStalePersistence)
			require.True(t, biddingerrors.IsRetryable(err))

			state, err := reg.GetState(context.Background(), "auction1")
			require.NoError(t, err)
			require.Equal(t, tc.expected, state)
			require.Empty(t, pub.snapshot(), "nothing is broadcast for an uncommitted bid")
		})
	}
}

func TestRegistry_SubmitBid_Timeout(t *testing.T) {
	now := time.Now().UTC()
	reg := NewRegistry(repository.NewMemoryRepo(), nil, Options{
		BidTimeout: 30 * time.Millisecond,
		Clock:      newFakeClock(now).Now,
	})
	a, err := reg.Register(context.Background(), model.Auction{
		ListingID: "listing1", SellerID: "seller1", StartingPrice: 100, Increment: 5,
		StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour),
	})
	require.NoError(t, err)

	c, err := reg.cell(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.NoError(t, c.writer.Acquire(context.Background()))
	defer c.writer.Release()

	_, err = reg.SubmitBid(context.Background(), a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 105})
	require.ErrorIs(t, err, biddingerrors.ErrSubmissionTimeout)
	require.True(t, biddingerrors.IsRetryable(err))
	require.Equal(t, "SubmissionTimeout", biddingerrors.Code(err))

	state, err := reg.GetState(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.Zero(t, state.LastSequence)
}

func TestRegistry_SubmitBid_ExtendsEndTime(t *testing.T) {
	clock := newFakeClock(time.Now().UTC())
	reg, _, a := newTestRegistry(t, clock)
	ctx := context.Background()

	// outside the window: unchanged
	clock.Set(a.EndTime.Add(-10 * time.Minute))
	_, err := reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 105})
	require.NoError(t, err)
	state, err := reg.GetState(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, a.EndTime, state.EndTime)

	// one minute before the end: pushed to bid time plus the window
	bidTime := a.EndTime.Add(-time.Minute)
	clock.Set(bidTime)
	_, err = reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "bob", Amount: 110})
	require.NoError(t, err)
	state, err = reg.GetState(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, bidTime.Add(5*time.Minute), state.EndTime)

	durable, err := reg.DurableState(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, state.EndTime, durable.EndTime)
}

func TestRegistry_SubmitBid_BuyNow(t *testing.T) {
	now := time.Now().UTC()
	pub := &recordingPublisher{}
	listener := &recordingListener{}
	reg := NewRegistry(repository.NewMemoryRepo(), pub, Options{Clock: newFakeClock(now).Now})
	reg.AddEndListener(listener)

	a, err := reg.Register(context.Background(), model.Auction{
		ListingID: "listing1", SellerID: "seller1", StartingPrice: 100, Increment: 5,
		BuyNowPrice: model.Float64Ptr(500),
		StartTime:   now.Add(-time.Minute), EndTime: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = reg.SubmitBid(context.Background(), a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 500})
	require.NoError(t, err)

	state, err := reg.GetState(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, model.AuctionEnded, state.Status)
	require.Equal(t, "alice", *state.WinnerID)
	require.Equal(t, 500.0, *state.FinalAmount)
	require.Equal(t, a.EndTime, state.EndTime)

	require.Equal(t, 1, listener.count())
	require.Len(t, pub.ended(), 1)

	_, err = reg.SubmitBid(context.Background(), a.AuctionID, model.BidRequest{BidderID: "bob", Amount: 600})
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotActive)

	done, err := reg.Finalize(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, 1, listener.count())
}

func TestRegistry_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("only_seller", func(t *testing.T) {
		reg, _, a := newTestRegistry(t, newFakeClock(time.Now().UTC()))
		_, err := reg.Cancel(ctx, a.AuctionID, "alice")
		require.ErrorIs(t, err, biddingerrors.ErrForbidden)
	})

	t.Run("not_after_bids", func(t *testing.T) {
		reg, _, a := newTestRegistry(t, newFakeClock(time.Now().UTC()))
		_, err := reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 105})
		require.NoError(t, err)

		_, err = reg.Cancel(ctx, a.AuctionID, "seller1")
		require.ErrorIs(t, err, biddingerrors.ErrForbidden)
	})

	t.Run("seller_without_bids", func(t *testing.T) {
		reg, pub, a := newTestRegistry(t, newFakeClock(time.Now().UTC()))
		cancelled, err := reg.Cancel(ctx, a.AuctionID, "seller1")
		require.NoError(t, err)
		require.Equal(t, model.AuctionCancelled, cancelled.Status)

		_, err = reg.SubmitBid(ctx, a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 105})
		require.ErrorIs(t, err, biddingerrors.ErrAuctionNotActive)

		_, err = reg.Cancel(ctx, a.AuctionID, "seller1")
		require.ErrorIs(t, err, biddingerrors.ErrAuctionNotActive)

		published := pub.snapshot()
		require.Len(t, published, 1)
		require.Equal(t, model.AuctionCancelled, published[0].(events.AuctionState).Auction.Status)
	})
}

func TestRegistry_Activate(t *testing.T) {
	now := time.Now().UTC()
	clock := newFakeClock(now)
	reg := NewRegistry(repository.NewMemoryRepo(), nil, Options{Clock: clock.Now})

	a, err := reg.Register(context.Background(), model.Auction{
		ListingID: "listing1", SellerID: "seller1", StartingPrice: 100, Increment: 5,
		StartTime: now.Add(time.Minute), EndTime: now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, model.AuctionScheduled, a.Status)

	_, err = reg.Activate(context.Background(), a.AuctionID)
	require.ErrorIs(t, err, biddingerrors.ErrNotDue)

	clock.Set(a.StartTime)
	done, err := reg.Activate(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.True(t, done)

	done, err = reg.Activate(context.Background(), a.AuctionID)
	require.NoError(t, err)
	require.False(t, done)

	_, err = reg.SubmitBid(context.Background(), a.AuctionID, model.BidRequest{BidderID: "alice", Amount: 105})
	require.NoError(t, err)
}

func TestRegistry_LoadPending(t *testing.T) {
	now := time.Now().UTC()
	repo := repository.NewMemoryRepo()
	ctx := context.Background()

	for i, status := range []model.AuctionStatus{model.AuctionActive, model.AuctionScheduled, model.AuctionEnded} {
		require.NoError(t, repo.CreateAuction(ctx, model.Auction{
			AuctionID: fmt.Sprintf("auction%d", i), ListingID: "listing", SellerID: "seller1",
			StartingPrice: 100, Increment: 5, StartTime: now, EndTime: now.Add(time.Hour), Status: status,
		}))
	}

	reg := NewRegistry(repo, nil, Options{Clock: newFakeClock(now).Now})
	loaded, err := reg.LoadPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, loaded)
	require.Len(t, reg.Snapshots(), 2)

	loaded, err = reg.LoadPending(ctx)
	require.NoError(t, err)
	require.Zero(t, loaded)
}

func TestRegistry_TerminalAuctionsAreNotTracked(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(time.Now().UTC())
	reg, _, ended := newTestRegistry(t, clock)

	cancelled, err := reg.Register(ctx, model.Auction{
		ListingID: "listing2", SellerID: "seller1", StartingPrice: 100, Increment: 5,
		EndTime: clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	bought, err := reg.Register(ctx, model.Auction{
		ListingID: "listing3", SellerID: "seller1", StartingPrice: 100, Increment: 5,
		BuyNowPrice: model.Float64Ptr(200), EndTime: clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	open, err := reg.Register(ctx, model.Auction{
		ListingID: "listing4", SellerID: "seller1", StartingPrice: 100, Increment: 5,
		EndTime: clock.Now().Add(3 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, reg.Snapshots(), 4)

	_, err = reg.Cancel(ctx, cancelled.AuctionID, "seller1")
	require.NoError(t, err)
	_, err = reg.SubmitBid(ctx, bought.AuctionID, model.BidRequest{BidderID: "alice", Amount: 200})
	require.NoError(t, err)
	clock.Set(ended.EndTime.Add(time.Second))
	done, err := reg.Finalize(ctx, ended.AuctionID)
	require.NoError(t, err)
	require.True(t, done)

	snapshots := reg.Snapshots()
	require.Len(t, snapshots, 1)
	require.Equal(t, open.AuctionID, snapshots[0].AuctionID)

	reg.mu.RLock()
	require.Len(t, reg.cells, 1)
	reg.mu.RUnlock()

	// terminal auctions stay readable from the store without being tracked again
	for id, status := range map[string]model.AuctionStatus{
		ended.AuctionID:     model.AuctionEnded,
		cancelled.AuctionID: model.AuctionCancelled,
		bought.AuctionID:    model.AuctionEnded,
	} {
		state, err := reg.GetState(ctx, id)
		require.NoError(t, err)
		require.Equal(t, status, state.Status)

		_, err = reg.SubmitBid(ctx, id, model.BidRequest{BidderID: "bob", Amount: 500})
		require.ErrorIs(t, err, biddingerrors.ErrAuctionNotActive)
	}
	done, err = reg.Finalize(ctx, ended.AuctionID)
	require.NoError(t, err)
	require.False(t, done)
	require.Len(t, reg.Snapshots(), 1)
}

func TestRegistry_Register_RejectsSubCentPrices(t *testing.T) {
	now := time.Now().UTC()
	reg := NewRegistry(repository.NewMemoryRepo(), nil, Options{Clock: newFakeClock(now).Now})

	for name, a := range map[string]model.Auction{
		"starting_price": {StartingPrice: 100.005, Increment: 5},
		"increment":      {StartingPrice: 100, Increment: 0.001},
		"buy_now":        {StartingPrice: 100, Increment: 5, BuyNowPrice: model.Float64Ptr(250.125)},
	} {
		t.Run(name, func(t *testing.T) {
			a.ListingID, a.SellerID, a.EndTime = "listing1", "seller1", now.Add(time.Hour)
			_, err := reg.Register(context.Background(), a)
			require.ErrorIs(t, err, biddingerrors.ErrInvalidBid)
		})
	}
	require.Empty(t, reg.Snapshots())
}
