package bidding

import (
	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var oneCent = decimal.New(1, -2)

// Helper to create an active auction with a fixed clock
func testAuction(now time.Time) model.Auction {
	return model.Auction{
		AuctionID:     "auction1",
		ListingID:     "listing1",
		SellerID:      "seller1",
		StartingPrice: 100,
		Increment:     5,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		Status:        model.AuctionActive,
	}
}

func TestMinimumBid(t *testing.T) {
	now := time.Now().UTC()

	noBids := testAuction(now)
	require.Equal(t, 105.0, MinimumBid(noBids))

	withBid := testAuction(now)
	withBid.CurrentBid = model.Float64Ptr(105)
	require.Equal(t, 110.0, MinimumBid(withBid))

	cents := testAuction(now)
	cents.CurrentBid = model.Float64Ptr(0.1)
	cents.Increment = 0.2
	require.Equal(t, 0.3, MinimumBid(cents))
}

func TestValidateBid(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name          string
		mutate        func(a *model.Auction)
		req           model.BidRequest
		expectedError error
	}{
		{
			name: "valid_first_bid",
			req:  model.BidRequest{BidderID: "alice", Amount: 105},
		},
		{
			name:          "missing_bidder",
			req:           model.BidRequest{Amount: 105},
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "zero_amount",
			req:           model.BidRequest{BidderID: "alice", Amount: 0},
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "negative_amount",
			req:           model.BidRequest{BidderID: "alice", Amount: -50},
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "seller_bids",
			req:           model.BidRequest{BidderID: "seller1", Amount: 500},
			expectedError: biddingerrors.ErrSelfBid,
		},
		{
			name: "below_minimum_after_bid",
			mutate: func(a *model.Auction) {
				a.CurrentBid = model.Float64Ptr(105)
				a.CurrentBidder = model.StringPtr("alice")
			},
			req:           model.BidRequest{BidderID: "bob", Amount: 103},
			expectedError: biddingerrors.ErrBelowMinimum,
		},
		{
			name: "exactly_minimum",
			mutate: func(a *model.Auction) {
				a.CurrentBid = model.Float64Ptr(105)
			},
			req: model.BidRequest{BidderID: "bob", Amount: 110},
		},
		{
			name:          "scheduled_auction",
			mutate:        func(a *model.Auction) { a.Status = model.AuctionScheduled },
			req:           model.BidRequest{BidderID: "alice", Amount: 105},
			expectedError: biddingerrors.ErrAuctionNotActive,
		},
		{
			name:          "ended_auction",
			mutate:        func(a *model.Auction) { a.Status = model.AuctionEnded },
			req:           model.BidRequest{BidderID: "alice", Amount: 105},
			expectedError: biddingerrors.ErrAuctionNotActive,
		},
		{
			name:          "end_time_passed",
			mutate:        func(a *model.Auction) { a.EndTime = now },
			req:           model.BidRequest{BidderID: "alice", Amount: 105},
			expectedError: biddingerrors.ErrAuctionNotActive,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := testAuction(now)
			if tc.mutate != nil {
				tc.mutate(&a)
			}

			err := ValidateBid(a, tc.req, now)
			if tc.expectedError == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
		})
	}
}

func TestValidateBid_ReportsMinimum(t *testing.T) {
	now := time.Now().UTC()
	a := testAuction(now)
	a.CurrentBid = model.Float64Ptr(105)
	a.CurrentBidder = model.StringPtr("alice")

	err := ValidateBid(a, model.BidRequest{BidderID: "bob", Amount: 103}, now)

	var rejection *biddingerrors.BidRejection
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, 110.0, rejection.Minimum)
	require.Equal(t, 105.0, *rejection.Current)
	require.Equal(t, "BelowMinimum", rejection.Code())
}

func TestValidateBid_SellerAlwaysRejected(t *testing.T) {
	now := time.Now().UTC()
	rapid.Check(t, func(t *rapid.T) {
		a := testAuction(now)
		amount := rapid.Float64Range(0.01, 1e9).Draw(t, "amount")

		err := ValidateBid(a, model.BidRequest{BidderID: a.SellerID, Amount: amount}, now)
		if !errors.Is(err, biddingerrors.ErrSelfBid) {
			t.Fatalf("expected SelfBid for amount %v, got %v", amount, err)
		}
	})
}

func TestValidateBid_MinimumIsTheBoundary(t *testing.T) {
	now := time.Now().UTC()
	rapid.Check(t, func(t *rapid.T) {
		a := testAuction(now)
		current := float64(rapid.IntRange(100, 100000).Draw(t, "current"))
		a.CurrentBid = model.Float64Ptr(current)
		a.Increment = float64(rapid.IntRange(1, 500).Draw(t, "increment"))
		minimum := MinimumBid(a)

		if err := ValidateBid(a, model.BidRequest{BidderID: "alice", Amount: minimum}, now); err != nil {
			t.Fatalf("minimum %v rejected: %v", minimum, err)
		}
		below, _ := decimal.NewFromFloat(minimum).Sub(oneCent).Float64()
		if err := ValidateBid(a, model.BidRequest{BidderID: "alice", Amount: below}, now); !errors.Is(err, biddingerrors.ErrBelowMinimum) {
			t.Fatalf("expected BelowMinimum for %v, got %v", below, err)
		}
	})
}

func TestValidateBid_CentAmounts(t *testing.T) {
	now := time.Now().UTC()
	rapid.Check(t, func(t *rapid.T) {
		a := testAuction(now)
		current := float64(rapid.IntRange(10000, 10000000).Draw(t, "current_cents")) / 100
		a.CurrentBid = model.Float64Ptr(current)
		a.Increment = float64(rapid.IntRange(1, 50000).Draw(t, "increment_cents")) / 100
		minimum := MinimumBid(a)

		if err := ValidateBid(a, model.BidRequest{BidderID: "alice", Amount: minimum}, now); err != nil {
			t.Fatalf("minimum %v rejected: %v", minimum, err)
		}

		// a sub-cent amount just under the minimum must not round up into acceptance
		mills := decimal.New(int64(rapid.IntRange(1, 9).Draw(t, "mills")), -3)
		subCent, _ := decimal.NewFromFloat(minimum).Sub(oneCent).Add(mills).Float64()
		if err := ValidateBid(a, model.BidRequest{BidderID: "alice", Amount: subCent}, now); !errors.Is(err, biddingerrors.ErrInvalidBid) {
			t.Fatalf("expected InvalidBid for %v, got %v", subCent, err)
		}
	})
}

func TestValidateBid_SubCentAmounts(t *testing.T) {
	now := time.Now().UTC()
	a := testAuction(now)
	a.CurrentBid = nil
	a.StartingPrice = 100
	a.Increment = 5

	tests := []struct {
		name    string
		amount  float64
		wantErr error
	}{
		{name: "rounds_up_to_minimum", amount: 104.996, wantErr: biddingerrors.ErrInvalidBid},
		{name: "half_cent", amount: 109.995, wantErr: biddingerrors.ErrInvalidBid},
		{name: "exact_minimum", amount: 105},
		{name: "cents_above_minimum", amount: 105.01},
		{name: "cent_below_minimum", amount: 104.99, wantErr: biddingerrors.ErrBelowMinimum},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBid(a, model.BidRequest{BidderID: "alice", Amount: tc.amount}, now)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
