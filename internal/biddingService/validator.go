package bidding

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/models"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const moneyPrecision int32 = 2 // cents

// wholeCents reports whether v carries no digits past the cent
func wholeCents(v float64) bool {
	d := decimal.NewFromFloat(v)
	return d.Equal(d.Round(moneyPrecision))
}

// MinimumBid returns the lowest amount the next bid on the auction may have
func MinimumBid(a models.Auction) float64 {
	base := decimal.NewFromFloat(a.StartingPrice)
	if a.CurrentBid != nil {
		base = decimal.NewFromFloat(*a.CurrentBid)
	}
	minimum, _ := base.Add(decimal.NewFromFloat(a.Increment)).Round(moneyPrecision).Float64()
	return minimum
}

// ValidateBid applies the bidding rules to a proposed bid. It has no side effects,
// so it is safe to call on a stale snapshot before taking the auction's writer
// and again on the authoritative state afterwards. A nil result means accept.
func ValidateBid(a models.Auction, req models.BidRequest, now time.Time) error {
	if req.BidderID == "" {
		return fmt.Errorf("validator: %w - missing bidder ID", biddingerrors.ErrInvalidBid)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("validator: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	amount := decimal.NewFromFloat(req.Amount)
	if !wholeCents(req.Amount) {
		return fmt.Errorf("validator: %w - amount %v has more than %d decimal places", biddingerrors.ErrInvalidBid, req.Amount, moneyPrecision)
	}

	minimum := MinimumBid(a)
	reject := func(rule error) error {
		return &biddingerrors.BidRejection{Rule: rule, Current: a.CurrentBid, Minimum: minimum}
	}

	if a.Status != models.AuctionActive || !now.Before(a.EndTime) {
		return reject(biddingerrors.ErrAuctionNotActive)
	}
	if req.BidderID == a.SellerID {
		return reject(biddingerrors.ErrSelfBid)
	}

	if amount.LessThan(decimal.NewFromFloat(minimum)) {
		return reject(biddingerrors.ErrBelowMinimum)
	}
	return nil
}
