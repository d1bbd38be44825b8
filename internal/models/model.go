package models

import "time"

// AuctionStatus is the lifecycle status of an auction
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "SCHEDULED"
	AuctionActive    AuctionStatus = "ACTIVE"
	AuctionEnded     AuctionStatus = "ENDED"
	AuctionCancelled AuctionStatus = "CANCELLED"
)

// Terminal reports whether no further bids or lifecycle moves are allowed
func (s AuctionStatus) Terminal() bool {
	return s == AuctionEnded || s == AuctionCancelled
}

// Auction represents a listing put up for auction together with its live bidding state
type Auction struct {
	AuctionID     string        `json:"auction_id"`
	ListingID     string        `json:"listing_id"`
	SellerID      string        `json:"seller_id"`
	StartingPrice float64       `json:"starting_price"`
	Increment     float64       `json:"increment"`
	BuyNowPrice   *float64      `json:"buy_now_price,omitempty"`
	CurrentBid    *float64      `json:"current_bid"`
	CurrentBidder *string       `json:"current_bidder"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	Status        AuctionStatus `json:"status"`
	LastSequence  int64         `json:"last_sequence"`
	WinnerID      *string       `json:"winner_id,omitempty"`
	FinalAmount   *float64      `json:"final_amount,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Clone returns a deep copy so snapshots never share pointer fields
func (a Auction) Clone() Auction {
	out := a
	out.BuyNowPrice = cloneFloat(a.BuyNowPrice)
	out.CurrentBid = cloneFloat(a.CurrentBid)
	out.CurrentBidder = cloneString(a.CurrentBidder)
	out.WinnerID = cloneString(a.WinnerID)
	out.FinalAmount = cloneFloat(a.FinalAmount)
	return out
}

// Bid represents a user's bid on an auction
type Bid struct {
	BidID        string    `json:"bid_id"`
	AuctionID    string    `json:"auction_id"`
	BidderID     string    `json:"bidder_id"`
	Sequence     int64     `json:"sequence"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
	Accepted     bool      `json:"accepted"`
	RejectReason string    `json:"reject_reason,omitempty"`
}

// BidRequest is a proposed bid before the registry decides on it
type BidRequest struct {
	BidderID string
	Amount   float64
	// ClientTime is what the bidder's device reported; informational only.
	ClientTime time.Time
}

// AuctionResult is emitted exactly once when an auction is finalized
type AuctionResult struct {
	AuctionID   string    `json:"auction_id"`
	ListingID   string    `json:"listing_id"`
	SellerID    string    `json:"seller_id"`
	WinnerID    *string   `json:"winner_id"`
	FinalAmount float64   `json:"final_amount"`
	EndedAt     time.Time `json:"ended_at"`
}

// HasWinner reports whether at least one bid was accepted
func (r AuctionResult) HasWinner() bool {
	return r.WinnerID != nil && *r.WinnerID != ""
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 { return &v }

// StringPtr returns a pointer to v
func StringPtr(v string) *string { return &v }
