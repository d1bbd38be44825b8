package helpers

import (
	"time"

	model "auction-engine/internal/models"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	ListingID     string     `json:"listing_id" binding:"required"`
	StartingPrice float64    `json:"starting_price" binding:"required,gt=0"`
	Increment     float64    `json:"increment" binding:"required,gt=0"`
	BuyNowPrice   *float64   `json:"buy_now_price" binding:"omitempty,gt=0"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       time.Time  `json:"end_time" binding:"required"`
}

type PlaceBidRequest struct {
	Amount     float64    `json:"amount" binding:"required,gt=0"`
	ClientTime *time.Time `json:"client_time"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	AuctionID string  `json:"auction_id"`
	BidderID  string  `json:"bidder_id"`
	Sequence  int64   `json:"sequence"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}

// NewBidResponse converts an accepted bid to its response form
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		BidderID:  bid.BidderID,
		Sequence:  bid.Sequence,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
