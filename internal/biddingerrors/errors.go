package biddingerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyExists       = errors.New("record already exists")
	ErrStatusConflict      = errors.New("stored status does not match expected status")
	ErrSequenceConflict    = errors.New("bid sequence conflict")
)

// bid validation errors
var (
	ErrInvalidBid       = errors.New("invalid bid")
	ErrAuctionNotActive = errors.New("auction not active")
	ErrSelfBid          = errors.New("seller cannot bid on own auction")
	ErrBelowMinimum     = errors.New("bid amount below minimum")
)

// commit and lifecycle errors
var (
	ErrStalePersistence  = errors.New("bid could not be persisted, retry")
	ErrSubmissionTimeout = errors.New("auction busy, retry")
	ErrNotDue            = errors.New("auction end time not reached")
	ErrForbidden         = errors.New("operation not allowed for this user")
	ErrRateLimited       = errors.New("too many bids, slow down")
)

// settlement errors
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDuplicateEvent    = errors.New("duplicate action event")
	ErrNotParticipant    = errors.New("issuer is not a participant of the transaction")
	ErrInvalidPayload    = errors.New("invalid action payload")
)

// ErrConnectionUnavailable is reported when a subscriber cannot take more events
var ErrConnectionUnavailable = errors.New("connection unavailable")

// BidRejection reports which rule rejected a bid and what would have been accepted
type BidRejection struct {
	Rule    error
	Current *float64
	Minimum float64
}

func (r *BidRejection) Error() string {
	return fmt.Sprintf("%s - minimum acceptable bid is %.2f", r.Rule.Error(), r.Minimum)
}

func (r *BidRejection) Unwrap() error {
	return r.Rule
}

// Code returns a stable machine-readable code for the violated rule
func (r *BidRejection) Code() string {
	return Code(r.Rule)
}

// Code maps an error to the wire code clients receive
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAuctionNotActive):
		return "AuctionNotActive"
	case errors.Is(err, ErrSelfBid):
		return "SelfBid"
	case errors.Is(err, ErrBelowMinimum):
		return "BelowMinimum"
	case errors.Is(err, ErrInvalidBid):
		return "InvalidBid"
	case errors.Is(err, ErrStalePersistence):
		return "StalePersistence"
	case errors.Is(err, ErrSubmissionTimeout):
		return "SubmissionTimeout"
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, ErrDuplicateEvent):
		return "DuplicateEvent"
	case errors.Is(err, ErrNotParticipant):
		return "NotParticipant"
	case errors.Is(err, ErrInvalidPayload):
		return "InvalidPayload"
	case errors.Is(err, ErrAuctionNotFound):
		return "AuctionNotFound"
	case errors.Is(err, ErrTransactionNotFound):
		return "TransactionNotFound"
	case errors.Is(err, ErrConnectionUnavailable):
		return "ConnectionUnavailable"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrRateLimited):
		return "RateLimited"
	default:
		return "Internal"
	}
}

// IsRetryable reports whether the caller may resubmit the same request
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStalePersistence) || errors.Is(err, ErrSubmissionTimeout) || errors.Is(err, ErrRateLimited)
}
