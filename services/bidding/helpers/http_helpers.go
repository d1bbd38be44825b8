package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/biddingerrors"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrTransactionNotFound):
		return http.StatusNotFound, "transaction not found"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid action payload"
	case errors.Is(err, biddingerrors.ErrBelowMinimum):
		return http.StatusConflict, "bid amount below minimum"
	case errors.Is(err, biddingerrors.ErrSelfBid):
		return http.StatusForbidden, "seller cannot bid on own auction"
	case errors.Is(err, biddingerrors.ErrAuctionNotActive):
		return http.StatusConflict, "auction not active"
	case errors.Is(err, biddingerrors.ErrInvalidTransition):
		return http.StatusConflict, "invalid transition"
	case errors.Is(err, biddingerrors.ErrNotParticipant), errors.Is(err, biddingerrors.ErrForbidden):
		return http.StatusForbidden, "operation not allowed"
	case errors.Is(err, biddingerrors.ErrStalePersistence), errors.Is(err, biddingerrors.ErrSubmissionTimeout):
		return http.StatusServiceUnavailable, "temporarily unavailable, retry"
	case errors.Is(err, biddingerrors.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests"
	case errors.Is(err, biddingerrors.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error with its wire code, the minimum acceptable
// bid when a bid was rejected, and whether the request may be retried
func RespondError(c *gin.Context, err error) (int, string) {
	status, message := MapErrorToHTTP(err)
	details := gin.H{
		"code":      biddingerrors.Code(err),
		"retryable": biddingerrors.IsRetryable(err),
	}
	var rejection *biddingerrors.BidRejection
	if errors.As(err, &rejection) {
		details["minimum_bid"] = rejection.Minimum
	}
	if biddingerrors.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	utils.JSONErrorWithDetails(c, status, fmt.Errorf("%s: %w", message, err), message, details)
	return status, message
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
