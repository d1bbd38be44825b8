package biddingerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBidRejection_UnwrapsToRule(t *testing.T) {
	current := 105.0
	err := fmt.Errorf("registry: %w", &BidRejection{Rule: ErrBelowMinimum, Current: &current, Minimum: 110})

	require.ErrorIs(t, err, ErrBelowMinimum)

	var rejection *BidRejection
	require.True(t, errors.As(err, &rejection))
	require.Equal(t, 110.0, rejection.Minimum)
	require.Equal(t, "BelowMinimum", rejection.Code())
	require.Contains(t, err.Error(), "110.00")
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrAuctionNotActive, "AuctionNotActive"},
		{ErrSelfBid, "SelfBid"},
		{fmt.Errorf("wrapped: %w", ErrStalePersistence), "StalePersistence"},
		{ErrInvalidTransition, "InvalidTransition"},
		{errors.New("boom"), "Internal"},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, Code(tc.err))
	}
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(fmt.Errorf("x: %w", ErrStalePersistence)))
	require.True(t, IsRetryable(ErrSubmissionTimeout))
	require.False(t, IsRetryable(ErrBelowMinimum))
	require.False(t, IsRetryable(nil))
}
