package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/broker"
	"auction-engine/internal/repository"
	"auction-engine/internal/settlement"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	hub := broker.NewHub()
	registry := bidding.NewRegistry(repo, hub, bidding.Options{})
	engine := settlement.NewEngine(repo, hub, nil)
	router := SetupRouter(registry, engine, hub, broker.ClientOptions{})

	tests := []struct {
		name           string
		method         string
		path           string
		userID         string
		body           string
		expectedStatus int
	}{
		{"healthz", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"guest_create_auction", http.MethodPost, "/auctions", "", `{}`, http.StatusUnauthorized},
		{"guest_bid", http.MethodPost, "/auctions/a1/bids", "", `{"amount":10}`, http.StatusUnauthorized},
		{"guest_action", http.MethodPost, "/transactions/t1/events", "", `{"kind":"INITIATE"}`, http.StatusUnauthorized},
		{"unknown_auction", http.MethodGet, "/auctions/a1", "", "", http.StatusNotFound},
		{"unknown_transaction", http.MethodGet, "/transactions/t1", "", "", http.StatusNotFound},
		{"bid_unknown_auction", http.MethodPost, "/auctions/a1/bids", "alice", `{"amount":10}`, http.StatusNotFound},
		{"ws_requires_upgrade", http.MethodGet, "/ws", "", "", http.StatusBadRequest},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			if tc.userID != "" {
				req.Header.Set(utils.UserIDHeader, tc.userID)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tc.expectedStatus, w.Code)
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0.0, resp["data"].(map[string]any)["auctions"])
}
