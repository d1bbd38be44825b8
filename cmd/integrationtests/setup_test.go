package integrationtests

import (
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/broker"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"
	"auction-engine/utils"
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// testClock lets tests move the registry past an auction's end time
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// testEnv is a fully wired application over the in-memory store
type testEnv struct {
	router    *gin.Engine
	registry  *bidding.Registry
	engine    *settlement.Engine
	scheduler *bidding.Scheduler
	clock     *testClock
}

// SetupTestEnv initializes the router with in-memory repository for integration testing.
func SetupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	repo := repository.NewMemoryRepo()
	hub := broker.NewHub()
	registry := bidding.NewRegistry(repo, hub, bidding.Options{
		ExtensionWindow: 5 * time.Minute,
		BidTimeout:      time.Second,
		Clock:           clock.Now,
	})
	engine := settlement.NewEngine(repo, hub, clock.Now)
	registry.AddEndListener(engine)

	return &testEnv{
		router:    server.SetupRouter(registry, engine, hub, broker.ClientOptions{BidRatePerSecond: 100, BidBurst: 100}),
		registry:  registry,
		engine:    engine,
		scheduler: bidding.NewScheduler(registry, bidding.SchedulerOptions{}),
		clock:     clock,
	}
}

// ExecuteRequestAndParse executes an HTTP request as userID on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(utils.UserIDHeader, userID)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// data returns the object payload of a successful response
func data(resp map[string]any) map[string]any {
	d, _ := resp["data"].(map[string]any)
	return d
}

// createAuction opens an auction for seller starting now and ending in an hour
func (e *testEnv) createAuction(t *testing.T, seller string, body map[string]any) map[string]any {
	t.Helper()
	now := e.clock.Now()
	req := map[string]any{
		"listing_id":     "listing1",
		"starting_price": 100,
		"increment":      5,
		"start_time":     now,
		"end_time":       now.Add(time.Hour),
	}
	for k, v := range body {
		req[k] = v
	}
	resp, w := ExecuteRequestAndParse(t, e.router, "POST", "/auctions", seller, req)
	if w.Code != 201 {
		t.Fatalf("create auction: status %d: %v", w.Code, resp)
	}
	return data(resp)
}
