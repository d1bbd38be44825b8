package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/broker"
	"auction-engine/internal/config"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"
	"auction-engine/internal/telemetry"
	"auction-engine/utils"

	_ "github.com/lib/pq"
)

// store is everything the registry and the settlement engine persist through
type store interface {
	repository.AuctionDB
	repository.SettlementDB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	utils.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, "auction-engine", cfg.OTLPEndpoint)
	if err != nil {
		utils.Fatal("failed to set up telemetry", map[string]any{"error": err.Error()})
	}

	repo, closeRepo, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"error": err.Error()})
	}

	hub := broker.NewHub()
	registry := bidding.NewRegistry(repo, hub, bidding.Options{
		ExtensionWindow: cfg.ExtensionWindow,
		BidTimeout:      cfg.BidTimeout,
	})
	engine := settlement.NewEngine(repo, hub, nil)
	engine.SetActionTimeout(cfg.BidTimeout)
	registry.AddEndListener(engine)

	if cfg.SeedDemo {
		prepopulateAuctions(ctx, registry)
	}

	scheduler := bidding.NewScheduler(registry, bidding.SchedulerOptions{
		Tick:             cfg.SchedulerTick,
		LivenessInterval: cfg.LivenessInterval,
	})
	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(schedulerDone)
	}()

	router := server.SetupRouter(registry, engine, hub, broker.ClientOptions{
		BidRatePerSecond: cfg.BidRatePerSecond,
		BidBurst:         cfg.BidBurst,
	})
	srv := &http.Server{Addr: cfg.Port, Handler: router}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server stopped unexpectedly", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Warn("http shutdown incomplete", map[string]any{"error": err.Error()})
	}
	<-schedulerDone
	if err := closeRepo(); err != nil {
		utils.Warn("store close failed", map[string]any{"error": err.Error()})
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		utils.Warn("telemetry shutdown incomplete", map[string]any{"error": err.Error()})
	}
}

// openStore connects to Postgres when a database URL is configured and falls
// back to the in-memory store otherwise
func openStore(ctx context.Context, databaseURL string) (store, func() error, error) {
	if databaseURL == "" {
		utils.Warn("DATABASE_URL not set, using in-memory store", nil)
		return repository.NewMemoryRepo(), func() error { return nil }, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	repo := repository.NewPostgresRepo(db)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db.Close, nil
}

// prepopulateAuctions adds sample auctions for local runs
func prepopulateAuctions(ctx context.Context, registry *bidding.Registry) {
	now := time.Now().UTC()
	auctions := []model.Auction{
		{ListingID: "listing1", SellerID: "demo-seller", StartingPrice: 100, Increment: 5, StartTime: now, EndTime: now.Add(10 * time.Minute)},
		{ListingID: "listing2", SellerID: "demo-seller", StartingPrice: 200, Increment: 10, BuyNowPrice: model.Float64Ptr(500), StartTime: now, EndTime: now.Add(30 * time.Minute)},
		{ListingID: "listing3", SellerID: "demo-seller", StartingPrice: 150, Increment: 5, StartTime: now.Add(time.Minute), EndTime: now.Add(time.Hour)},
	}

	for _, a := range auctions {
		created, err := registry.Register(ctx, a)
		if err != nil {
			utils.Warn("failed to seed auction", map[string]any{"listing_id": a.ListingID, "error": err.Error()})
			continue
		}
		utils.Info("seeded auction", map[string]any{"auction_id": created.AuctionID, "listing_id": created.ListingID})
	}
}
