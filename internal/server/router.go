package server

import (
	"net/http"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/broker"
	"auction-engine/internal/settlement"
	handler "auction-engine/services/bidding/handler"
	settlementhandler "auction-engine/services/settlement/handler"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(registry *bidding.Registry, engine *settlement.Engine, hub *broker.Hub, clientOpts broker.ClientOptions) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(TracingMiddleware)       // span per request
	router.Use(IdentityMiddleware)      // user id from the auth gateway
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(registry)
	settlementHandler := settlementhandler.NewSettlementHandler(engine)
	wsHandler := handler.NewWSHandler(hub, broker.NewDispatcher(hub, registry, engine), clientOpts)

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"auctions": len(registry.Snapshots())}, "ok")
	})
	router.GET("/ws", wsHandler.ServeWSHandler)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", RequireUser, biddingHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.POST("/:auction_id/bids", RequireUser, biddingHandler.PlaceBidHandler)
		auctions.POST("/:auction_id/cancel", RequireUser, biddingHandler.CancelAuctionHandler)
		auctions.GET("/:auction_id/transaction", settlementHandler.GetAuctionTransactionHandler)
	}

	transactions := router.Group("/transactions")
	{
		transactions.GET("/:transaction_id", settlementHandler.GetTransactionHandler)
		transactions.GET("/:transaction_id/events", settlementHandler.GetTransactionEventsHandler)
		transactions.POST("/:transaction_id/events", RequireUser, settlementHandler.SubmitActionHandler)
	}

	return router
}
