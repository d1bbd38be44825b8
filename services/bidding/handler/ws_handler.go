package handler

import (
	"net/http"

	"auction-engine/internal/broker"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades requests to websocket connections served by the broker
type WSHandler struct {
	hub        *broker.Hub
	dispatcher *broker.Dispatcher
	opts       broker.ClientOptions
	upgrader   websocket.Upgrader
}

func NewWSHandler(hub *broker.Hub, dispatcher *broker.Dispatcher, opts broker.ClientOptions) *WSHandler {
	return &WSHandler{
		hub:        hub,
		dispatcher: dispatcher,
		opts:       opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origin checks belong to the auth gateway in front of this service
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeWSHandler handles GET /ws
func (h *WSHandler) ServeWSHandler(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Warn("ServeWSHandler: upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	client := broker.NewClient(conn, utils.UserID(c), h.opts)
	utils.Info("ServeWSHandler: connection opened", map[string]any{
		"client_id": client.ID(),
		"user_id":   client.UserID(),
	})
	client.Serve(c.Request.Context(), h.hub, h.dispatcher)
	utils.Info("ServeWSHandler: connection closed", map[string]any{"client_id": client.ID()})
}
