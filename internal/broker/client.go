package broker

import (
	"auction-engine/internal/events"
	"auction-engine/utils"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

// ClientOptions tune a websocket client
type ClientOptions struct {
	QueueSize        int
	BidRatePerSecond float64
	BidBurst         int
}

// Client is a websocket connection. Outbound events go through a bounded queue
// drained by the write pump, so a slow peer never blocks a broadcaster.
type Client struct {
	id      string
	userID  string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection; userID is empty for guests
func NewClient(conn *websocket.Conn, userID string, opts ClientOptions) *Client {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.BidRatePerSecond <= 0 {
		opts.BidRatePerSecond = 5
	}
	if opts.BidBurst <= 0 {
		opts.BidBurst = 10
	}
	return &Client{
		id:      utils.GenerateID(),
		userID:  userID,
		conn:    conn,
		send:    make(chan []byte, opts.QueueSize),
		limiter: rate.NewLimiter(rate.Limit(opts.BidRatePerSecond), opts.BidBurst),
		done:    make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// UserID returns the authenticated user, or "" for a guest
func (c *Client) UserID() string { return c.userID }

// AllowBid applies the per-connection bid rate limit
func (c *Client) AllowBid() bool { return c.limiter.Allow() }

// Send enqueues an encoded event without blocking
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close stops both pumps; it is safe to call more than once
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Serve runs the connection until the peer goes away or ctx ends
func (c *Client) Serve(ctx context.Context, hub *Hub, d *Dispatcher) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		hub.LeaveAll(c)
		c.Close()
		_ = c.conn.Close()
	}()

	go c.writePump(ctx)
	c.readPump(ctx, d)
}

func (c *Client) readPump(ctx context.Context, d *Dispatcher) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.Warn("client: connection closed unexpectedly", map[string]any{"client_id": c.id, "error": err.Error()})
			}
			return
		}

		msg, err := events.Decode(data)
		if err != nil {
			code := "InvalidPayload"
			if errors.Is(err, events.ErrUnknownType) {
				code = "UnknownType"
			}
			reply(c, events.Error{Code: code, Message: err.Error()})
			continue
		}
		d.Handle(ctx, c, msg)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ctx.Done():
			return
		}
	}
}
