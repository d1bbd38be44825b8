// Package broker keeps the live connections of each auction and routes their requests.
package broker

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/events"
	"auction-engine/internal/telemetry"
	"auction-engine/utils"
	"context"
	"sync"
)

// Subscriber is one live connection that can receive encoded events
type Subscriber interface {
	ID() string
	// Send enqueues without blocking and reports false when the subscriber cannot take more
	Send(data []byte) bool
	Close()
}

// Hub tracks which subscribers follow which auction and fans events out to them.
// Delivery to a subscriber follows the order of Broadcast calls for an auction.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[string]Subscriber
	members map[string]map[string]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[string]Subscriber),
		members: make(map[string]map[string]struct{}),
	}
}

// Join subscribes s to an auction
func (h *Hub) Join(auctionID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[auctionID]
	if !ok {
		room = make(map[string]Subscriber)
		h.rooms[auctionID] = room
	}
	room[s.ID()] = s

	joined, ok := h.members[s.ID()]
	if !ok {
		joined = make(map[string]struct{})
		h.members[s.ID()] = joined
	}
	joined[auctionID] = struct{}{}
}

// Leave unsubscribes s from an auction
func (h *Hub) Leave(auctionID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(auctionID, s.ID())
}

// LeaveAll unsubscribes s from every auction it joined
func (h *Hub) LeaveAll(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for auctionID := range h.members[s.ID()] {
		h.leave(auctionID, s.ID())
	}
	delete(h.members, s.ID())
}

func (h *Hub) leave(auctionID, subscriberID string) {
	if room, ok := h.rooms[auctionID]; ok {
		delete(room, subscriberID)
		if len(room) == 0 {
			delete(h.rooms, auctionID)
		}
	}
	if joined, ok := h.members[subscriberID]; ok {
		delete(joined, auctionID)
		if len(joined) == 0 {
			delete(h.members, subscriberID)
		}
	}
}

// Subscribers returns how many connections follow an auction
func (h *Hub) Subscribers(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[auctionID])
}

// Broadcast encodes ev once and enqueues it for every subscriber of the auction.
// It never blocks: a subscriber whose queue is full is dropped and closed.
func (h *Hub) Broadcast(auctionID string, ev events.Event) {
	data, err := events.Encode(ev)
	if err != nil {
		utils.Error("hub: failed to encode event", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	var dropped []Subscriber
	h.mu.RLock()
	for _, s := range h.rooms[auctionID] {
		if !s.Send(data) {
			dropped = append(dropped, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range dropped {
		h.LeaveAll(s)
		s.Close()
		telemetry.SubscribersDropped.Add(context.Background(), 1)
		utils.Warn("hub: dropped subscriber", map[string]any{
			"auction_id":    auctionID,
			"subscriber_id": s.ID(),
			"reason":        biddingerrors.Code(biddingerrors.ErrConnectionUnavailable),
		})
	}
}
