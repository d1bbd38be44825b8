// Package serial provides the single-writer unit used for auctions and transactions.
package serial

import (
	"context"
	"sync"
)

// Unit admits one holder at a time; acquiring respects context deadlines
type Unit struct {
	slot chan struct{}
}

// NewUnit returns an unheld unit
func NewUnit() *Unit {
	return &Unit{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the unit is held or ctx is done
func (u *Unit) Acquire(ctx context.Context) error {
	select {
	case u.slot <- struct{}{}:
		return nil
	default:
	}
	select {
	case u.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release gives the unit back; it must only be called by the holder
func (u *Unit) Release() {
	<-u.slot
}

// Set lazily creates one Unit per key
type Set struct {
	mu    sync.Mutex
	units map[string]*Unit
}

// NewSet returns an empty set
func NewSet() *Set {
	return &Set{units: make(map[string]*Unit)}
}

// Get returns the unit for key, creating it on first use
func (s *Set) Get(key string) *Unit {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.units[key]
	if !ok {
		u = NewUnit()
		s.units[key] = u
	}
	return u
}
