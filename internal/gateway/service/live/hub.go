// Package live fans recorded scans out to per-user subscribers.
package live

import (
	"sync"
	"sync/atomic"
	"time"

	"ecoledger/internal/gateway/entity"
)

const EventScan = "scan"

type Event struct {
	Type          string        `json:"type"`
	UserID        entity.UserID `json:"userId"`
	Category      string        `json:"category"`
	CO2Saved      float64       `json:"co2Saved"`
	TotalCO2Saved float64       `json:"totalCo2Saved"`
	Timestamp     time.Time     `json:"timestamp"`
}

type Hub struct {
	mu      sync.RWMutex
	subs    map[entity.UserID]map[*Subscription]struct{}
	buffer  int
	dropped atomic.Uint64
}

type Subscription struct {
	hub    *Hub
	userID entity.UserID
	ch     chan Event
	once   sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[entity.UserID]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe(userID entity.UserID) *Subscription {
	sub := &Subscription{
		hub:    h,
		userID: userID,
		ch:     make(chan Event, h.buffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish delivers ev to every subscriber of ev.UserID without blocking. A
// subscriber whose buffer is full misses the event. Returns the number of
// subscribers that received it.
func (h *Hub) Publish(ev Event) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for sub := range h.subs[ev.UserID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

func (h *Hub) Subscribers(userID entity.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Dropped counts events skipped because a subscriber was not keeping up.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close unregisters the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[s.userID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.userID)
			}
		}
		close(s.ch)
	})
}
