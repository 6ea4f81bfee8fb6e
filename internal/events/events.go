// Package events is the in-process pub/sub channel for booking
// lifecycle notifications.
package events

import (
	"sync"
	"time"

	"salonbook/internal/model"
)

// Booking lifecycle event types.
const (
	BookingCreated     = "booking.created"
	BookingRescheduled = "booking.rescheduled"
	BookingCancelled   = "booking.cancelled"
	BookingCompleted   = "booking.completed"
)

// Event carries one lifecycle transition.
type Event struct {
	Type    string
	Booking model.Booking
	At      time.Time
}

// Handler reacts to an event. Handlers run synchronously on the
// publisher's goroutine; slow consumers should hand off internally.
type Handler func(event Event)

// Bus provides in-process pub/sub for booking events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	for _, handler := range handlers {
		handler(event)
	}
}
