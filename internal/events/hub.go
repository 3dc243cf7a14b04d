package events

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrSubscriberClosed is returned when attempting to send to a closed subscriber
var ErrSubscriberClosed = errors.New("subscriber is closed")

// Subscriber receives serialized events for the scopes it listens on
type Subscriber interface {
	ID() string
	Scopes() []string
	Send(data []byte) error
	Close() error
}

// Hub fans events out to subscribers organized by scope.
// It is safe for concurrent use.
type Hub struct {
	// scopes maps scope to a map of subscriber ID to subscriber
	scopes map[string]map[string]Subscriber
	mu     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		scopes: make(map[string]map[string]Subscriber),
	}
}

// Register adds a subscriber under each of its scopes
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, scope := range sub.Scopes() {
		if h.scopes[scope] == nil {
			h.scopes[scope] = make(map[string]Subscriber)
		}
		h.scopes[scope][sub.ID()] = sub
	}

	log.Debug().
		Strs("scopes", sub.Scopes()).
		Str("subscriber_id", sub.ID()).
		Msg("Subscriber registered")
}

// Unregister removes a subscriber from every scope
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, scope := range sub.Scopes() {
		subs, ok := h.scopes[scope]
		if !ok {
			continue
		}
		if _, exists := subs[sub.ID()]; !exists {
			continue
		}
		delete(subs, sub.ID())

		// Clean up empty scope maps
		if len(subs) == 0 {
			delete(h.scopes, scope)
		}
	}

	log.Debug().
		Str("subscriber_id", sub.ID()).
		Msg("Subscriber unregistered")
}

// Broadcast sends an event to all subscribers of a scope
func (h *Hub) Broadcast(scope string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	subs, ok := h.scopes[scope]
	if !ok || len(subs) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy subscribers to avoid holding lock during send
	subsCopy := make([]Subscriber, 0, len(subs))
	for _, sub := range subs {
		subsCopy = append(subsCopy, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subsCopy {
		go func(s Subscriber) {
			if err := s.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("scope", scope).
					Str("subscriber_id", s.ID()).
					Msg("Failed to send to subscriber")
			}
		}(sub)
	}

	log.Debug().
		Str("scope", scope).
		Str("event_type", event.Type).
		Int("subscriber_count", len(subsCopy)).
		Msg("Broadcast event")
}

// SubscriberCount returns the number of subscribers listening on a scope
func (h *Hub) SubscriberCount(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.scopes[scope]; ok {
		return len(subs)
	}
	return 0
}
