package events

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is an in-process subscriber backed by a buffered channel
type Subscription struct {
	id        string
	scopes    []string
	ch        chan []byte
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// Subscribe registers a channel-backed subscriber for the given scopes.
// Call Close (or Hub.Unregister) when done.
func (h *Hub) Subscribe(buffer int, scopes ...string) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	s := &Subscription{
		id:     uuid.NewString(),
		scopes: scopes,
		ch:     make(chan []byte, buffer),
	}
	h.Register(s)
	return s
}

// ID returns the subscription identifier
func (s *Subscription) ID() string { return s.id }

// Scopes returns the scopes the subscription listens on
func (s *Subscription) Scopes() []string { return s.scopes }

// C returns the channel serialized events arrive on
func (s *Subscription) C() <-chan []byte { return s.ch }

// Send queues data, dropping it if the buffer is full
func (s *Subscription) Send(data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSubscriberClosed
	}
	select {
	case s.ch <- data:
		return nil
	default:
		return ErrSubscriberClosed
	}
}

// Close closes the channel. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
	return nil
}
