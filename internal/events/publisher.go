package events

// Publisher delivers events to every subscriber of a scope
type Publisher interface {
	Publish(scope string, event Event)
}

// Ensure Hub implements Publisher
var _ Publisher = (*Hub)(nil)

// Publish implements Publisher by broadcasting the event to the scope
func (h *Hub) Publish(scope string, event Event) {
	h.Broadcast(scope, event)
}

// NoOpPublisher is a publisher that does nothing (for tests or when fan-out is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n NoOpPublisher) Publish(scope string, event Event) {}
