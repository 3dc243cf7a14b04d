package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeChanged EventType = "changed"
)

// EntityType represents the kind of entity an event is about
type EntityType string

const (
	EntityWorkspace   EntityType = "workspace"
	EntityDecision    EntityType = "decision"
	EntityEquity      EntityType = "equity"
	EntityRole        EntityType = "role"
	EntityKPI         EntityType = "kpi"
	EntityCheckin     EntityType = "checkin"
	EntityParticipant EntityType = "participant"
	EntityTask        EntityType = "task"
	EntityDocument    EntityType = "document"
)

// Topic is a cross-page notification raised by the browser
type Topic string

const (
	TopicProjectCreated   Topic = "projectCreated"
	TopicInterestAccepted Topic = "interestAccepted"
	TopicInterestsViewed  Topic = "interestsViewed"
	TopicCreditsUpdated   Topic = "creditsUpdated"
)

// Valid reports whether t is a known notification topic
func (t Topic) Valid() bool {
	switch t {
	case TopicProjectCreated, TopicInterestAccepted, TopicInterestsViewed, TopicCreditsUpdated:
		return true
	}
	return false
}

// Event is the message delivered to subscribers
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string     `json:"type"`
	Entity    EntityType `json:"entity,omitempty"`
	Payload   any        `json:"payload"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewEvent creates an entity event such as "kpi.updated"
func NewEvent(eventType EventType, entityType EntityType, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Notification creates a topic event such as "creditsUpdated"
func Notification(topic Topic, payload any) Event {
	return Event{
		Type:      string(topic),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WorkspaceScope is the delivery scope for events about one workspace
func WorkspaceScope(workspaceID string) string {
	return "workspace:" + workspaceID
}

// UserScope is the delivery scope for notifications addressed to one identity
func UserScope(identity string) string {
	return "user:" + identity
}
