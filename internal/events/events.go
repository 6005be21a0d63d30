// Package events broadcasts session-wide events to the components that hold
// per-user state.
package events

import "time"

// EventType identifies an event.
type EventType string

const (
	// EventCleared is broadcast once when the session ends and every
	// component must drop its in-memory state.
	EventCleared EventType = "session.cleared"
	// EventSynced is broadcast after a full sync of every collection.
	EventSynced EventType = "sync.completed"
)

// Event is a single broadcast.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id,omitempty"`
	At     time.Time `json:"at"`
}

// NewClearedEvent creates the logout broadcast.
func NewClearedEvent(userID string) Event {
	return Event{Type: EventCleared, UserID: userID, At: time.Now()}
}

// NewSyncedEvent creates the sync completion broadcast.
func NewSyncedEvent(userID string) Event {
	return Event{Type: EventSynced, UserID: userID, At: time.Now()}
}
