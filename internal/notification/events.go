// internal/notification/events.go
// Event types emitted by matching and dating state transitions

package notification

import (
	"context"
	"time"
)

// EventType identifies what happened
type EventType string

const (
	EventMutualMatch    EventType = "match.mutual"
	EventDateRequested  EventType = "date.requested"
	EventDateResponded  EventType = "date.responded"
	EventDateCancelled  EventType = "date.cancelled"
	EventDateCompleted  EventType = "date.completed"
	EventDateReminder   EventType = "date.reminder"
	EventAdmirersDigest EventType = "digest.admirers"
)

// Event is one rendered notification for one user
type Event struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      EventType         `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Notifier is the best-effort fan-out the core calls at the end of a state
// transition. Notify never blocks on delivery and never reports failure.
type Notifier interface {
	Notify(ctx context.Context, userID string, eventType EventType, payload map[string]string)
}

// Dispatcher delivers events over one channel
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, ev Event) error
}
