package persistence

import (
	"context"
)

// EventType names an operation event emitted by the store.
type EventType string

const (
	DocumentCreateStart   EventType = "document:create:start"
	DocumentCreateSuccess EventType = "document:create:success"
	DocumentCreateFailed  EventType = "document:create:failed"

	DocumentReadStart   EventType = "document:read:start"
	DocumentReadSuccess EventType = "document:read:success"
	DocumentReadFailed  EventType = "document:read:failed"

	DocumentUpdateStart   EventType = "document:update:start"
	DocumentUpdateSuccess EventType = "document:update:success"
	DocumentUpdateFailed  EventType = "document:update:failed"

	DocumentDeleteStart   EventType = "document:delete:start"
	DocumentDeleteSuccess EventType = "document:delete:success"
	DocumentDeleteFailed  EventType = "document:delete:failed"

	TableCreate EventType = "table:create"
)

// Event describes one step of a store operation. Events are telemetry about
// operations; they carry copies of the data involved and never reflect later
// writes.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  int64     `json:"timestamp"` // Unix milliseconds.
	Operation  string    `json:"operation"`
	Collection string    `json:"collection"`
	DocumentID *string   `json:"documentId,omitempty"`
	Input      any       `json:"input,omitempty"`
	Output     any       `json:"output,omitempty"`
	Query      any       `json:"query,omitempty"`
	Error      *string   `json:"error,omitempty"`
	Duration   *int64    `json:"duration,omitempty"` // Milliseconds since the operation started.
}

// EventCallback receives events for a subscription.
type EventCallback func(ctx context.Context, event Event) error

// SubscribeOptions describes a subscription.
type SubscribeOptions struct {
	Event       EventType
	Label       *string
	Description *string
	Callback    EventCallback
}

// SubscriptionInfo describes an active subscription.
type SubscriptionInfo struct {
	ID          string    `json:"id"`
	Event       EventType `json:"event"`
	Label       *string   `json:"label,omitempty"`
	Description *string   `json:"description,omitempty"`
	unsubscribe func()
}
