// Package notify publishes document lifecycle events to an outbound
// sink. Delivery is fire-and-forget: the lifecycle coordinator never fails
// an operation because a notification could not be sent.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by the lifecycle coordinator.
const (
	EventDocumentIngested     = "document_ingested"
	EventDocumentRemoved      = "document_removed"
	EventIngestPartialFailure = "ingest_partial_failure"
)

// Event is a document lifecycle notification.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	DocumentID string    `json:"document_id"`
	Subject    string    `json:"subject,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(eventType, documentID, subject, detail string) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		DocumentID: documentID,
		Subject:    subject,
		Detail:     detail,
		Timestamp:  time.Now().UTC(),
	}
}

// Notifier delivers events to an external sink.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopNotifier discards all events.
type NoopNotifier struct{}

func (NoopNotifier) Publish(ctx context.Context, event Event) error { return nil }
func (NoopNotifier) Close() error                                   { return nil }
