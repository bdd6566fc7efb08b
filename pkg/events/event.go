package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeDocumentIngested        = "DOCUMENT_INGESTED"
	TypeDocumentIngestionFailed = "DOCUMENT_INGESTION_FAILED"
	TypeSubscriptionActivated   = "SUBSCRIPTION_ACTIVATED"
)

// BaseEvent is the only concrete Event; Type selects the subject.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// UserID returns the "user_id" payload field used to route status pushes,
// or "" when the event is not addressed to a user.
func UserID(e Event) string {
	if e == nil {
		return ""
	}
	v, _ := e.Payload()["user_id"].(string)
	return v
}

func DocumentIngested(userID, documentID, conversationID, fileKey string, pages, chunks int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"user_id":         userID,
			"document_id":     documentID,
			"conversation_id": conversationID,
			"file_key":        fileKey,
			"page_count":      pages,
			"chunk_count":     chunks,
		},
		OccurredAt: time.Now(),
	}
}

func DocumentIngestionFailed(userID, fileKey, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIngestionFailed,
		Data: map[string]interface{}{
			"user_id":  userID,
			"file_key": fileKey,
			"reason":   reason,
		},
		OccurredAt: time.Now(),
	}
}

func SubscriptionActivated(userID, orderID string, periodEnd time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeSubscriptionActivated,
		Data: map[string]interface{}{
			"user_id":            userID,
			"order_id":           orderID,
			"current_period_end": periodEnd,
		},
		OccurredAt: time.Now(),
	}
}
