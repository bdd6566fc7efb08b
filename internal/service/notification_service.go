package service

import (
	"context"

	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/websocket"
	"pdfchat-be/pkg/events"
	pktNats "pdfchat-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery pushes a status frame to every socket of a user.
// Implemented by the websocket Hub.
type NotificationDelivery interface {
	Send(ctx context.Context, userID uuid.UUID, msg websocket.Message) error
}

// EventSubscriber is the consuming side of the event bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// NotificationService forwards ingestion and subscription events to the
// owning user's open sockets.
type NotificationService struct {
	subscriber EventSubscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub EventSubscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, "events.>", "status-push-worker", s.HandleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
	return nil
}

// HandleEvent drops events with no addressable user; they would be
// redelivered forever otherwise.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	userID, err := uuid.Parse(events.UserID(event))
	if err != nil {
		s.logger.Warn("NotificationService", "Event has no user, skipping", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}

	data := event.Payload()
	payload := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		if k == "user_id" {
			continue
		}
		payload[k] = v
	}
	payload["occurred_at"] = event.Timestamp()

	return s.delivery.Send(ctx, userID, websocket.Message{
		Type: event.EventType(),
		Data: payload,
	})
}
