package service

import (
	"context"
	"encoding/json"
	"time"

	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/rag/response"
	"pdfchat-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService is the reconciliation queue for transcripts whose inline
// commit failed. Enqueue feeds it; Consume drains it in the background.
type IConsumerService interface {
	response.Reconciler
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	store           response.TranscriptStore
	maxRedeliveries int
	baseDelay       time.Duration
	logger          logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	store response.TranscriptStore,
	maxRedeliveries int,
	baseDelay time.Duration,
	log logger.ILogger,
) IConsumerService {
	if maxRedeliveries <= 0 {
		maxRedeliveries = 5
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		store:           store,
		maxRedeliveries: maxRedeliveries,
		baseDelay:       baseDelay,
		logger:          log,
	}
}

func (cs *consumerService) Enqueue(ctx context.Context, t response.Transcript) error {
	return cs.publish(dto.PublishTranscriptMessage{Transcript: t})
}

func (cs *consumerService) publish(payload dto.PublishTranscriptMessage) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return cs.pubSub.Publish(cs.topicName, message.NewMessage(watermill.NewUUID(), data))
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. A failed commit is republished after a
// backoff instead of nacked, so one poison transcript cannot spin the
// subscriber.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishTranscriptMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Reconcile", "Failed to unmarshal transcript", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	err := cs.store.AppendExchange(ctx, payload.Transcript)
	msg.Ack()

	if err == nil {
		cs.logger.Info("Reconcile", "Transcript committed", map[string]interface{}{
			"conversation_id": payload.Transcript.ConversationID,
			"attempt":         payload.Attempt + 1,
		})
		return
	}

	payload.Attempt++
	if payload.Attempt >= cs.maxRedeliveries {
		cs.logger.Error("Reconcile", "Giving up on transcript", map[string]interface{}{
			"conversation_id": payload.Transcript.ConversationID,
			"attempts":        payload.Attempt,
			"error":           err.Error(),
		})
		return
	}

	delay := utils.CalculateBackoff(cs.baseDelay, payload.Attempt)
	cs.logger.Warn("Reconcile", "Transcript commit failed, retrying", map[string]interface{}{
		"conversation_id": payload.Transcript.ConversationID,
		"attempt":         payload.Attempt,
		"retry_in_ms":     delay.Milliseconds(),
		"error":           err.Error(),
	})

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := cs.publish(payload); err != nil {
			cs.logger.Error("Reconcile", "Failed to requeue transcript", map[string]interface{}{
				"conversation_id": payload.Transcript.ConversationID,
				"error":           err.Error(),
			})
		}
	}()
}
