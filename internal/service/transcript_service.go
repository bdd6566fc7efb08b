package service

import (
	"context"
	"fmt"
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/pkg/rag/response"

	"github.com/google/uuid"
)

// assistantOffset keeps the answer strictly after the question when both
// rows are ordered by created_at.
const assistantOffset = time.Millisecond

type transcriptStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTranscriptStore(uowFactory unitofwork.RepositoryFactory) response.TranscriptStore {
	return &transcriptStore{uowFactory: uowFactory}
}

// AppendExchange writes the question and the answer in one transaction
// and bumps the conversation so it sorts first in the sidebar. Rows that
// already exist are skipped, so replaying a transcript is harmless.
func (s *transcriptStore) AppendExchange(ctx context.Context, t response.Transcript) error {
	conversationId, err := uuid.Parse(t.ConversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q: %w", t.ConversationID, err)
	}

	userMessageId, err := messageID(t.UserMessageID)
	if err != nil {
		return err
	}
	answerId, err := messageID(t.AnswerID)
	if err != nil {
		return err
	}

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	messages := []*entity.Message{
		{
			Id:             userMessageId,
			ConversationId: conversationId,
			Role:           entity.MessageRoleUser,
			Content:        t.UserMessage,
			CreatedAt:      createdAt,
		},
		{
			Id:             answerId,
			ConversationId: conversationId,
			Role:           entity.MessageRoleAssistant,
			Content:        t.Answer,
			CreatedAt:      createdAt.Add(assistantOffset),
		},
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().CreateBulk(ctx, messages); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Touch(ctx, conversationId); err != nil {
		return err
	}

	return uow.Commit()
}

// messageID parses a pre-assigned id. Transcripts queued without one get
// a fresh id.
func messageID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid message id %q: %w", raw, err)
	}
	return id, nil
}
