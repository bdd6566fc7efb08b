package unitofwork

import (
	"context"

	"pdfchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	SubscriptionRepository() contract.SubscriptionRepository
}
