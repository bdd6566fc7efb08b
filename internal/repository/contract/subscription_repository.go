package contract

import (
	"context"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/repository/specification"
)

type SubscriptionRepository interface {
	// Save inserts or updates the caller's single subscription row.
	Save(ctx context.Context, sub *entity.UserSubscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error)
	// FindOneForUpdate locks the matched row until the transaction ends.
	FindOneForUpdate(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error)
}
