package implementation

import (
	"context"
	"errors"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/mapper"
	"pdfchat-be/internal/model"
	"pdfchat-be/internal/repository/contract"
	"pdfchat-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) Save(ctx context.Context, sub *entity.UserSubscription) error {
	m := r.mapper.ToModel(sub)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"order_id", "plan_slug", "status", "payment_status", "gross_amount", "current_period_end", "updated_at",
			}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*sub = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error) {
	return r.findOne(r.db.WithContext(ctx), specs...)
}

func (r *SubscriptionRepositoryImpl) FindOneForUpdate(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), specs...)
}

func (r *SubscriptionRepositoryImpl) findOne(db *gorm.DB, specs ...specification.Specification) (*entity.UserSubscription, error) {
	var m model.UserSubscription
	query := applySpecifications(db, specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
