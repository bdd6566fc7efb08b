package mapper

import (
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.UserSubscription) *entity.UserSubscription {
	if s == nil {
		return nil
	}
	return &entity.UserSubscription{
		Id:               s.Id,
		UserId:           s.UserId,
		OrderId:          s.OrderId,
		PlanSlug:         s.PlanSlug,
		Status:           entity.SubscriptionStatus(s.Status),
		PaymentStatus:    entity.PaymentStatus(s.PaymentStatus),
		GrossAmount:      s.GrossAmount,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.UserSubscription) *model.UserSubscription {
	if s == nil {
		return nil
	}
	return &model.UserSubscription{
		Id:               s.Id,
		UserId:           s.UserId,
		OrderId:          s.OrderId,
		PlanSlug:         s.PlanSlug,
		Status:           string(s.Status),
		PaymentStatus:    string(s.PaymentStatus),
		GrossAmount:      s.GrossAmount,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
