package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PaymentStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// UserSubscription holds at most one row per user. OrderId is the id of
// the latest checkout sent to the payment processor.
type UserSubscription struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	OrderId          string
	PlanSlug         string
	Status           SubscriptionStatus
	PaymentStatus    PaymentStatus
	GrossAmount      int64
	CurrentPeriodEnd *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive reports whether the subscription is paid up at now.
func (s *UserSubscription) IsActive(now time.Time) bool {
	if s == nil || s.Status != SubscriptionStatusActive || s.CurrentPeriodEnd == nil {
		return false
	}
	return s.CurrentPeriodEnd.After(now)
}
