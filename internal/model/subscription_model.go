package model

import (
	"time"

	"github.com/google/uuid"
)

type UserSubscription struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	OrderId          string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	PlanSlug         string     `gorm:"type:varchar(64);not null"`
	Status           string     `gorm:"type:subscription_status;not null;default:'inactive'"`
	PaymentStatus    string     `gorm:"type:payment_status;not null;default:'pending'"`
	GrossAmount      int64      `gorm:"not null;default:0"`
	CurrentPeriodEnd *time.Time `gorm:"type:timestamptz"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
