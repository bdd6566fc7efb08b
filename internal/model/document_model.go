package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"`
	FileKey    string    `gorm:"type:text;not null;uniqueIndex"`
	Name       string    `gorm:"type:text;not null"`
	SourceURL  string    `gorm:"type:text;not null"`
	Namespace  string    `gorm:"type:text;not null;index"`
	Status     string    `gorm:"type:varchar(20);not null;default:'ready';index"`
	PageCount  int       `gorm:"not null;default:0"`
	ChunkCount int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
