package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	DocumentId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FileKey    string    `gorm:"type:text;not null"`
	Title      string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Document *Document `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type Message struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	Role           string    `gorm:"type:varchar(16);not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;index:idx_messages_conversation_created,priority:2"`

	Conversation *Conversation `gorm:"foreignKey:ConversationId;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}
