package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Conversation is the chat attached to exactly one document.
type Conversation struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	DocumentId uuid.UUID
	FileKey    string
	Title      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
