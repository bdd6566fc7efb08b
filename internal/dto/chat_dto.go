package dto

import (
	"time"

	"pdfchat-be/pkg/rag/response"

	"github.com/google/uuid"
)

type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// ChatRequest carries the client's running transcript. The last user
// message is the question; earlier ones are history.
type ChatRequest struct {
	ConversationId uuid.UUID        `json:"conversation_id" validate:"required"`
	Messages       []ChatMessageDTO `json:"messages" validate:"required,min=1,dive"`
}

type ListMessagesRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatStreamFrame is the data payload of one server-sent event.
type ChatStreamFrame struct {
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// PublishTranscriptMessage is a transcript waiting on the reconciliation
// queue. Attempt counts failed commits so far.
type PublishTranscriptMessage struct {
	Transcript response.Transcript `json:"transcript"`
	Attempt    int                 `json:"attempt"`
}
