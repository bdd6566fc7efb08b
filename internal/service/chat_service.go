package service

import (
	"context"
	"strings"

	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/llm"
	"pdfchat-be/pkg/rag/response"
	"pdfchat-be/pkg/rag/retrieval"

	"github.com/google/uuid"
)

type Retriever interface {
	Search(ctx context.Context, query, fileKey string) *retrieval.Result
}

type AnswerOpener interface {
	Open(ctx context.Context, req response.Request) (*response.Answer, error)
}

type IChatService interface {
	// OpenChat resolves the turn and opens the model stream. Errors that
	// happen here still reach the client as a normal HTTP error.
	OpenChat(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*response.Answer, error)
	ListMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.MessageResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	retriever  Retriever
	generator  AnswerOpener
	maxHistory int
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	retriever Retriever,
	generator AnswerOpener,
	maxHistory int,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		retriever:  retriever,
		generator:  generator,
		maxHistory: maxHistory,
		logger:     log,
	}
}

func (s *chatService) ownedConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, conversationId uuid.UUID) (*entity.Conversation, error) {
	conv, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.ErrNotFound
	}
	if conv.UserId != userId {
		return nil, apperror.ErrForbidden
	}
	return conv, nil
}

func (s *chatService) OpenChat(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*response.Answer, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := s.ownedConversation(ctx, uow, userId, req.ConversationId)
	if err != nil {
		return nil, err
	}

	query, history := splitTurn(req.Messages)
	if query == "" {
		return nil, apperror.ErrEmptyInput
	}

	// A client that only sends the question gets the stored history.
	if len(history) == 0 {
		history, err = s.storedHistory(ctx, uow, conv.Id)
		if err != nil {
			return nil, err
		}
	}

	result := s.retriever.Search(ctx, query, conv.FileKey)

	s.logger.Info("ChatService", "Turn resolved", map[string]interface{}{
		"conversation_id": conv.Id,
		"intent":          result.Intent,
		"matches":         len(result.Matches),
		"degraded":        result.Degraded,
		"history":         len(history),
	})

	return s.generator.Open(ctx, response.Request{
		ConversationID: conv.Id.String(),
		History:        history,
		Query:          query,
		Context:        result.Context,
	})
}

// splitTurn takes the last user message as the question and everything
// before it as history.
func splitTurn(messages []dto.ChatMessageDTO) (string, []llm.Message) {
	last := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			last = i
			break
		}
	}
	if last < 0 {
		return "", nil
	}

	history := make([]llm.Message, 0, last)
	for _, m := range messages[:last] {
		if m.Role == llm.RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	return strings.TrimSpace(messages[last].Content), history
}

func (s *chatService) storedHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]llm.Message, error) {
	if s.maxHistory <= 0 {
		return nil, nil
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: s.maxHistory},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, len(messages))
	for i, m := range messages {
		history[len(messages)-1-i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}
	return history, nil
}

func (s *chatService) ListMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.ownedConversation(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, &dto.MessageResponse{
			Id:        m.Id,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return res, nil
}
