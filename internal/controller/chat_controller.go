package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/pkg/serverutils"
	"pdfchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Chat(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	logger  logger.ILogger
}

func NewChatController(service service.IChatService, log logger.ILogger) IChatController {
	return &chatController{service: service, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/chat", auth, c.Chat)
	r.Post("/messages", auth, c.ListMessages)
}

// writeFrame emits one server-sent event and flushes it. A flush error
// means the client is gone.
func writeFrame(w *bufio.Writer, event string, frame dto.ChatStreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// Chat streams the answer as text/event-stream. Everything that can fail
// before the first token (ownership, rate limit) is returned as a normal
// error response; the stream only starts once the model has accepted the
// request.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	answer, err := c.service.OpenChat(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	// The writer runs after the handler returns, so it must not touch ctx.
	streamCtx := context.WithoutCancel(ctx.UserContext())
	conversationId := req.ConversationId

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		_, err := answer.Deliver(streamCtx, func(token string) error {
			return writeFrame(w, "", dto.ChatStreamFrame{Token: token})
		})
		if err != nil {
			c.logger.Warn("ChatController", "Stream ended early", map[string]interface{}{
				"conversation_id": conversationId,
				"error":           err.Error(),
			})
			_ = writeFrame(w, "error", dto.ChatStreamFrame{Error: "stream interrupted"})
			return
		}
		_ = writeFrame(w, "done", dto.ChatStreamFrame{})
	})
	return nil
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ListMessagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ListMessages(ctx.UserContext(), userId, req.ConversationId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching messages", res))
}
