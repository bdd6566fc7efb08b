package handler

import (
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/pkg/serverutils"
	internalWS "pdfchat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// StatusHandler upgrades authenticated clients to the websocket that
// carries ingestion and subscription status pushes.
type StatusHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewStatusHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *StatusHandler {
	return &StatusHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// authenticate accepts the token from the query string (browsers cannot
// set headers on a websocket handshake) or the Authorization header.
func (h *StatusHandler) authenticate(c *fiber.Ctx) (uuid.UUID, error) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}
	if tokenStr == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')")
	}

	userID, err := serverutils.ParseUserID(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("StatusHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return userID, nil
}

// ServeWs handles websocket requests from the peer.
func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	userID, err := h.authenticate(c)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StatusHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("StatusHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
