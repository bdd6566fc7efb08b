package controller

import (
	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/pkg/serverutils"
	"pdfchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Checkout(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
	logger  logger.ILogger
}

func NewPaymentController(service service.IPaymentService, log logger.ILogger) IPaymentController {
	return &paymentController{service: service, logger: log}
}

func (c *paymentController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/subscription")
	h.Post("/webhook", c.Webhook)

	// Protected Routes
	h.Post("/checkout", auth, c.Checkout)
	h.Get("/status", auth, c.GetStatus)
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Checkout(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

// Webhook answers 5xx on internal failures so Midtrans retries the
// notification.
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		c.logger.Warn("PaymentController", "Webhook body parsing failed", map[string]interface{}{"error": err.Error()})
		return ctx.SendStatus(fiber.StatusBadRequest)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.HandleNotification(ctx.UserContext(), &req); err != nil {
		c.logger.Error("PaymentController", "Webhook handling failed", map[string]interface{}{
			"order_id": req.OrderId,
			"status":   req.TransactionStatus,
			"error":    err.Error(),
		})
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetSubscriptionStatus(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}
