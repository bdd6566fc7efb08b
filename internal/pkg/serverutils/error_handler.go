package serverutils

import (
	"errors"
	"math"
	"strconv"

	"pdfchat-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error returned by a handler to an HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	var ve *ValidationError
	var rl *apperror.RateLimitError

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &rl), errors.Is(err, apperror.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrSourceNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperror.ErrQuotaExceeded):
		return fiber.StatusPaymentRequired
	case errors.Is(err, apperror.ErrExtraction):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrEmptyInput):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrEmbeddingService):
		return fiber.StatusBadGateway
	case errors.Is(err, apperror.ErrIndexUnavailable), errors.Is(err, apperror.ErrStorageFailure):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned further down the chain into
// the JSON envelope. Internal errors hide their message.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

func WriteError(ctx *fiber.Ctx, err error) error {
	status := StatusFor(err)

	var rl *apperror.RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	resp := ErrorResponse(status, message)

	var ve *ValidationError
	if errors.As(err, &ve) {
		resp.Message = "Validation failed"
		resp.Errors = ve.Fields
	}
	return ctx.Status(status).JSON(resp)
}
