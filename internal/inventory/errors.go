package inventory

import (
	"errors"

	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Message   string            `json:"message"`
	Field     string            `json:"field,omitempty"`
	Shortages []ledger.Shortage `json:"shortages,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

// respondError ledger hatalarını HTTP cevabına çevirir. Tanınmayan hatalar
// uygulamanın ErrorHandler'ına gider (500).
func respondError(c *fiber.Ctx, err error) error {
	var (
		ve *ledger.ValidationError
		se *ledger.InsufficientStockError
		ce *ledger.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Message: ve.Error(), Field: ve.Field})
	case errors.As(err, &se):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Message: se.Error(), Shortages: se.Shortages})
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Message: ce.Message, Retryable: ce.Retryable})
	case errors.Is(err, ledger.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Message: err.Error()})
	}
	return err
}
