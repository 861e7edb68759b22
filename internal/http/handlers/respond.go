package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kindness-pool/backend/internal/gateway"
	"github.com/kindness-pool/backend/internal/http/dto"
	"github.com/kindness-pool/backend/internal/models"
)

// respondAction maps a gateway submit result onto HTTP. A duplicate submit
// returns the action already in flight rather than an error payload, which
// is what a disabled button degrades to under racing clicks.
func respondAction(c *fiber.Ctx, action models.PendingAction, err error) error {
	if err == nil {
		return c.Status(fiber.StatusAccepted).JSON(dto.SuccessResponse{OK: true, Data: action})
	}

	if errors.Is(err, gateway.ErrActionInFlight) {
		return c.Status(fiber.StatusConflict).JSON(dto.SuccessResponse{OK: true, Data: action})
	}

	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: validationErr.Reason})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
}
