package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kindness-pool/backend/internal/chain"
	"github.com/kindness-pool/backend/internal/gateway"
	"github.com/kindness-pool/backend/internal/http/dto"
	"github.com/kindness-pool/backend/internal/middleware"
	"github.com/kindness-pool/backend/internal/repositories"
	"go.uber.org/zap"
)

type UserHandler struct {
	gw         *gateway.Gateway
	reader     chain.Reader
	actionRepo *repositories.ActionRepo
	log        *zap.Logger
}

func NewUserHandler(gw *gateway.Gateway, reader chain.Reader, actionRepo *repositories.ActionRepo, log *zap.Logger) *UserHandler {
	return &UserHandler{gw: gw, reader: reader, actionRepo: actionRepo, log: log}
}

// SetName submits the display-name registration.
// POST /me/name
func (h *UserHandler) SetName(c *fiber.Ctx) error {
	var req dto.SetNameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	action, err := h.gw.SubmitSetName(c.Context(), middleware.GetAddress(c), req.Name)
	return respondAction(c, action, err)
}

// PendingActions lists live and recently resolved actions.
// GET /me/actions
func (h *UserHandler) PendingActions(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.gw.Pending(middleware.GetAddress(c))})
}

// ActionHistory lists terminal actions from durable storage.
// GET /me/actions/history
func (h *UserHandler) ActionHistory(c *fiber.Ctx) error {
	history, err := h.actionRepo.ListByAddress(c.Context(), middleware.GetAddress(c), c.QueryInt("limit", 50))
	if err != nil {
		h.log.Error("failed to load action history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: history})
}

// DailyStats returns today's contribution accounting and eligibility flags.
// GET /me/daily-stats
func (h *UserHandler) DailyStats(c *fiber.Ctx) error {
	stats, err := h.reader.UserDailyStats(c.Context(), middleware.GetAddress(c))
	if err != nil {
		h.log.Warn("daily stats read failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "stats unavailable"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewDailyStatsResponse(stats)})
}

// Stats returns the lifetime user record.
// GET /me/stats
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reader.UserStats(c.Context(), middleware.GetAddress(c))
	if err != nil {
		h.log.Warn("user stats read failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "stats unavailable"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewUserStatsResponse(stats)})
}
