package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kindness-pool/backend/internal/chain"
	"github.com/kindness-pool/backend/internal/gateway"
	"github.com/kindness-pool/backend/internal/http/dto"
	"github.com/kindness-pool/backend/internal/middleware"
	"go.uber.org/zap"
)

type PoolHandler struct {
	gw     *gateway.Gateway
	reader chain.Reader
	log    *zap.Logger
}

func NewPoolHandler(gw *gateway.Gateway, reader chain.Reader, log *zap.Logger) *PoolHandler {
	return &PoolHandler{gw: gw, reader: reader, log: log}
}

// Stats returns the public pool snapshot.
// GET /pool
func (h *PoolHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reader.PoolStats(c.Context())
	if err != nil {
		h.log.Warn("pool stats read failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "pool stats unavailable"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewPoolStatsResponse(stats)})
}

// Constants returns the contract limits (with defaults when the chain is
// unreachable).
// GET /pool/constants
func (h *PoolHandler) Constants(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewConstantsResponse(h.reader.Constants(c.Context()))})
}

// Give contributes ETH to the daily pool.
// POST /pool/give
func (h *PoolHandler) Give(c *fiber.Ctx) error {
	var req dto.GiveKindnessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	action, err := h.gw.SubmitContribution(c.Context(), middleware.GetAddress(c), req.AmountEth)
	return respondAction(c, action, err)
}

// EnterReceiverPool opts the caller into today's receiver pool.
// POST /pool/receiver/enter
func (h *PoolHandler) EnterReceiverPool(c *fiber.Ctx) error {
	action, err := h.gw.SubmitEnterReceiverPool(c.Context(), middleware.GetAddress(c))
	return respondAction(c, action, err)
}

// LeaveReceiverPool opts the caller out of the receiver pool.
// POST /pool/receiver/leave
func (h *PoolHandler) LeaveReceiverPool(c *fiber.Ctx) error {
	action, err := h.gw.SubmitLeaveReceiverPool(c.Context(), middleware.GetAddress(c))
	return respondAction(c, action, err)
}

// Withdraw pulls back part of today's contribution.
// POST /pool/withdraw
func (h *PoolHandler) Withdraw(c *fiber.Ctx) error {
	var req dto.WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	action, err := h.gw.SubmitWithdraw(c.Context(), middleware.GetAddress(c), req.AmountEth)
	return respondAction(c, action, err)
}
