package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kindness-pool/backend/internal/gateway"
	"github.com/kindness-pool/backend/internal/http/dto"
	"github.com/kindness-pool/backend/internal/middleware"
	"github.com/kindness-pool/backend/internal/session"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *session.Manager
	gw       *gateway.Gateway
	log      *zap.Logger
}

func NewSessionHandler(sessions *session.Manager, gw *gateway.Gateway, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, gw: gw, log: log}
}

// Get re-derives the session from current inputs. Reloading the client and
// calling this yields the same classification the client had before.
// GET /me/session
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	snap := h.sessions.Current(c.Context(), middleware.GetAddress(c))
	return c.JSON(dto.SuccessResponse{OK: true, Data: snap})
}

// Disconnect drops the wallet connection, force-closing open modals. Any
// in-flight action resolves in the background and is discarded as stale.
// DELETE /me/session
func (h *SessionHandler) Disconnect(c *fiber.Ctx) error {
	snap := h.sessions.Disconnect(c.Context(), middleware.GetAddress(c))
	return c.JSON(dto.SuccessResponse{OK: true, Data: snap})
}

// OpenModal opens a modal when the current state allows it.
// POST /me/modals/open
func (h *SessionHandler) OpenModal(c *fiber.Ctx) error {
	var req dto.ModalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	snap, err := h.sessions.OpenModal(c.Context(), middleware.GetAddress(c), req.Modal)
	if err != nil {
		var modalErr *session.ModalError
		if errors.As(err, &modalErr) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: modalErr.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: snap})
}

// CloseModal closes a modal by explicit user action. In-flight actions
// submitted through the modal keep resolving.
// POST /me/modals/close
func (h *SessionHandler) CloseModal(c *fiber.Ctx) error {
	var req dto.ModalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	snap := h.sessions.CloseModal(c.Context(), middleware.GetAddress(c), req.Modal)
	return c.JSON(dto.SuccessResponse{OK: true, Data: snap})
}
