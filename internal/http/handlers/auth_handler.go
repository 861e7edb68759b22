package handlers

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/kindness-pool/backend/internal/auth"
	"github.com/kindness-pool/backend/internal/config"
	"github.com/kindness-pool/backend/internal/http/dto"
	"github.com/kindness-pool/backend/internal/models"
	"github.com/kindness-pool/backend/internal/repositories"
	"github.com/kindness-pool/backend/internal/session"
	"go.uber.org/zap"
)

type AuthHandler struct {
	nonceRepo *repositories.NonceRepo
	sessions  *session.Manager
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthHandler(nonceRepo *repositories.NonceRepo, sessions *session.Manager, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{nonceRepo: nonceRepo, sessions: sessions, cfg: cfg, log: log}
}

// Nonce issues a one-time value the wallet signs during connect.
// POST /auth/nonce
func (h *AuthHandler) Nonce(c *fiber.Ctx) error {
	var req dto.NonceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if !common.IsHexAddress(req.Address) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid wallet address"})
	}

	nonce, err := h.nonceRepo.Create(c.Context(), req.Address, h.cfg.NonceTTL)
	if err != nil {
		h.log.Error("failed to create nonce", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.NonceResponse{Nonce: nonce})
}

// Connect verifies the signed proof and opens the session. The returned
// session snapshot already carries the derived classification, so a wallet
// with a stored name lands directly in the active state.
// POST /auth/wallet
func (h *AuthHandler) Connect(c *fiber.Ctx) error {
	var req dto.ConnectWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if !common.IsHexAddress(req.Address) || req.Signature == "" || req.Nonce == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "address, nonce, and signature are required"})
	}

	// Consume first: the nonce is single-use even when verification fails.
	if err := h.nonceRepo.Consume(c.Context(), req.Address, req.Nonce); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid or expired nonce"})
	}

	proof := auth.Proof{
		Address:   req.Address,
		Nonce:     req.Nonce,
		Timestamp: req.Timestamp,
		Signature: req.Signature,
	}
	if err := auth.VerifyProof(proof); err != nil {
		h.log.Debug("wallet proof rejected", zap.String("address", req.Address), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	address := models.NormalizeAddress(req.Address)
	snap := h.sessions.Connect(c.Context(), address)

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, address, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to sign token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	h.log.Info("wallet connected",
		zap.String("address", address),
		zap.String("state", snap.State),
	)
	return c.JSON(dto.AuthResponse{Token: token, Session: snap})
}
