package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kindness-pool/backend/internal/config"
	"github.com/kindness-pool/backend/internal/http/handlers"
	"github.com/kindness-pool/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	userHandler *handlers.UserHandler,
	poolHandler *handlers.PoolHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/nonce", authHandler.Nonce)
	api.Post("/auth/wallet", authHandler.Connect)

	// Rate-limited endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Pool reads (public)
	api.Get("/pool", poolHandler.Stats)
	api.Get("/pool/constants", poolHandler.Constants)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Session
	protected.Get("/me/session", sessionHandler.Get)
	protected.Delete("/me/session", sessionHandler.Disconnect)
	protected.Post("/me/modals/open", sessionHandler.OpenModal)
	protected.Post("/me/modals/close", sessionHandler.CloseModal)

	// User
	protected.Post("/me/name", userHandler.SetName)
	protected.Get("/me/actions", userHandler.PendingActions)
	protected.Get("/me/actions/history", userHandler.ActionHistory)
	protected.Get("/me/daily-stats", userHandler.DailyStats)
	protected.Get("/me/stats", userHandler.Stats)

	// Pool writes
	protected.Post("/pool/give", poolHandler.Give)
	protected.Post("/pool/receiver/enter", poolHandler.EnterReceiverPool)
	protected.Post("/pool/receiver/leave", poolHandler.LeaveReceiverPool)
	protected.Post("/pool/withdraw", poolHandler.Withdraw)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
