package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kindness-pool/backend/internal/chain"
	"github.com/kindness-pool/backend/internal/config"
	"github.com/kindness-pool/backend/internal/db"
	"github.com/kindness-pool/backend/internal/events"
	"github.com/kindness-pool/backend/internal/gateway"
	apphttp "github.com/kindness-pool/backend/internal/http"
	"github.com/kindness-pool/backend/internal/http/handlers"
	"github.com/kindness-pool/backend/internal/identity"
	"github.com/kindness-pool/backend/internal/repositories"
	"github.com/kindness-pool/backend/internal/session"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	nonceRepo := repositories.NewNonceRepo(pool)
	actionRepo := repositories.NewActionRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Identity store and chain backend are the two seams between the
	// development and production stacks. The choice happens here and only
	// here.
	var store identity.Store
	var backend chain.Backend
	if cfg.IsProduction() {
		store = identity.NewPostgresStore(pool, log)
		eth, err := chain.NewEthBackend(cfg.EthRPCURL, cfg.ChainID, cfg.PoolContractAddr, cfg.RegistryContractAddr, cfg.OperatorPrivateKey, cfg.ConfirmTimeout, log)
		if err != nil {
			log.Fatal("failed to connect to ethereum rpc", zap.Error(err))
		}
		backend = eth
	} else {
		store = identity.NewRedisStore(rdb, log)
		backend = chain.NewSimulated(cfg.SimulatedLatency, log)
	}

	// Core
	sessions := session.NewManager(store, publisher, log)
	gw := gateway.NewGateway(backend, backend, store, sessions, actionRepo, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(nonceRepo, sessions, cfg, log)
	sessionHandler := handlers.NewSessionHandler(sessions, gw, log)
	userHandler := handlers.NewUserHandler(gw, backend, actionRepo, log)
	poolHandler := handlers.NewPoolHandler(gw, backend, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Resolved actions live in process memory, so their retention sweep runs
	// here rather than in the worker.
	go func() {
		ticker := time.NewTicker(cfg.ActionRetention)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := gw.SweepResolved(cfg.ActionRetention); n > 0 {
					log.Debug("swept resolved actions", zap.Int("count", n))
				}
			}
		}
	}()

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, sessionHandler, userHandler, poolHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server",
		zap.String("addr", addr),
		zap.String("mode", cfg.Mode),
	)
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
