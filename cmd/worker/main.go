package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kindness-pool/backend/internal/chain"
	"github.com/kindness-pool/backend/internal/config"
	"github.com/kindness-pool/backend/internal/db"
	"github.com/kindness-pool/backend/internal/http/dto"
	"github.com/kindness-pool/backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// poolStatsCacheKey holds the latest snapshot for cheap public reads.
const poolStatsCacheKey = "pool:stats"

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	nonceRepo := repositories.NewNonceRepo(pool)
	actionRepo := repositories.NewActionRepo(pool)
	snapshotRepo := repositories.NewSnapshotRepo(pool)

	// The worker only reads pool state. In development there is no shared
	// chain to sample, so snapshots run against an empty simulated pool.
	var reader chain.Reader
	if cfg.IsProduction() {
		eth, err := chain.NewEthBackend(cfg.EthRPCURL, cfg.ChainID, cfg.PoolContractAddr, cfg.RegistryContractAddr, cfg.OperatorPrivateKey, cfg.ConfirmTimeout, log)
		if err != nil {
			log.Fatal("failed to connect to ethereum rpc", zap.Error(err))
		}
		reader = eth
	} else {
		reader = chain.NewSimulated(cfg.SimulatedLatency, log)
	}

	log.Info("worker started", zap.String("mode", cfg.Mode))

	// Run jobs on tickers
	nonceTicker := time.NewTicker(5 * time.Minute)
	historyTicker := time.NewTicker(1 * time.Hour)
	snapshotTicker := time.NewTicker(cfg.SnapshotInterval)
	defer nonceTicker.Stop()
	defer historyTicker.Stop()
	defer snapshotTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-nonceTicker.C:
			runNonceCleanup(ctx, nonceRepo, log)
		case <-historyTicker.C:
			runHistoryTrim(ctx, actionRepo, cfg, log)
		case <-snapshotTicker.C:
			runPoolSnapshot(ctx, reader, snapshotRepo, rdb, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runNonceCleanup(ctx context.Context, nonceRepo *repositories.NonceRepo, log *zap.Logger) {
	n, err := nonceRepo.DeleteExpired(ctx)
	if err != nil {
		log.Error("failed to delete expired nonces", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("expired nonces deleted", zap.Int64("count", n))
	}
}

func runHistoryTrim(ctx context.Context, actionRepo *repositories.ActionRepo, cfg *config.Config, log *zap.Logger) {
	n, err := actionRepo.DeleteOlderThan(ctx, cfg.HistoryRetentionDays)
	if err != nil {
		log.Error("failed to trim action history", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("action history trimmed",
			zap.Int64("count", n),
			zap.Int("retention_days", cfg.HistoryRetentionDays),
		)
	}
}

func runPoolSnapshot(ctx context.Context, reader chain.Reader, snapshotRepo *repositories.SnapshotRepo, rdb *redis.Client, log *zap.Logger) {
	stats, err := reader.PoolStats(ctx)
	if err != nil {
		log.Warn("pool stats read failed, skipping snapshot", zap.Error(err))
		return
	}

	if err := snapshotRepo.Insert(ctx, stats); err != nil {
		log.Error("failed to store pool snapshot", zap.Error(err))
	}

	payload, err := json.Marshal(dto.NewPoolStatsResponse(stats))
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, poolStatsCacheKey, payload, 0).Err(); err != nil {
		log.Warn("failed to cache pool stats", zap.Error(err))
	}
}
