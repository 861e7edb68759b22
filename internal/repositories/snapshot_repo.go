package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindness-pool/backend/internal/models"
)

// SnapshotRepo stores periodic pool readings taken by the worker.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

func (r *SnapshotRepo) Insert(ctx context.Context, stats models.PoolStats) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pool_snapshots (daily_pool_wei, receiver_count, unclaimed_wei)
		VALUES ($1, $2, $3)
	`, stats.DailyPoolWei.String(), stats.ReceiverCount, stats.UnclaimedFundsWei.String())
	return err
}
