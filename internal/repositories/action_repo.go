package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindness-pool/backend/internal/models"
)

// ActionRepo records terminal action outcomes. An action that resolved after
// its modal was closed still lands here, so nothing is lost.
type ActionRepo struct {
	pool *pgxpool.Pool
}

func NewActionRepo(pool *pgxpool.Pool) *ActionRepo {
	return &ActionRepo{pool: pool}
}

func (r *ActionRepo) Record(ctx context.Context, a models.PendingAction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO action_history (id, address, kind, status, tx_hash, amount_wei, failure_reason, submitted_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.Address, a.Kind, a.Status, nullable(a.TxHash), nullable(a.AmountWei), nullable(a.FailureReason), a.SubmittedAt, a.ResolvedAt)
	return err
}

func (r *ActionRepo) ListByAddress(ctx context.Context, address string, limit int) ([]models.PendingAction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, address, kind, status, COALESCE(tx_hash, ''), COALESCE(amount_wei, ''), COALESCE(failure_reason, ''), submitted_at, resolved_at
		FROM action_history
		WHERE address = $1
		ORDER BY submitted_at DESC
		LIMIT $2
	`, models.NormalizeAddress(address), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PendingAction
	for rows.Next() {
		var a models.PendingAction
		if err := rows.Scan(&a.ID, &a.Address, &a.Kind, &a.Status, &a.TxHash, &a.AmountWei, &a.FailureReason, &a.SubmittedAt, &a.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteOlderThan trims the history table. Worker housekeeping.
func (r *ActionRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM action_history WHERE submitted_at < now() - ($1 || ' days')::interval
	`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
