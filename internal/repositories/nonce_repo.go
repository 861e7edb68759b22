package repositories

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindness-pool/backend/internal/models"
)

// NonceRepo issues and consumes the one-time nonces signed during wallet
// verification.
type NonceRepo struct {
	pool *pgxpool.Pool
}

func NewNonceRepo(pool *pgxpool.Pool) *NonceRepo {
	return &NonceRepo{pool: pool}
}

func (r *NonceRepo) Create(ctx context.Context, address string, ttl time.Duration) (string, error) {
	nonce := generateNonce(32)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_nonces (nonce, address, expires_at)
		VALUES ($1, $2, now() + $3::interval)
	`, nonce, models.NormalizeAddress(address), ttl.String())
	if err != nil {
		return "", err
	}
	return nonce, nil
}

// Consume marks the nonce used. It fails on unknown, already-used or expired
// nonces, which is the replay guard.
func (r *NonceRepo) Consume(ctx context.Context, address, nonce string) error {
	var id string
	return r.pool.QueryRow(ctx, `
		UPDATE auth_nonces
		SET used = true
		WHERE nonce = $1 AND address = $2 AND used = false AND expires_at > now()
		RETURNING nonce
	`, nonce, models.NormalizeAddress(address)).Scan(&id)
}

// DeleteExpired removes stale nonces. Worker housekeeping.
func (r *NonceRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auth_nonces WHERE expires_at < now() OR used = true`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func generateNonce(bytes int) string {
	b := make([]byte, bytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
