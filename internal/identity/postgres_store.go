package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindness-pool/backend/internal/models"
	"go.uber.org/zap"
)

// PostgresStore is the durable identity store. In production it mirrors the
// on-chain name so session derivation does not need an RPC round-trip.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, log *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, log: log}
}

func (s *PostgresStore) Get(ctx context.Context, address string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, `
		SELECT display_name FROM identities WHERE address = $1
	`, models.NormalizeAddress(address)).Scan(&name)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn("identity read failed, treating as unset",
				zap.String("address", address), zap.Error(err))
		}
		return "", nil
	}
	return name, nil
}

func (s *PostgresStore) Set(ctx context.Context, address, name string) error {
	trimmed, err := models.NormalizeName(name)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO identities (address, display_name)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			updated_at = now()
	`, models.NormalizeAddress(address), trimmed)
	if err != nil {
		return fmt.Errorf("failed to persist name: %w", err)
	}
	return nil
}
