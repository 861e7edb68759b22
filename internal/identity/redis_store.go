package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/kindness-pool/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// nameKeyPrefix matches the layout the web client used for its local dev
// store, so a value written here is readable by anything keyed the same way.
const nameKeyPrefix = "userName_"

// RedisStore keeps one string value per wallet address. Used as the
// development-mode identity store.
type RedisStore struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, log *zap.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func NameKey(address string) string {
	return nameKeyPrefix + models.NormalizeAddress(address)
}

func (s *RedisStore) Get(ctx context.Context, address string) (string, error) {
	name, err := s.client.Get(ctx, NameKey(address)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("identity read failed, treating as unset",
				zap.String("address", address), zap.Error(err))
		}
		return "", nil
	}
	return name, nil
}

func (s *RedisStore) Set(ctx context.Context, address, name string) error {
	trimmed, err := models.NormalizeName(name)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, NameKey(address), trimmed, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist name: %w", err)
	}
	return nil
}
