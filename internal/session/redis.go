package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/tamilprep-backend/internal/config"
	"github.com/stemsi/tamilprep-backend/internal/model"
)

// RedisStore keeps each session as a JSON blob with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*model.SessionState, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.PracticeSessionKey(id.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, state *model.SessionState) error {
	blob, err := encode(state)
	if err != nil {
		return err
	}
	key := config.CacheKey.PracticeSessionKey(state.ID.String())
	if err := s.rdb.Set(ctx, key, blob, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.PracticeSessionKey(id.String())).Err()
}
