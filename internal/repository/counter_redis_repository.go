package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type redisCounterRepository struct {
	client redis.UniversalClient
	key    string
}

// NewRedisCounterRepository stores the counter as a decimal string under key.
func NewRedisCounterRepository(client redis.UniversalClient, key string) CounterRepository {
	return &redisCounterRepository{client: client, key: key}
}

func (r *redisCounterRepository) Load(ctx context.Context) (int64, error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCounterNotFound
		}
		return 0, err
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCounterCorrupt, err)
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrCounterCorrupt, count)
	}
	return count, nil
}

func (r *redisCounterRepository) Save(ctx context.Context, count int64) error {
	return r.client.Set(ctx, r.key, strconv.FormatInt(count, 10), 0).Err()
}
