package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCounterRepository_RoundTrip(t *testing.T) {
	mr, client := newMiniredisClient(t)
	ctx := context.Background()
	repo := NewRedisCounterRepository(client, "ticketbot:ticket_count")

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, ErrCounterNotFound)

	require.NoError(t, repo.Save(ctx, 7))
	got, err := mr.Get("ticketbot:ticket_count")
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	count, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestRedisCounterRepository_Corrupt(t *testing.T) {
	mr, client := newMiniredisClient(t)
	repo := NewRedisCounterRepository(client, "k")

	require.NoError(t, mr.Set("k", "not-a-number"))
	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrCounterCorrupt)

	require.NoError(t, mr.Set("k", "-1"))
	_, err = repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrCounterCorrupt)
}

func TestRedisCounterRepository_Unreachable(t *testing.T) {
	mr, client := newMiniredisClient(t)
	mr.Close()

	_, err := NewRedisCounterRepository(client, "k").Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCounterNotFound)
	assert.NotErrorIs(t, err, ErrCounterCorrupt)
}
