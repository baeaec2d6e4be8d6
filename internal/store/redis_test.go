package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis connects to TEST_REDIS_ADDR and skips when it is unset or unreachable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis store tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_GetSetDelete(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	s := NewRedis(client, "test-"+uuid.NewString())

	_, err := s.Get(ctx, "language")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "language", "fr"))
	require.NoError(t, s.Set(ctx, "account_id", "acct-9"))

	v, err := s.Get(ctx, "language")
	require.NoError(t, err)
	assert.Equal(t, "fr", v)

	require.NoError(t, s.Delete(ctx, "language", "account_id"))
	_, err = s.Get(ctx, "account_id")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Ping(ctx))
}

func TestRedis_NamespacesAreIsolated(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	a := NewRedis(client, "a-"+uuid.NewString())
	b := NewRedis(client, "b-"+uuid.NewString())

	require.NoError(t, a.Set(ctx, "account_id", "from-a"))
	_, err := b.Get(ctx, "account_id")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, a.Delete(ctx, "account_id"))
}
