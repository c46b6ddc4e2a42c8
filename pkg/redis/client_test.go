package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitInvalidURL(t *testing.T) {
	err := Init("://invalid-url", "")
	assert.Error(t, err)
}

func TestIdempotencyKeyLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	assert.NotNil(t, GetClient())

	ctx := context.Background()
	key := "idempotency:merchant-1:create-payment"

	// First creation attempt takes the processing lock
	locked, err := SetNX(ctx, key, "processing", time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)

	// A concurrent retry with the same key must not steal it
	locked, err = SetNX(ctx, key, "processing", time.Minute)
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, Set(ctx, key, `{"id":"payment-1"}`, time.Minute))
	cached, err := Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"payment-1"}`, cached)

	require.NoError(t, Del(ctx, key))
	_, err = Get(ctx, key)
	assert.Error(t, err, "deleted key reads back as a miss")
}

func TestOpsAgainstUnreachableRedis(t *testing.T) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:0", // invalid/unreachable
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	})
	SetClient(cli)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Error(t, Set(ctx, "idempotency:merchant-1:k", "v", time.Second))
	_, err := Get(ctx, "idempotency:merchant-1:k")
	assert.Error(t, err)
	assert.Error(t, Del(ctx, "idempotency:merchant-1:k"))
	_, err = SetNX(ctx, "idempotency:merchant-1:k", "v", time.Second)
	assert.Error(t, err)
}
