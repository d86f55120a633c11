package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"youtube-etl/infrastructure/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := cache.NewLocalLocker()

	release, ok, err := locker.TryLock(ctx, "youtube_topic_etl", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "youtube_topic_etl", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	other, ok, err := locker.TryLock(ctx, "another_dag", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "different keys are independent")
	other()

	release()
	release()

	again, ok, err := locker.TryLock(ctx, "youtube_topic_etl", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}

// Runs against a real Redis only when REDIS_ADDR_TEST is set.
func TestRedisLocker_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR_TEST")
	if addr == "" {
		t.Skip("REDIS_ADDR_TEST not set")
	}
	ctx := context.Background()
	client, err := cache.NewCache(ctx, addr, "", "")
	require.NoError(t, err)
	defer client.Close()

	locker := cache.NewRedisLocker(client)
	key := "test-" + uuid.NewString()

	release, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	release2, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}
