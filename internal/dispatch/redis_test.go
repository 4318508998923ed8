package dispatch

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisDispatcher_EnqueueDequeue(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	d := NewRedisDispatcher(client, "test:jobs:")

	ctx := context.Background()
	require.NoError(t, d.EnqueueImageCapture(ctx, "user-1", "https://example.com/a.png"))
	require.NoError(t, d.EnqueueProfileRefresh(ctx, "user-2"))

	got, err := d.Dequeue(ctx, 1*time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, JobImageCapture, got.Type)
	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, "https://example.com/a.png", got.ImageURL)
	require.False(t, got.EnqueuedAt.IsZero())

	got2, err := d.Dequeue(ctx, 1*time.Second)
	require.NoError(t, err)
	require.NotNil(t, got2)
	require.Equal(t, JobProfileRefresh, got2.Type)
	require.Equal(t, "user-2", got2.UserID)
	require.Empty(t, got2.ImageURL)
}

func TestRedisDispatcher_FIFOPerQueue(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	d := NewRedisDispatcher(client, "")

	ctx := context.Background()
	require.NoError(t, d.EnqueueProfileRefresh(ctx, "first"))
	require.NoError(t, d.EnqueueProfileRefresh(ctx, "second"))

	got, err := d.Dequeue(ctx, 1*time.Second)
	require.NoError(t, err)
	require.Equal(t, "first", got.UserID)

	got2, err := d.Dequeue(ctx, 1*time.Second)
	require.NoError(t, err)
	require.Equal(t, "second", got2.UserID)
}
