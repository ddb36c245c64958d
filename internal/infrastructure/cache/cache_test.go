package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRedis_BypassesWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	r := NewRedisWithClient(nil, time.Minute, nil)

	require.False(t, r.Available())
	require.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	var out map[string]any
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, r.SetJSON(ctx, "k", map[string]any{"a": 1}, 0))
	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.DeleteByPattern(ctx, "developers:*"))
	require.ErrorIs(t, r.Publish(ctx, "ch", []byte("x")), ErrUnavailable)
	require.NoError(t, r.Close())
}

func TestRedis_NilReceiverIsSafe(t *testing.T) {
	var r *Redis
	hit, err := r.GetJSON(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	require.False(t, hit)
}
