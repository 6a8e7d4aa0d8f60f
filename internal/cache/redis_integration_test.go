//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedis(ctx, url, nil)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Flush(ctx))

	etag := c.Set(ctx, "standings:352", []byte(`[{"team_id":5}]`), time.Minute)
	data, got, ok := c.Get(ctx, "standings:352")
	require.True(t, ok)
	assert.Equal(t, `[{"team_id":5}]`, string(data))
	assert.Equal(t, etag, got)
	assert.Equal(t, 1, c.Stats(ctx)["active_keys"])

	require.NoError(t, c.Flush(ctx))
	_, _, ok = c.Get(ctx, "standings:352")
	assert.False(t, ok)
}
