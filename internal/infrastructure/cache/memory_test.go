package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparaqp/backend/internal/domain"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

		got, err := c.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, "value", got)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := c.Get(ctx, "absent")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("expired entry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", "value", time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		_, err := c.Get(ctx, "short")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", "value", time.Minute))
		require.NoError(t, c.Delete(ctx, "gone"))

		_, err := c.Get(ctx, "gone")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("overwrite keeps the latest value", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "key", "first", time.Minute))
		require.NoError(t, c.Set(ctx, "key", "second", time.Minute))

		got, err := c.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})
}
