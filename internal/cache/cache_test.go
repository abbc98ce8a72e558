package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("CachesUntilInvalidated", func(t *testing.T) {
		c := cache.New(time.Minute)
		calls := 0
		load := func() ([]string, error) {
			calls++
			return []string{"a"}, nil
		}

		for i := 0; i < 3; i++ {
			got, err := cache.Load(c, "skills", load)
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, got)
		}
		assert.Equal(t, 1, calls)

		c.Invalidate("skills")
		_, err := cache.Load(c, "skills", load)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("InvalidatedDuringLoad_NotStored", func(t *testing.T) {
		c := cache.New(time.Minute)
		calls := 0
		stale := func() ([]string, error) {
			calls++
			// a write lands after the read but before the result is stored
			c.Invalidate("skills")
			return []string{"old"}, nil
		}

		got, err := cache.Load(c, "skills", stale)
		require.NoError(t, err)
		assert.Equal(t, []string{"old"}, got)

		got, err = cache.Load(c, "skills", func() ([]string, error) {
			calls++
			return []string{"new"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("ErrorsAreNotCached", func(t *testing.T) {
		c := cache.New(time.Minute)
		boom := errors.New("boom")
		calls := 0
		load := func() (int, error) {
			calls++
			return 0, boom
		}

		_, err := cache.Load(c, "k", load)
		assert.ErrorIs(t, err, boom)
		_, err = cache.Load(c, "k", load)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, calls)
	})

	t.Run("Disabled", func(t *testing.T) {
		c := cache.New(0)
		calls := 0
		load := func() (int, error) {
			calls++
			return calls, nil
		}

		first, _ := cache.Load(c, "k", load)
		second, _ := cache.Load(c, "k", load)
		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
		c.Invalidate("k")
	})
}
