package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryBlocklist_RevokeAndCheck(t *testing.T) {
	t.Parallel()

	b := NewMemoryBlocklist()
	ctx := context.Background()

	ok, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Minute))

	ok, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryBlocklist_NonPositiveTTL_NoOp(t *testing.T) {
	t.Parallel()

	b := NewMemoryBlocklist()
	require.NoError(t, b.Revoke(context.Background(), "jti", 0))
	require.NoError(t, b.Revoke(context.Background(), "jti", -time.Second))
	require.Equal(t, 0, b.Len())
}

func TestMemoryBlocklist_ExpiryAndSweep(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewMemoryBlocklist()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "short", time.Minute))
	require.NoError(t, b.Revoke(ctx, "long", time.Hour))

	now = now.Add(2 * time.Minute)

	ok, err := b.IsRevoked(ctx, "short")
	require.NoError(t, err)
	require.False(t, ok, "expired entries are not reported")

	require.Equal(t, 1, b.Sweep(now))
	require.Equal(t, 1, b.Len())

	ok, err = b.IsRevoked(ctx, "long")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryBlocklist_RevokeKeepsLongestTTL(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewMemoryBlocklist()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "jti", time.Hour))
	require.NoError(t, b.Revoke(ctx, "jti", time.Minute))

	require.Equal(t, 0, b.Sweep(now.Add(30*time.Minute)))
}

func TestMemoryBlocklist_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	b := NewMemoryBlocklist()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = b.Revoke(ctx, fmt.Sprintf("jti-%d", i), time.Minute)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = b.IsRevoked(ctx, fmt.Sprintf("jti-%d", i))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 50, b.Len())
	for i := 0; i < 50; i++ {
		ok, err := b.IsRevoked(ctx, fmt.Sprintf("jti-%d", i))
		require.NoError(t, err)
		require.True(t, ok)
	}
}
