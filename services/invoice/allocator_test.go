package invoice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type counterRedis struct {
	redis.Cmdable
	mu  sync.Mutex
	n   map[string]int64
	err error
}

func (r *counterRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	if r.err != nil {
		cmd.SetErr(r.err)
		return cmd
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n[key]++
	cmd.SetVal(r.n[key])
	return cmd
}

func TestRedisAllocator(t *testing.T) {
	a := NewRedisAllocator(&counterRedis{n: map[string]int64{}}, "")

	first, err := a.NextInvoiceID(context.Background())
	require.NoError(t, err)
	require.Equal(t, "INV-00000001", first)

	second, err := a.NextInvoiceID(context.Background())
	require.NoError(t, err)
	require.Equal(t, "INV-00000002", second)
	require.Less(t, first, second)
}

func TestRedisAllocatorError(t *testing.T) {
	a := NewRedisAllocator(&counterRedis{err: errors.New("connection refused")}, "BILL")

	_, err := a.NextInvoiceID(context.Background())
	require.ErrorContains(t, err, "connection refused")
}

func TestSnowflakeAllocatorIsUniqueAndOrdered(t *testing.T) {
	a, err := NewSnowflakeAllocator(1, "")
	require.NoError(t, err)

	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		id, err := a.NextInvoiceID(context.Background())
		require.NoError(t, err)
		require.False(t, seen[id], id)
		seen[id] = true
		if prev != "" {
			require.Greater(t, id, prev)
		}
		prev = id
	}

	_, err = NewSnowflakeAllocator(5000, "")
	require.Error(t, err)
}
