package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runStateSuite(t *testing.T, s repository.StateRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "c1", "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("put bumps version", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "c1", "a", []byte("one")))
		rec, err := s.Get(ctx, "c1", "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), rec.Value)
		assert.Equal(t, int64(1), rec.Version)

		require.NoError(t, s.Put(ctx, "c1", "a", []byte("two")))
		rec, err = s.Get(ctx, "c1", "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), rec.Value)
		assert.Equal(t, int64(2), rec.Version)
	})

	t.Run("list is ordered and scoped", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "c2", "z", []byte("z")))
		require.NoError(t, s.Put(ctx, "c2", "m", []byte("m")))
		require.NoError(t, s.Put(ctx, "c3", "x", []byte("x")))
		recs, err := s.List(ctx, "c2")
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "m", recs[0].Key)
		assert.Equal(t, "z", recs[1].Key)
	})

	t.Run("delete collection is idempotent", func(t *testing.T) {
		require.NoError(t, s.DeleteCollection(ctx, "c2"))
		require.NoError(t, s.DeleteCollection(ctx, "c2"))
		recs, err := s.List(ctx, "c2")
		require.NoError(t, err)
		assert.Empty(t, recs)
		_, err = s.Get(ctx, "c3", "x")
		assert.NoError(t, err, "other collections survive")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "c3", "x"))
		require.NoError(t, s.Delete(ctx, "c3", "x"))
		_, err := s.Get(ctx, "c3", "x")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("compare and swap", func(t *testing.T) {
		ok, err := s.CompareAndSwap(ctx, "c4", "k", 0, []byte("v1"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.CompareAndSwap(ctx, "c4", "k", 0, []byte("again"))
		require.NoError(t, err)
		assert.False(t, ok, "key already exists")

		ok, err = s.CompareAndSwap(ctx, "c4", "k", 7, []byte("stale"))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.CompareAndSwap(ctx, "c4", "k", 1, []byte("v2"))
		require.NoError(t, err)
		assert.True(t, ok)

		rec, err := s.Get(ctx, "c4", "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), rec.Value)
		assert.Equal(t, int64(2), rec.Version)
	})

	t.Run("concurrent compare and swap has one winner per version", func(t *testing.T) {
		const n = 16
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.CompareAndSwap(ctx, "c5", "k", 0, []byte("x"))
				assert.NoError(t, err)
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestMemoryRepository(t *testing.T) {
	runStateSuite(t, NewMemoryRepository())
}

func TestSQLiteRepository(t *testing.T) {
	s, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer s.Close()
	runStateSuite(t, s)
}

func TestSQLiteRepositoryRequiresPath(t *testing.T) {
	_, err := NewSQLiteRepository("  ")
	assert.Error(t, err)
}

func TestRedisRepository(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisRepository(ctx, types.StateConfig{RedisAddr: addr, KeyPrefix: "billing-test-" + t.Name()}, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	for _, c := range []string{"c1", "c2", "c3", "c4", "c5"} {
		require.NoError(t, s.DeleteCollection(ctx, c))
	}
	runStateSuite(t, s)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), types.StateConfig{Backend: "etcd"}, zap.NewNop())
	assert.ErrorIs(t, err, types.ErrUnsupportedBackend)

	s, err := New(context.Background(), types.StateConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepositoryImpl{}, s)
}
