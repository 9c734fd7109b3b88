package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"recipe-finder/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract 所有後端共用的行為測試
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	key := fmt.Sprintf("test_%s", t.Name())
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, key, []byte(`["a"]`)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(got))

	list, err := UpdateJSON(ctx, s, key, func(v *[]string) error {
		*v = append([]string{"b"}, *v...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, list)

	var stored []string
	found, err := GetJSON(ctx, s, key, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"b", "a"}, stored)

	require.NoError(t, s.Delete(ctx, key))
	found, err = GetJSON(ctx, s, key, &stored)
	require.NoError(t, err)
	assert.False(t, found)

	// 並行更新不可遺失
	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := UpdateJSON(ctx, s, key, func(n *int) error {
				*n++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var n int
	_, err = GetJSON(ctx, s, key, &n)
	require.NoError(t, err)
	assert.Equal(t, writers, n)
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreUpdateErrorKeepsValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, KeyPantry, []byte(`["rice"]`)))

	err := s.Update(ctx, KeyPantry, func(current []byte) ([]byte, error) {
		return nil, assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := s.Get(ctx, KeyPantry)
	require.NoError(t, err)
	assert.Equal(t, `["rice"]`, string(got))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(&config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer s.Close()

	runStoreContract(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	s, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	defer s.Close()

	runStoreContract(t, s)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{Storage: config.StorageConfig{Driver: "bolt"}})
	assert.Error(t, err)

	s, err := New(&config.Config{Storage: config.StorageConfig{Driver: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}
