package cache

import (
	"testing"
	"time"

	"recipe-finder/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(maxSize int) (*Manager, *time.Time) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager("test", config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: time.Minute})
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestManagerGetPut(t *testing.T) {
	m, _ := newTestManager(10)
	defer m.Close()

	_, ok := m.Get("missing")
	assert.False(t, ok)

	m.Put("a", 1)
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	m.Clear()
	_, ok = m.Get("a")
	assert.False(t, ok)
}

func TestManagerExpiry(t *testing.T) {
	m, clock := newTestManager(10)
	defer m.Close()

	m.Put("a", "x")
	*clock = clock.Add(2 * time.Minute)

	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m, clock := newTestManager(2)
	defer m.Close()

	m.Put("a", 1)
	*clock = clock.Add(time.Second)
	m.Put("b", 2)
	_, _ = m.Get("a")

	m.Put("c", 3)

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get("b")
	assert.False(t, ok)
	_, ok = m.Get("a")
	assert.True(t, ok)
	_, ok = m.Get("c")
	assert.True(t, ok)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m, _ := newTestManager(2)
	defer m.Close()

	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("a", 3)

	assert.Equal(t, 2, m.Len())
	v, _ := m.Get("a")
	assert.Equal(t, 3, v)
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager("off", config.CacheConfig{Enabled: false})
	m.Put("a", 1)
	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, false, m.GetStats()["enabled"])

	var nilManager *Manager
	nilManager.Put("a", 1)
	_, ok = nilManager.Get("a")
	assert.False(t, ok)
	assert.NoError(t, nilManager.Close())
}
