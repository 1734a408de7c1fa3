package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type routeEntry struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

func newTestCache(t *testing.T) *Memory {
	m, err := NewMemory(DefaultMemoryConfig())
	assert.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMemory_SetGet(t *testing.T) {
	m := newTestCache(t)
	ctx := context.Background()

	want := routeEntry{DistanceKm: 88.4, DurationMin: 75}
	assert.NoError(t, m.Set(ctx, "route:driving:a:b", want, time.Minute))

	var got routeEntry
	assert.NoError(t, m.Get(ctx, "route:driving:a:b", &got))
	assert.Equal(t, want, got)
}

func TestMemory_GetMiss(t *testing.T) {
	m := newTestCache(t)

	var got routeEntry
	err := m.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemory_Delete(t *testing.T) {
	m := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, m.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, m.Delete(ctx, "key"))

	var got string
	assert.ErrorIs(t, m.Get(ctx, "key", &got), ErrCacheMiss)
}

func TestMemory_Exists(t *testing.T) {
	m := newTestCache(t)
	ctx := context.Background()

	ok, err := m.Exists(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, m.Set(ctx, "key", 1, time.Minute))
	ok, err = m.Exists(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, m.Set(ctx, "short", "lived", 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	var got string
	assert.ErrorIs(t, m.Get(ctx, "short", &got), ErrCacheMiss)
}

func TestMemory_Name(t *testing.T) {
	m := newTestCache(t)
	assert.Equal(t, "memory", m.Name())
}
