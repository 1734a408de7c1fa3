package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Memory is a ristretto-backed in-process cache.
type Memory struct {
	client *ristretto.Cache
}

// MemoryConfig tunes the ristretto cache.
type MemoryConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultMemoryConfig is sized for a few thousand small route/asset entries.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		NumCounters: 100_000,
		MaxCost:     64 << 20,
		BufferItems: 64,
	}
}

func NewMemory(cfg MemoryConfig) (*Memory, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{client: client}, nil
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.client.SetWithTTL(key, data, int64(len(data)), expiration) {
		m.client.Wait()
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := m.client.Get(key)
	if !found {
		return ErrCacheMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.client.Del(key)
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, found := m.client.Get(key)
	return found, nil
}

func (m *Memory) Close() error {
	m.client.Close()
	return nil
}

func (m *Memory) Name() string { return "memory" }
