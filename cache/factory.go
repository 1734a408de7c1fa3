package cache

import (
	"fmt"
	"log"

	"github.com/treklog/treklog/config"
)

// New builds the configured cache provider, falling back to the in-memory
// backend when redis is unavailable.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		provider, err := NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			log.Printf("Failed to connect to redis at %s, falling back to memory cache: %v",
				cfg.CacheRedisAddr, err)
			return NewMemory(DefaultMemoryConfig())
		}
		log.Printf("Using redis cache at %s", cfg.CacheRedisAddr)
		return provider, nil
	case "memory", "":
		return NewMemory(DefaultMemoryConfig())
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
