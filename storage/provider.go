package storage

import (
	"context"
	"io"
)

// Provider is the storage abstraction behind photo and thumbnail bytes. All
// implementations must honor it.
type Provider interface {
	SaveWithContext(ctx context.Context, key string, file io.Reader) error
	GetWithContext(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteWithContext(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Health(ctx context.Context) error
	Name() string
}
