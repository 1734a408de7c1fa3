package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig configures the WebDAV backend.
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
}

// WebDAVStorage stores files on a WebDAV share.
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to webdav server: %w", err)
	}
	if rootPath != "" {
		if err := client.MkdirAll(rootPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create webdav root '%s': %w", rootPath, err)
		}
	}

	return &WebDAVStorage{client: client, rootPath: rootPath}, nil
}

func (s *WebDAVStorage) remotePath(key string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return path.Join(s.rootPath, key), nil
}

func (s *WebDAVStorage) SaveWithContext(ctx context.Context, key string, file io.Reader) error {
	remote, err := s.remotePath(key)
	if err != nil {
		return err
	}
	if dir := path.Dir(remote); dir != "/" && dir != "." {
		if err := s.client.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create webdav directory '%s': %w", dir, err)
		}
	}
	if err := s.client.WriteStream(remote, file, 0o644); err != nil {
		return fmt.Errorf("failed to write webdav file '%s': %w", key, err)
	}
	return nil
}

func (s *WebDAVStorage) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	remote, err := s.remotePath(key)
	if err != nil {
		return nil, err
	}
	reader, err := s.client.ReadStream(remote)
	if err != nil {
		return nil, fmt.Errorf("failed to read webdav file '%s': %w", key, err)
	}
	return reader, nil
}

func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, key string) error {
	remote, err := s.remotePath(key)
	if err != nil {
		return err
	}
	if err := s.client.Remove(remote); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete webdav file '%s': %w", key, err)
	}
	return nil
}

func (s *WebDAVStorage) Exists(ctx context.Context, key string) (bool, error) {
	remote, err := s.remotePath(key)
	if err != nil {
		return false, err
	}
	if _, err := s.client.Stat(remote); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *WebDAVStorage) Health(ctx context.Context) error {
	root := s.rootPath
	if root == "" {
		root = "/"
	}
	_, err := s.client.Stat(root)
	return err
}

func (s *WebDAVStorage) Name() string { return "webdav" }
