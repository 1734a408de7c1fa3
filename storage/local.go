package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var validKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)

// IsValidKey rejects keys that could escape the storage root.
func IsValidKey(key string) bool {
	if key == "" || strings.Contains(key, "..") {
		return false
	}
	return validKeyPattern.MatchString(key)
}

// LocalStorage stores files under a configured directory tree.
type LocalStorage struct {
	absBasePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}
	return &LocalStorage{absBasePath: absPath + string(os.PathSeparator)}, nil
}

func (s *LocalStorage) resolve(key string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	full := filepath.Join(s.absBasePath, key)
	if !strings.HasPrefix(full, s.absBasePath) {
		return "", fmt.Errorf("invalid storage path, potential directory traversal: %s", key)
	}
	return full, nil
}

func (s *LocalStorage) SaveWithContext(ctx context.Context, key string, file io.Reader) error {
	dstPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for '%s': %w", key, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to write file content to '%s': %w", dstPath, err)
	}
	return nil
}

func (s *LocalStorage) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open file '%s': %w", key, err)
	}
	return file, nil
}

func (s *LocalStorage) DeleteWithContext(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file '%s': %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStorage) Health(ctx context.Context) error {
	_, err := os.Stat(s.absBasePath)
	return err
}

func (s *LocalStorage) Name() string { return "local" }
