package storage

import (
	"fmt"
	"log"

	"github.com/treklog/treklog/config"
)

// New builds the configured storage provider for photo and thumbnail bytes.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.StorageType {
	case "local", "":
		provider, err := NewLocalStorage(cfg.StorageLocalPath)
		if err != nil {
			return nil, err
		}
		log.Printf("Using local storage at %s", cfg.StorageLocalPath)
		return provider, nil
	case "minio":
		provider, err := NewMinioStorage(MinioConfig{
			Endpoint:  cfg.StorageMinioEndpoint,
			AccessKey: cfg.StorageMinioAccessKey,
			SecretKey: cfg.StorageMinioSecretKey,
			Bucket:    cfg.StorageMinioBucket,
			UseSSL:    cfg.StorageMinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Using minio storage at %s", cfg.StorageMinioEndpoint)
		return provider, nil
	case "webdav":
		provider, err := NewWebDAVStorage(WebDAVConfig{
			URL:      cfg.StorageWebDAVURL,
			Username: cfg.StorageWebDAVUser,
			Password: cfg.StorageWebDAVPassword,
			RootPath: cfg.StorageWebDAVRoot,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Using webdav storage at %s", cfg.StorageWebDAVURL)
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
