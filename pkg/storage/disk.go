// Package storage writes files to the configured disk: the local
// filesystem (default) or any S3-compatible bucket (AWS S3, MinIO, R2).
//
//	if err := storage.Connect(ctx); err != nil { ... }
//	err := storage.Default().Put(ctx, "receipts/2026/05/12-ab.json", data, "application/json")
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/marketplace/config"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is a flat object store addressed by slash-separated paths.
type Disk interface {
	Put(ctx context.Context, path string, content []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// List returns every path under prefix, recursively, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	URL(path string) string
}

var (
	mu      sync.RWMutex
	current Disk
)

// Connect builds the disk named by STORAGE_DISK ("local" or "s3").
func Connect(ctx context.Context) error {
	var (
		d   Disk
		err error
	)
	switch config.StorageDefault() {
	case "s3":
		d, err = NewS3(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	case "local":
		d, err = NewLocal(config.StorageLocalRoot(), config.StorageURL())
	default:
		err = fmt.Errorf("storage: unknown STORAGE_DISK %q", config.StorageDefault())
	}
	if err != nil {
		return err
	}
	Use(d)
	return nil
}

// Use installs d as the default disk.
func Use(d Disk) {
	mu.Lock()
	current = d
	mu.Unlock()
}

// Default returns the disk installed by Connect or Use. It falls back to a
// local disk under STORAGE_LOCAL_ROOT so workers started without Connect
// still have somewhere to write.
func Default() Disk {
	mu.RLock()
	d := current
	mu.RUnlock()
	if d != nil {
		return d
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		local, err := NewLocal(config.StorageLocalRoot(), config.StorageURL())
		if err != nil {
			panic(fmt.Sprintf("storage: default local disk: %v", err))
		}
		current = local
	}
	return current
}
