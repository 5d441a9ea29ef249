package core

import (
	"context"
	"fmt"

	"medshare/internal/blob"
	"medshare/internal/config"
	"medshare/internal/infra/persistence/file"
	"medshare/internal/infra/persistence/memory"
	"medshare/internal/infra/persistence/objectstore"
	"medshare/internal/infra/persistence/postgres"
	"medshare/internal/infra/persistence/redis"
	"medshare/internal/infra/persistence/sqlite"
	"medshare/pkg/domain"
)

// StorageDriver identifies a concrete persistence backend.
type StorageDriver string

const (
	StorageFile     StorageDriver = "file"     // single JSON file, atomic rename
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageRedis    StorageDriver = "redis"    // one redis key
	StorageBlob     StorageDriver = "blob"     // one object in a blob store (fs, s3, memory)
)

// OpenAdapter selects a persistence backend from cfg. An empty driver
// defaults to the JSON file.
func OpenAdapter(ctx context.Context, cfg config.Storage) (domain.Adapter, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageFile
	}
	switch driver {
	case StorageFile:
		return adapterOrErr(file.NewStore(cfg.DataFile))
	case StorageMemory:
		return memory.NewStore(nil), nil
	case StorageSQLite:
		return adapterOrErr(sqlite.NewStore(cfg.SQLitePath))
	case StoragePostgres:
		return adapterOrErr(postgres.NewStore(ctx, cfg.PostgresDSN))
	case StorageRedis:
		return adapterOrErr(redis.NewStore(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		}))
	case StorageBlob:
		blobs, err := blob.Open(ctx, blob.Config{
			Driver: cfg.Blob.Driver,
			FSRoot: cfg.Blob.FSRoot,
			S3: blob.S3Config{
				Bucket:    cfg.Blob.S3.Bucket,
				Region:    cfg.Blob.S3.Region,
				Endpoint:  cfg.Blob.S3.Endpoint,
				PathStyle: cfg.Blob.S3.PathStyle,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return objectstore.NewStore(blobs, cfg.Blob.Key), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// adapterOrErr keeps a failed constructor from yielding a typed nil adapter.
func adapterOrErr[T domain.Adapter](a T, err error) (domain.Adapter, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}
