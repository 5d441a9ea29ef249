// Package blob is the entry point for object storage backends. Callers hold a
// Store and never import the infra implementations directly.
package blob

import (
	"context"
	"fmt"

	"medshare/internal/blob/core"
	"medshare/internal/infra/blob/fs"
	memorystore "medshare/internal/infra/blob/memory"
	infraS3 "medshare/internal/infra/blob/s3"
)

type (
	Driver     = core.Driver
	PutOptions = core.PutOptions
	Info       = core.Info
	Store      = core.Store
	// S3Config configures the S3 / MinIO backend.
	S3Config   = infraS3.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrNotFound is returned by Get for a key that holds no object.
var ErrNotFound = core.ErrNotFound

// Config selects and configures a blob backend.
type Config struct {
	Driver string // fs|s3|memory, fs when empty
	FSRoot string // root directory for fs, ./blobdata when empty
	S3     S3Config
}

// Open builds the Store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem stores objects as files below root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// NewMemory keeps objects in process memory.
func NewMemory() Store { return memorystore.New() }

// NewS3 connects to an S3 compatible bucket.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return infraS3.New(ctx, cfg) }

// NewMockS3ForTests returns the S3 backend over an in-process fake client.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
