package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Storage backend types
const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// SnapshotKey builds the object key for a snapshot archived at t:
// <prefix>/YYYY/MM/DD/<id>.json
func SnapshotKey(prefix string, t time.Time, id uuid.UUID) string {
	return path.Join(prefix, t.Format("2006"), t.Format("01"), t.Format("02"), id.String()+".json")
}

// NewArchive creates the snapshot archive selected by cfg.Type
func NewArchive(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (dashboard.SnapshotArchive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Type {
	case "", TypeLocal:
		archive, err := NewLocalArchive(cfg.LocalPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using local snapshot archive", zap.String("path", archive.Root()))
		return archive, nil
	case TypeS3:
		archive, err := NewS3Archive(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 snapshot archive", zap.String("bucket", archive.Bucket()))
		return archive, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
