package storage

import (
	"context"
	"fmt"

	appexport "github.com/storefront/backend/internal/application/export"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewSnapshotSink builds the sink selected by cfg.Sink
func NewSnapshotSink(ctx context.Context, cfg *infraconfig.ExportConfig, logger *zap.Logger) (appexport.SnapshotSink, error) {
	switch cfg.Sink {
	case "", "file":
		return NewFileSnapshotSink(cfg.Directory)
	case "s3":
		sink, err := NewS3SnapshotSink(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if cfg.CreateBucket {
			if err := sink.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown export sink %q", cfg.Sink)
	}
}
