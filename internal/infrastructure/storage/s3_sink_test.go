package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testExportConfig() *config.ExportConfig {
	return &config.ExportConfig{
		Sink:            "s3",
		Bucket:          "snapshots",
		Prefix:          "/catalog-snapshots/",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
}

func TestNewS3SnapshotSink_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3SnapshotSink(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testExportConfig()
		cfg.Bucket = ""
		_, err := NewS3SnapshotSink(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half of a key pair returns error", func(t *testing.T) {
		cfg := testExportConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3SnapshotSink(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config creates sink", func(t *testing.T) {
		sink, err := NewS3SnapshotSink(ctx, testExportConfig(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "snapshots", sink.Bucket())
		assert.Equal(t, 15*time.Minute, sink.presignExpiration)
	})

	t.Run("endpoint without scheme", func(t *testing.T) {
		cfg := testExportConfig()
		cfg.Endpoint = "minio.internal:9000"
		_, err := NewS3SnapshotSink(ctx, cfg)
		require.NoError(t, err)
	})
}

func TestS3SnapshotSink_Key(t *testing.T) {
	sink, err := NewS3SnapshotSink(context.Background(), testExportConfig())
	require.NoError(t, err)
	assert.Equal(t, "catalog-snapshots/catalog-20261017T093000Z.jsonl", sink.Key("catalog-20261017T093000Z.jsonl"))

	cfg := testExportConfig()
	cfg.Prefix = ""
	bare, err := NewS3SnapshotSink(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "catalog.jsonl", bare.Key("catalog.jsonl"))
}

func TestS3SnapshotSink_DownloadURL(t *testing.T) {
	sink, err := NewS3SnapshotSink(context.Background(), testExportConfig(), WithPresignExpiration(time.Hour))
	require.NoError(t, err)

	t.Run("empty name returns error", func(t *testing.T) {
		_, _, err := sink.DownloadURL(context.Background(), "", 0)
		require.Error(t, err)
	})

	t.Run("presigned link", func(t *testing.T) {
		link, expiresAt, err := sink.DownloadURL(context.Background(), "catalog.jsonl", 0)
		require.NoError(t, err)
		assert.True(t, strings.Contains(link, "localhost:9000"))
		assert.True(t, strings.Contains(link, "snapshots"))
		assert.True(t, expiresAt.After(time.Now().Add(59*time.Minute)))
	})
}

func TestS3SnapshotSink_PutRequiresName(t *testing.T) {
	sink, err := NewS3SnapshotSink(context.Background(), testExportConfig())
	require.NoError(t, err)

	_, err = sink.Put(context.Background(), "", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	_, err = sink.Exists(context.Background(), "")
	require.Error(t, err)
}
