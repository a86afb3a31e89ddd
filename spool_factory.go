package xray

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"

	"github.com/mhetreayush/xray-sdk/internal/spool"
	"github.com/mhetreayush/xray-sdk/log"
	"github.com/mhetreayush/xray-sdk/metrics"
)

// newSpool builds the configured spool backend. The default ("disk")
// backend falls back to an in-memory spool if disk initialization fails;
// this fallback is logged as a warning regardless of debug level, since a
// host that silently loses durability should know.
func newSpool(cfg Config, logger *log.Logger, collector *metrics.Collector) spool.StorageAdapter {
	switch cfg.SpoolBackend {
	case "lode-s3":
		store, err := newLodeS3Store(cfg.LodeS3)
		if err != nil {
			logger.Warn("lode-s3 spool backend init failed, falling back to memory spool", map[string]any{
				"error": err.Error(),
			})
			return spool.NewMemorySpool(cfg.MaxMemorySize, collector)
		}
		return spool.NewLodeSpool(store, cfg.LodeS3.Prefix, cfg.MaxDiskSize, logger, collector)
	default:
		disk, err := spool.NewDiskSpool(cfg.TempDir, cfg.MaxDiskSize, logger, collector)
		if err != nil {
			logger.Warn("disk spool init failed, falling back to memory spool", map[string]any{
				"tempDir": cfg.TempDir,
				"error":   err.Error(),
			})
			return spool.NewMemorySpool(cfg.MaxMemorySize, collector)
		}
		return disk
	}
}

// newLodeS3Store builds a lode.Store backed by S3, loading AWS config the
// standard way and applying optional endpoint/path-style overrides for
// S3-compatible stores (e.g. MinIO in tests).
func newLodeS3Store(cfg LodeS3Config) (lode.Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("xray: lode-s3 spool backend requires a bucket")
	}

	ctx := context.Background()
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("xray: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = &endpoint })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}
	s3Client := s3.NewFromConfig(awsCfg, s3Opts...)

	return lodes3.New(s3Client, lodes3.Config{Bucket: cfg.Bucket, Prefix: cfg.Prefix})
}
