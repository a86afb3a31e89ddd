package xray

import (
	"fmt"
	"os"
	"time"

	"github.com/mhetreayush/xray-sdk/adapter"
)

// Config is the immutable, process-lifetime configuration for a Tracer
// root. It is validated once at construction; nothing later mutates it.
type Config struct {
	// APIKey is sent as x-api-key on ingest/presign requests. Required.
	APIKey string
	// ProjectID prefixes every traceId and is echoed into events. Required.
	ProjectID string
	// Enabled disables every user-facing method when false (default true).
	Enabled *bool
	// Debug enables info/warn/debug-level logging (default false; error/warn
	// level logs for always-logged conditions fire regardless).
	Debug bool
	// BaseURL is the ingest service root.
	BaseURL string
	// TempDir is the spool root directory. Auto-detected when empty.
	TempDir string
	// SpoolBackend selects the on-disk spool implementation: "disk" (default)
	// or "lode-s3" for the shared, S3-backed spool.
	SpoolBackend string
	// LodeS3 configures the optional S3-backed spool. Only read when
	// SpoolBackend == "lode-s3".
	LodeS3 LodeS3Config
	// MaxDiskSize is the disk spool quota in bytes.
	MaxDiskSize int64
	// MaxMemorySize is the memory spool quota in bytes.
	MaxMemorySize int64
	// BatchInterval is the event batcher flush period.
	BatchInterval time.Duration
	// MaxBatchSize is the event count threshold that forces an immediate flush.
	MaxBatchSize int
	// WorkerPoolSize is the number of serializer pool workers.
	WorkerPoolSize int
	// CompletionAdapter optionally publishes a TraceCompletedEvent whenever a
	// trace ends. Nil means no notification.
	CompletionAdapter adapter.Adapter
}

// LodeS3Config configures the optional S3-backed spool.
type LodeS3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

const (
	defaultMaxDiskSize    int64 = 500 * 1024 * 1024
	defaultMaxMemorySize  int64 = 50 * 1024 * 1024
	defaultBatchInterval        = 1000 * time.Millisecond
	defaultMaxBatchSize         = 50
	defaultWorkerPoolSize       = 2
)

// withDefaults returns a copy of cfg with every unset field replaced by its
// documented default, and validates required fields.
func (cfg Config) withDefaults() (Config, error) {
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("xray: apiKey is required")
	}
	if cfg.ProjectID == "" {
		return cfg, fmt.Errorf("xray: projectId is required")
	}

	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("XRAY_BASE_URL")
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:3000"
		}
	}
	if cfg.MaxDiskSize <= 0 {
		cfg.MaxDiskSize = defaultMaxDiskSize
	}
	if cfg.MaxMemorySize <= 0 {
		cfg.MaxMemorySize = defaultMaxMemorySize
	}
	if cfg.BatchInterval <= 0 {
		cfg.BatchInterval = defaultBatchInterval
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultMaxBatchSize
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.SpoolBackend == "" {
		cfg.SpoolBackend = "disk"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = detectTempDir()
	}

	return cfg, nil
}

func (cfg Config) enabled() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}
