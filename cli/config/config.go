// Package config handles YAML config file loading for xray-inspect.
package config

import (
	"fmt"
	"time"
)

// Config represents an xray.yaml configuration file for the xray-inspect
// debug CLI. All values are optional. Load parses the file; the
// xray-inspect commands do not call Load, so these values do not feed
// their command-line flags.
type Config struct {
	SpoolDir     string       `yaml:"spool_dir"`
	SpoolBackend string       `yaml:"spool_backend"`
	MaxDiskSize  int64        `yaml:"max_disk_size"`
	Watch        WatchConfig  `yaml:"watch"`
	LodeS3       LodeS3Config `yaml:"lode_s3"`
}

// WatchConfig holds defaults for `xray-inspect stats --watch`.
type WatchConfig struct {
	Interval Duration `yaml:"interval"`
}

// LodeS3Config mirrors xray.LodeS3Config for the spool backends that read
// from a Lode-managed S3 store rather than local disk.
type LodeS3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"s3_path_style"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
