package xray

import "testing"

func TestWithDefaultsRequiresAPIKey(t *testing.T) {
	_, err := Config{ProjectID: "p1"}.withDefaults()
	if err == nil {
		t.Fatal("expected error for missing apiKey")
	}
}

func TestWithDefaultsRequiresProjectID(t *testing.T) {
	_, err := Config{APIKey: "k1"}.withDefaults()
	if err == nil {
		t.Fatal("expected error for missing projectId")
	}
}

func TestWithDefaultsFillsDefaults(t *testing.T) {
	cfg, err := Config{APIKey: "k1", ProjectID: "p1"}.withDefaults()
	if err != nil {
		t.Fatalf("withDefaults: %v", err)
	}
	if !cfg.enabled() {
		t.Fatal("expected Enabled to default true")
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Fatalf("unexpected BaseURL default: %q", cfg.BaseURL)
	}
	if cfg.MaxDiskSize != defaultMaxDiskSize {
		t.Fatalf("unexpected MaxDiskSize default: %d", cfg.MaxDiskSize)
	}
	if cfg.MaxBatchSize != defaultMaxBatchSize {
		t.Fatalf("unexpected MaxBatchSize default: %d", cfg.MaxBatchSize)
	}
	if cfg.SpoolBackend != "disk" {
		t.Fatalf("unexpected SpoolBackend default: %q", cfg.SpoolBackend)
	}
}

func TestWithDefaultsPreservesOverrides(t *testing.T) {
	cfg, err := Config{
		APIKey:       "k1",
		ProjectID:    "p1",
		BaseURL:      "https://ingest.example.com",
		MaxBatchSize: 10,
		SpoolBackend: "lode-s3",
	}.withDefaults()
	if err != nil {
		t.Fatalf("withDefaults: %v", err)
	}
	if cfg.BaseURL != "https://ingest.example.com" {
		t.Fatalf("override not preserved: %q", cfg.BaseURL)
	}
	if cfg.MaxBatchSize != 10 {
		t.Fatalf("override not preserved: %d", cfg.MaxBatchSize)
	}
	if cfg.SpoolBackend != "lode-s3" {
		t.Fatalf("override not preserved: %q", cfg.SpoolBackend)
	}
}

func TestEnabledRespectsExplicitFalse(t *testing.T) {
	disabled := false
	cfg := Config{Enabled: &disabled}
	if cfg.enabled() {
		t.Fatal("expected enabled() false when Enabled points to false")
	}
}
