package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DEFAULT_MODEL", "")
	t.Setenv("OCR_LANGS", "")
	t.Setenv("OLLAMA_TIMEOUT_SECONDS", "")
	t.Setenv("RETENTION_MAX_AGE_HOURS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultModel != "gemma3n:e4b-it-fp16" {
		t.Fatalf("expected default model gemma3n:e4b-it-fp16, got %q", cfg.DefaultModel)
	}
	if cfg.OCRLanguages != "rus+eng" {
		t.Fatalf("expected default ocr languages rus+eng, got %q", cfg.OCRLanguages)
	}
	if cfg.OllamaTimeoutSeconds != 0 {
		t.Fatalf("expected no model timeout by default, got %d", cfg.OllamaTimeoutSeconds)
	}
	if cfg.RetentionMaxAgeHours != 0 {
		t.Fatalf("expected keep-forever retention by default, got %d", cfg.RetentionMaxAgeHours)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DEFAULT_MODEL", "llama3.1:8b")
	t.Setenv("OCR_RASTER_DPI", "150")
	t.Setenv("BREAKER_FAILURE_RATIO", "0.75")
	t.Setenv("BREAKER_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultModel != "llama3.1:8b" {
		t.Fatalf("expected model override, got %q", cfg.DefaultModel)
	}
	if cfg.RasterDPI != 150 {
		t.Fatalf("expected raster dpi 150, got %d", cfg.RasterDPI)
	}
	if cfg.BreakerFailureRatio != 0.75 {
		t.Fatalf("expected failure ratio 0.75, got %v", cfg.BreakerFailureRatio)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}

func TestLoadAppliesConfigFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("default_model: file-model\nuploads_path: /var/docan/uploads\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEFAULT_MODEL", "env-model")
	t.Setenv("UPLOADS_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultModel != "env-model" {
		t.Fatalf("expected env to win over file, got %q", cfg.DefaultModel)
	}
	if cfg.UploadsPath != "/var/docan/uploads" {
		t.Fatalf("expected uploads path from file, got %q", cfg.UploadsPath)
	}
}

func TestLoadRejectsBrokenConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_model: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparseable config file")
	}
}
