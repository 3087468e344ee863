package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort   string `yaml:"api_port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	UploadsPath  string `yaml:"uploads_path"`
	TaxonomyPath string `yaml:"taxonomy_path"`
	WebDir       string `yaml:"web_dir"`

	OllamaURL            string `yaml:"ollama_url"`
	DefaultModel         string `yaml:"default_model"`
	OllamaTimeoutSeconds int    `yaml:"ollama_timeout_seconds"`
	OllamaMaxRPS         int    `yaml:"ollama_max_rps"`

	PdftoppmBinary  string `yaml:"pdftoppm_binary"`
	TesseractBinary string `yaml:"tesseract_binary"`
	OCRLanguages    string `yaml:"ocr_languages"`
	RasterDPI       int    `yaml:"raster_dpi"`

	RetentionMaxAgeHours   int    `yaml:"retention_max_age_hours"`
	RetentionSweepSchedule string `yaml:"retention_sweep_schedule"`

	ProgressObserverBuffer int    `yaml:"progress_observer_buffer"`
	ProgressNATSURL        string `yaml:"progress_nats_url"`
	ProgressNATSSubject    string `yaml:"progress_nats_subject"`

	BreakerEnabled            bool    `yaml:"breaker_enabled"`
	BreakerMinRequests        int     `yaml:"breaker_min_requests"`
	BreakerFailureRatio       float64 `yaml:"breaker_failure_ratio"`
	BreakerOpenTimeoutSeconds int     `yaml:"breaker_open_timeout_seconds"`
	BreakerHalfOpenMaxCalls   int     `yaml:"breaker_half_open_max_calls"`
}

// Load resolves configuration as env over optional YAML file (CONFIG_FILE)
// over built-in defaults.
func Load() (Config, error) {
	base := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyFile(path, &base); err != nil {
			return Config{}, err
		}
	}

	return Config{
		APIPort:   mustEnv("API_PORT", base.APIPort),
		LogLevel:  mustEnv("LOG_LEVEL", base.LogLevel),
		LogFormat: mustEnv("LOG_FORMAT", base.LogFormat),

		UploadsPath:  mustEnv("UPLOADS_PATH", base.UploadsPath),
		TaxonomyPath: mustEnv("TAXONOMY_PATH", base.TaxonomyPath),
		WebDir:       mustEnv("WEB_DIR", base.WebDir),

		OllamaURL:            mustEnv("OLLAMA_URL", base.OllamaURL),
		DefaultModel:         mustEnv("DEFAULT_MODEL", base.DefaultModel),
		OllamaTimeoutSeconds: mustEnvInt("OLLAMA_TIMEOUT_SECONDS", base.OllamaTimeoutSeconds),
		OllamaMaxRPS:         mustEnvInt("OLLAMA_MAX_RPS", base.OllamaMaxRPS),

		PdftoppmBinary:  mustEnv("PDFTOPPM_BIN", base.PdftoppmBinary),
		TesseractBinary: mustEnv("TESSERACT_BIN", base.TesseractBinary),
		OCRLanguages:    mustEnv("OCR_LANGS", base.OCRLanguages),
		RasterDPI:       mustEnvInt("OCR_RASTER_DPI", base.RasterDPI),

		RetentionMaxAgeHours:   mustEnvInt("RETENTION_MAX_AGE_HOURS", base.RetentionMaxAgeHours),
		RetentionSweepSchedule: mustEnv("RETENTION_SWEEP_SCHEDULE", base.RetentionSweepSchedule),

		ProgressObserverBuffer: mustEnvInt("PROGRESS_OBSERVER_BUFFER", base.ProgressObserverBuffer),
		ProgressNATSURL:        mustEnv("PROGRESS_NATS_URL", base.ProgressNATSURL),
		ProgressNATSSubject:    mustEnv("PROGRESS_NATS_SUBJECT", base.ProgressNATSSubject),

		BreakerEnabled:            mustEnvBool("BREAKER_ENABLED", base.BreakerEnabled),
		BreakerMinRequests:        mustEnvInt("BREAKER_MIN_REQUESTS", base.BreakerMinRequests),
		BreakerFailureRatio:       mustEnvFloat("BREAKER_FAILURE_RATIO", base.BreakerFailureRatio),
		BreakerOpenTimeoutSeconds: mustEnvInt("BREAKER_OPEN_TIMEOUT_SECONDS", base.BreakerOpenTimeoutSeconds),
		BreakerHalfOpenMaxCalls:   mustEnvInt("BREAKER_HALF_OPEN_MAX_CALLS", base.BreakerHalfOpenMaxCalls),
	}, nil
}

func defaults() Config {
	return Config{
		APIPort:   "8080",
		LogLevel:  "info",
		LogFormat: "json",

		UploadsPath:  "./data/uploads",
		TaxonomyPath: "./data/taxonomy.json",
		WebDir:       "./web",

		OllamaURL:    "http://localhost:11434",
		DefaultModel: "gemma3n:e4b-it-fp16",

		PdftoppmBinary:  "pdftoppm",
		TesseractBinary: "tesseract",
		OCRLanguages:    "rus+eng",
		RasterDPI:       300,

		RetentionSweepSchedule: "*/30 * * * *",

		ProgressObserverBuffer: 16,
		ProgressNATSSubject:    "docan.progress",

		BreakerEnabled:            true,
		BreakerMinRequests:        10,
		BreakerFailureRatio:       0.5,
		BreakerOpenTimeoutSeconds: 30,
		BreakerHalfOpenMaxCalls:   2,
	}
}

func applyFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
