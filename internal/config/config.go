// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Object store settings.
	Bucket       string // S3 bucket holding all hub data.
	Region       string // Empty defers to the AWS credential chain's region.
	Endpoint     string // Custom endpoint for S3-compatible stores (MinIO, LocalStack).
	UsePathStyle bool   // Path-style addressing, required by most S3-compatible stores.

	// Key layout. Prefixes are normalized by the keys package; the
	// registry key is used verbatim.
	SessionsPrefix string
	MetricsPrefix  string
	PromptsPrefix  string
	RegistryKey    string

	// Prompt cache settings.
	CachePath string        // SQLite file path; empty disables the local cache.
	CacheTTL  time.Duration // Staleness bound for cached prompt text; zero caches forever.

	// Transport settings.
	Transport           string // "stdio" or "http".
	HTTPAddr            string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxRequestBodyBytes int64 // Maximum HTTP request body size in bytes.

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool // Plain HTTP to the OTLP endpoint (local collectors).
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible
// defaults. Parse failures are collected rather than returned one at a
// time, so a misconfigured deployment reports every bad variable at once.
func Load() (Config, error) {
	var errs []error

	pathStyle, err := envBool("HUB_S3_PATH_STYLE", false)
	if err != nil {
		errs = append(errs, err)
	}
	cacheTTL, err := envDuration("HUB_CACHE_TTL", 5*time.Minute)
	if err != nil {
		errs = append(errs, err)
	}
	readTimeout, err := envDuration("HUB_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		errs = append(errs, err)
	}
	writeTimeout, err := envDuration("HUB_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		errs = append(errs, err)
	}
	maxBody, err := envInt("HUB_MAX_REQUEST_BODY_BYTES", 4*1024*1024)
	if err != nil {
		errs = append(errs, err)
	}
	otelInsecure, err := envBool("OTEL_INSECURE", false)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := Config{
		Bucket:              envStr("HUB_S3_BUCKET", ""),
		Region:              envStr("AWS_REGION", ""),
		Endpoint:            envStr("HUB_S3_ENDPOINT", ""),
		UsePathStyle:        pathStyle,
		SessionsPrefix:      envStr("HUB_SESSIONS_PREFIX", "sessions/"),
		MetricsPrefix:       envStr("HUB_METRICS_PREFIX", "metrics/"),
		PromptsPrefix:       envStr("HUB_PROMPTS_PREFIX", "system_prompts/"),
		RegistryKey:         envStr("HUB_REGISTRY_KEY", "registry.json"),
		CachePath:           envStr("HUB_CACHE_PATH", ""),
		CacheTTL:            cacheTTL,
		Transport:           envStr("HUB_TRANSPORT", "stdio"),
		HTTPAddr:            envStr("HTTP_ADDR", ":8080"),
		ReadTimeout:         readTimeout,
		WriteTimeout:        writeTimeout,
		MaxRequestBodyBytes: int64(maxBody),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        otelInsecure,
		ServiceName:         envStr("OTEL_SERVICE_NAME", "strands-hub"),
		LogLevel:            envStr("LOG_LEVEL", "info"),
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that configuration values are consistent. The bucket is
// not required here: the embedding API can inject a store in its place, so
// its absence is enforced where the S3 gateway is actually constructed.
func (c Config) Validate() error {
	if c.Transport != "stdio" && c.Transport != "http" {
		return fmt.Errorf("config: HUB_TRANSPORT must be %q or %q, got %q", "stdio", "http", c.Transport)
	}
	if c.RegistryKey == "" {
		return fmt.Errorf("config: HUB_REGISTRY_KEY must not be empty")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: HUB_CACHE_TTL must not be negative")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: HUB_MAX_REQUEST_BODY_BYTES must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
