// ABOUTME: Configuration loader for the capacity planning service
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	CacheTTL           int      // seconds, for provider-resolved instance types
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitPlan    int  // Requests per minute for plan and compare (default: 60)
	RateLimitDefault int  // Requests per minute for all other endpoints (default: 300)

	// Planning
	DefaultSubnetCount int // node_min when a request omits subnet_count (default: 2)
	CompareConcurrency int // concurrent candidate lookups per comparison (default: 4)

	// EC2 catalog (optional)
	CatalogEC2Enabled bool
	AWSRegion         string

	// vSphere catalog (optional)
	VSphereHost       string
	VSphereUsername   string
	VSpherePassword   string
	VSphereDatacenter string
	VSphereInsecure   bool
}

// VSphereConfigured returns true if vSphere credentials are set
func (c *Config) VSphereConfigured() bool {
	return c.VSphereHost != "" && c.VSphereUsername != "" && c.VSpherePassword != "" && c.VSphereDatacenter != ""
}

// Load reads DOTENV_PATH (default .env) if present, then the environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := loadDotenv(getEnv("DOTENV_PATH", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CacheTTL:           getEnvInt("CACHE_TTL", 300),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitPlan:    getEnvInt("RATE_LIMIT_PLAN", 60),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 300),

		DefaultSubnetCount: getEnvInt("DEFAULT_SUBNET_COUNT", 2),
		CompareConcurrency: getEnvInt("COMPARE_CONCURRENCY", 4),

		CatalogEC2Enabled: getEnvBool("CATALOG_EC2_ENABLED", false),
		AWSRegion:         os.Getenv("AWS_REGION"),

		VSphereHost:       os.Getenv("VSPHERE_HOST"),
		VSphereUsername:   os.Getenv("VSPHERE_USERNAME"),
		VSpherePassword:   os.Getenv("VSPHERE_PASSWORD"),
		VSphereDatacenter: os.Getenv("VSPHERE_DATACENTER"),
		VSphereInsecure:   getEnvBool("VSPHERE_INSECURE", false),
	}

	if cfg.CacheTTL < 1 {
		return nil, fmt.Errorf("CACHE_TTL must be at least 1 second, got %d", cfg.CacheTTL)
	}
	if cfg.DefaultSubnetCount < 1 {
		return nil, fmt.Errorf("DEFAULT_SUBNET_COUNT must be at least 1, got %d", cfg.DefaultSubnetCount)
	}
	if cfg.CompareConcurrency < 1 || cfg.CompareConcurrency > 64 {
		return nil, fmt.Errorf("COMPARE_CONCURRENCY must be between 1 and 64, got %d", cfg.CompareConcurrency)
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_PLAN", cfg.RateLimitPlan},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	return cfg, nil
}

// loadDotenv applies a dotenv file without overriding the environment.
// A missing file is not an error.
func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		slog.Debug("Loaded environment file", "path", path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
