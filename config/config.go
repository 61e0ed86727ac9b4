package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Matching  MatchingConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the SQLite database location
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig holds the entity-resolution thresholds. The source history
// carried several inconsistent variants; this is the canonical set, kept as
// configuration rather than constants scattered through the matchers.
type MatchingConfig struct {
	BrandThreshold        float64 `mapstructure:"brand_threshold"`
	CategoryThreshold     float64 `mapstructure:"category_threshold"`
	ProductThreshold      float64 `mapstructure:"product_threshold"`
	MinCommonTokens       int     `mapstructure:"min_common_tokens"`
	TokenOverlapThreshold float64 `mapstructure:"token_overlap_threshold"`
}

// CatalogConfig holds catalog fallback names
type CatalogConfig struct {
	DefaultBrand    string `mapstructure:"default_brand"`
	DefaultCategory string `mapstructure:"default_category"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/comparaqp/")

	v.SetEnvPrefix("COMPARAQP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.path", "comparaqp.db")

	// Matching defaults: the canonical threshold set
	v.SetDefault("matching.brand_threshold", 0.85)
	v.SetDefault("matching.category_threshold", 0.70)
	v.SetDefault("matching.product_threshold", 0.80)
	v.SetDefault("matching.min_common_tokens", 3)
	v.SetDefault("matching.token_overlap_threshold", 0.70)

	// Catalog defaults
	v.SetDefault("catalog.default_brand", "Genérico")
	v.SetDefault("catalog.default_category", "General")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")

	// Rate limit defaults (requests per minute per client IP)
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.Path == "" {
		return fmt.Errorf("database path is required (set COMPARAQP_DATABASE_PATH)")
	}

	thresholds := map[string]float64{
		"matching.brand_threshold":         config.Matching.BrandThreshold,
		"matching.category_threshold":      config.Matching.CategoryThreshold,
		"matching.product_threshold":       config.Matching.ProductThreshold,
		"matching.token_overlap_threshold": config.Matching.TokenOverlapThreshold,
	}
	for name, value := range thresholds {
		if value <= 0 || value > 1 {
			return fmt.Errorf("%s must be in (0, 1], got: %v", name, value)
		}
	}

	if config.Matching.MinCommonTokens < 1 {
		return fmt.Errorf("matching.min_common_tokens must be >= 1, got: %d", config.Matching.MinCommonTokens)
	}

	if config.Catalog.DefaultBrand == "" || config.Catalog.DefaultCategory == "" {
		return fmt.Errorf("catalog default brand and category must not be empty")
	}

	return nil
}
