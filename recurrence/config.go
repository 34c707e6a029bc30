package recurrence

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cyp0633/librepeat/datemath"
)

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// Horizon is the last date (YYYY-MM-DD) any series may reach
	Horizon string `yaml:"horizon"`

	// Candidate counts generated before truncating at the end date
	Limits Limits `yaml:"limits"`

	// Cache configuration
	CacheEnabled bool        `yaml:"cache_enabled"`
	CacheConfig  CacheConfig `yaml:"cache"`
}

// DefaultEngineConfig expands without caching up to DefaultHorizon
var DefaultEngineConfig = EngineConfig{
	Horizon: DefaultHorizon,
	Limits:  DefaultLimits,
}

// CachedEngineConfig is meant for callers that expand the same drafts
// repeatedly, e.g. a form previewing a series on every keystroke
var CachedEngineConfig = EngineConfig{
	Horizon:      DefaultHorizon,
	Limits:       DefaultLimits,
	CacheEnabled: true,
	CacheConfig:  DefaultCacheConfig,
}

// Normalize fills zero values from DefaultEngineConfig and DefaultCacheConfig
func (c *EngineConfig) Normalize() {
	if c.Horizon == "" {
		c.Horizon = DefaultHorizon
	}
	if c.Limits.Daily <= 0 {
		c.Limits.Daily = DefaultLimits.Daily
	}
	if c.Limits.Weekly <= 0 {
		c.Limits.Weekly = DefaultLimits.Weekly
	}
	if c.Limits.Monthly <= 0 {
		c.Limits.Monthly = DefaultLimits.Monthly
	}
	if c.Limits.Yearly <= 0 {
		c.Limits.Yearly = DefaultLimits.Yearly
	}
	if c.CacheEnabled {
		if c.CacheConfig.TTL <= 0 {
			c.CacheConfig.TTL = DefaultCacheConfig.TTL
		}
		if c.CacheConfig.MaxEntries <= 0 {
			c.CacheConfig.MaxEntries = DefaultCacheConfig.MaxEntries
		}
		if c.CacheConfig.CleanupInterval <= 0 {
			c.CacheConfig.CleanupInterval = DefaultCacheConfig.CleanupInterval
		}
	}
}

// Validate rejects a horizon that is not an ISO date
func (c EngineConfig) Validate() error {
	if _, err := datemath.Parse(c.Horizon); err != nil {
		return fmt.Errorf("horizon: %w", err)
	}
	return nil
}

// ParseEngineConfig decodes a YAML document such as
//
//	horizon: 2026-12-31
//	limits:
//	  daily: 730
//	cache_enabled: true
//	cache:
//	  ttl: 10m
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse engine config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// LoadEngineConfig reads the YAML file at path. An empty path yields the defaults.
func LoadEngineConfig(path string) (EngineConfig, error) {
	if path == "" {
		return DefaultEngineConfig, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to read engine config: %w", err)
	}
	return ParseEngineConfig(data)
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration.
// A nil logger falls back to slog.Default().
func NewEngineWithConfig(config EngineConfig, logger *slog.Logger) (*Engine, error) {
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, errors.Join(errors.New("invalid engine config"), err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var cache *ExpansionCache
	if config.CacheEnabled {
		cache = NewExpansionCache(config.CacheConfig)
	}

	return &Engine{
		cache:  cache,
		config: config,
		logger: logger,
	}, nil
}

// CacheConfig holds configuration for the expansion cache
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`              // How long entries stay valid
	MaxEntries      int           `yaml:"max_entries"`      // Maximum number of entries before cleanup
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for expansion caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}
