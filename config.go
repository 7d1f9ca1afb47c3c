// Package modelcaps answers "does model M support capability C (under
// context X)?" by consulting, in strict priority order, an on-disk empirical
// observation cache, a periodically refreshed remote capability index, an
// optional host-supplied model registry, and a static provider heuristic.
package modelcaps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/modelcaps/capability"
	"github.com/jmylchreest/modelcaps/internal/index"
)

// Config holds the tunable defaults for capability resolution. It is a value
// object: a Detector deep-clones the config it is given, so mutating the
// caller's copy after construction never alters an existing Detector.
type Config struct {
	// CachePath is the JSON document backing the empirical observation cache.
	CachePath string

	// IndexPath is the JSON document backing the remote capability index.
	IndexPath string

	// IndexURL is the read-only models endpoint the index refreshes from.
	IndexURL string

	// IndexTTL bounds how old the on-disk index file may be before a refresh.
	IndexTTL time.Duration

	// CacheMaxAge bounds how old an empirical observation may be before it
	// reads as absent. Zero disables expiry entirely.
	CacheMaxAge time.Duration

	// HTTPTimeout caps the single outbound index fetch.
	HTTPTimeout time.Duration

	// ProviderCapabilities is the static heuristic table: for each capability,
	// the set of providers assumed to support it. This is the resolution floor.
	ProviderCapabilities map[capability.Capability][]string

	// Registry locates an optional in-process model registry. Nil means the
	// registry tier is unavailable and always reads as absent.
	Registry RegistryLocator
}

// DefaultConfig returns a config with store files under the user cache
// directory and the built-in provider heuristic table. Each call returns a
// fresh table copy.
func DefaultConfig() *Config {
	dir := defaultDataDir()
	return &Config{
		CachePath:            filepath.Join(dir, "empirical.json"),
		IndexPath:            filepath.Join(dir, "index.json"),
		IndexURL:             index.DefaultURL,
		IndexTTL:             24 * time.Hour,
		CacheMaxAge:          30 * 24 * time.Hour,
		HTTPTimeout:          10 * time.Second,
		ProviderCapabilities: defaultProviderCapabilities(),
	}
}

// Load builds a config from environment variables, falling back to defaults.
// MODELCAPS_PROVIDER_TABLE may point at a YAML file overriding entries of the
// static provider table.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	cfg.CachePath = getEnv("MODELCAPS_CACHE_PATH", cfg.CachePath)
	cfg.IndexPath = getEnv("MODELCAPS_INDEX_PATH", cfg.IndexPath)
	cfg.IndexURL = getEnv("MODELCAPS_INDEX_URL", cfg.IndexURL)
	cfg.IndexTTL = getEnvDuration("MODELCAPS_INDEX_TTL", cfg.IndexTTL)
	cfg.CacheMaxAge = getEnvDuration("MODELCAPS_CACHE_MAX_AGE", cfg.CacheMaxAge)
	cfg.HTTPTimeout = getEnvDuration("MODELCAPS_HTTP_TIMEOUT", cfg.HTTPTimeout)

	if path := os.Getenv("MODELCAPS_PROVIDER_TABLE"); path != "" {
		if err := cfg.LoadProviderTable(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadProviderTable merges a YAML capability -> providers mapping into the
// static table. Entries replace the defaults for their capability; unknown
// capability names fail rather than silently disappearing.
func (c *Config) LoadProviderTable(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read provider table %s: %w", path, err)
	}

	var table map[string][]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parse provider table %s: %w", path, err)
	}

	for name, providers := range table {
		cap, err := capability.Parse(name)
		if err != nil {
			return fmt.Errorf("provider table %s: %w", path, err)
		}
		c.ProviderCapabilities[cap] = providers
	}
	return nil
}

// Clone returns a deep copy. The provider table is copied so dependents can
// hold the result without sharing mutable state with the caller.
func (c *Config) Clone() *Config {
	out := *c
	out.ProviderCapabilities = make(map[capability.Capability][]string, len(c.ProviderCapabilities))
	for cap, providers := range c.ProviderCapabilities {
		out.ProviderCapabilities[cap] = append([]string(nil), providers...)
	}
	return &out
}

func defaultDataDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "modelcaps")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}
