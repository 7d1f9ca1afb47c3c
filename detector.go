package modelcaps

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/jmylchreest/modelcaps/capability"
	"github.com/jmylchreest/modelcaps/internal/cache"
	"github.com/jmylchreest/modelcaps/internal/index"
)

// Detector orchestrates the four-tier capability resolution. Construct one
// at application startup and pass it to whatever needs capability answers;
// there is no package-level instance.
type Detector struct {
	logger *slog.Logger

	mu      sync.Mutex
	cfg     *Config
	cache   *cache.Cache
	index   *index.Index
	adapter *registryAdapter
}

// New creates a detector from cfg. A nil cfg uses DefaultConfig; a nil
// logger uses slog.Default. The config is cloned, so later mutation of the
// caller's copy has no effect on this detector.
func New(cfg *Config, logger *slog.Logger) *Detector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{logger: logger}
	d.apply(cfg.Clone())
	return d
}

// apply swaps in a config and rebuilds the derived store instances. The
// caller must hold d.mu unless the detector is not yet shared.
func (d *Detector) apply(cfg *Config) {
	d.cfg = cfg
	d.cache = cache.New(cfg.CachePath, cfg.CacheMaxAge, d.logger.With("component", "empirical-cache"))
	d.index = index.New(cfg.IndexPath, cfg.IndexURL, cfg.IndexTTL, cfg.HTTPTimeout, d.logger.With("component", "capability-index"))
	d.adapter = newRegistryAdapter(cfg.Registry, d.logger.With("component", "registry-adapter"))
}

// SetConfig replaces the configuration wholesale and invalidates the derived
// cache, index, and registry adapter; they are recreated lazily on next use.
func (d *Detector) SetConfig(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apply(cfg.Clone())
}

// Config returns a copy of the active configuration.
func (d *Detector) Config() *Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.Clone()
}

// Supports resolves whether model supports cap under ctx. The first tier
// with an opinion wins: empirical cache, then remote index, then the host
// registry, then the static provider heuristic, which always answers.
// Only two failures surface as errors: a capability outside the vocabulary
// (checked before any store is touched) and genuine storage I/O faults from
// the cache; everything else degrades to the next tier.
func (d *Detector) Supports(model string, cap capability.Capability, ctx capability.Context) (bool, error) {
	if !cap.Valid() {
		return false, &capability.UnknownCapabilityError{Capability: string(cap)}
	}

	d.mu.Lock()
	cch, ix, adapter := d.cache, d.index, d.adapter
	d.mu.Unlock()

	if v, ok, err := cch.Lookup(model, cap, ctx); err != nil {
		return false, err
	} else if ok {
		d.logResolved(model, cap, "cache", v)
		return v, nil
	}

	// Context scopes empirical observations only; the remaining tiers answer
	// for the bare (model, capability) pair.
	if v, ok := ix.Lookup(model, cap); ok {
		d.logResolved(model, cap, "index", v)
		return v, nil
	}

	if v, ok := adapter.Query(model, cap); ok {
		d.logResolved(model, cap, "registry", v)
		return v, nil
	}

	v := d.ProviderSupports(model, cap)
	d.logResolved(model, cap, "heuristic", v)
	return v, nil
}

// ProviderSupports is the resolution floor: it extracts the provider as the
// substring before the first "/" in the model id and checks membership in
// the static table. No provider prefix, an empty prefix, or a capability
// missing from the table all answer false.
func (d *Detector) ProviderSupports(model string, cap capability.Capability) bool {
	slash := strings.Index(model, "/")
	if slash <= 0 {
		return false
	}
	provider := model[:slash]

	d.mu.Lock()
	providers := d.cfg.ProviderCapabilities[cap]
	d.mu.Unlock()

	for _, p := range providers {
		if p == provider {
			return true
		}
	}
	return false
}

// Record stores an empirical observation for the triple, overwriting any
// prior entry and persisting the full cache to disk.
func (d *Detector) Record(model string, cap capability.Capability, ctx capability.Context, supported bool) error {
	if !cap.Valid() {
		return &capability.UnknownCapabilityError{Capability: string(cap)}
	}
	d.mu.Lock()
	cch := d.cache
	d.mu.Unlock()
	return cch.Record(model, cap, ctx, supported)
}

// Lookup consults only the empirical cache tier. The second return value is
// false when the cache has no fresh entry for the triple.
func (d *Detector) Lookup(model string, cap capability.Capability, ctx capability.Context) (supported, ok bool, err error) {
	if !cap.Valid() {
		return false, false, &capability.UnknownCapabilityError{Capability: string(cap)}
	}
	d.mu.Lock()
	cch := d.cache
	d.mu.Unlock()
	return cch.Lookup(model, cap, ctx)
}

// Clear empties the empirical cache and persists the empty mapping.
func (d *Detector) Clear() error {
	d.mu.Lock()
	cch := d.cache
	d.mu.Unlock()
	return cch.Clear()
}

// Size returns the number of empirical cache entries.
func (d *Detector) Size() (int, error) {
	d.mu.Lock()
	cch := d.cache
	d.mu.Unlock()
	return cch.Size()
}

func (d *Detector) logResolved(model string, cap capability.Capability, tier string, supported bool) {
	d.logger.Debug("capability resolved",
		"model", model,
		"capability", string(cap),
		"tier", tier,
		"supported", supported,
	)
}
