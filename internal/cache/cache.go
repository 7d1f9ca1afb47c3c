// Package cache implements the empirical observation store: a durable
// mapping from (model, capability, context) to a recorded support claim.
// It is the first and most specific resolution tier.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/modelcaps/capability"
	"github.com/jmylchreest/modelcaps/internal/lockfile"
)

// entry is the persisted shape of one observation. Entries are replaced
// wholesale by Record, never partially mutated.
type entry struct {
	Supported  bool  `json:"supported"`
	RecordedAt int64 `json:"recorded_at"`
}

// Cache is a JSON-backed observation store. The file is read at most once
// per Cache instance; after the first load the in-memory mapping is
// authoritative and every write persists the full mapping back to disk.
type Cache struct {
	path   string
	maxAge time.Duration // 0 disables expiry
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	loaded  bool
	entries map[string]entry
}

// New creates a cache backed by the JSON document at path. Entries older
// than maxAge read as absent; a zero maxAge disables expiry entirely.
func New(path string, maxAge time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		path:   path,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

// Lookup returns the recorded claim for the canonical key, if a fresh one
// exists. The second return value is false when the tier has no opinion:
// entry missing, or present but older than maxAge. I/O errors other than a
// missing file propagate to the caller.
func (c *Cache) Lookup(model string, cap capability.Capability, ctx capability.Context) (supported, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return false, false, err
	}

	e, found := c.entries[capability.Key(model, cap, ctx)]
	if !found {
		return false, false, nil
	}
	if c.maxAge > 0 && e.RecordedAt > 0 {
		age := c.now().Unix() - e.RecordedAt
		if age > int64(c.maxAge/time.Second) {
			return false, false, nil
		}
	}
	return e.Supported, true, nil
}

// Record upserts an observation with recorded_at set to now and persists
// the entire mapping to disk.
func (c *Cache) Record(model string, cap capability.Capability, ctx capability.Context, supported bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return err
	}

	key := capability.Key(model, cap, ctx)
	c.entries[key] = entry{Supported: supported, RecordedAt: c.now().Unix()}
	if err := c.persist(); err != nil {
		return err
	}

	c.logger.Debug("recorded capability observation",
		"key", key,
		"supported", supported,
	)
	return nil
}

// Clear replaces the in-memory mapping with an empty one and persists it.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]entry{}
	c.loaded = true
	return c.persist()
}

// Size returns the number of entries currently held, loading the store if
// needed. Expired entries still count until they are overwritten.
func (c *Cache) Size() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return 0, err
	}
	return len(c.entries), nil
}

// load reads the backing file once per Cache instance. A missing file means
// an empty store; a syntactically invalid document resets the store to empty
// (soft recovery); any other I/O error is a fault for the caller and leaves
// the cache unloaded so the next call retries.
func (c *Cache) load() error {
	if c.loaded {
		return nil
	}

	data, err := lockfile.Read(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		c.entries = map[string]entry{}
		c.loaded = true
		return nil
	}
	if err != nil {
		return err
	}

	c.entries = c.decode(data)
	c.loaded = true
	return nil
}

// decode parses the persisted document, migrating legacy entries whose value
// is a bare boolean into the structured shape with recorded_at = now. Values
// that are neither shape are dropped rather than faulting the whole load.
func (c *Cache) decode(data []byte) map[string]entry {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("empirical cache file is not valid JSON, starting empty",
			"path", c.path,
			"error", err,
		)
		return map[string]entry{}
	}

	entries := make(map[string]entry, len(raw))
	for key, val := range raw {
		var e entry
		if err := json.Unmarshal(val, &e); err == nil {
			entries[key] = e
			continue
		}

		var legacy bool
		if err := json.Unmarshal(val, &legacy); err == nil {
			entries[key] = entry{Supported: legacy, RecordedAt: c.now().Unix()}
			continue
		}

		c.logger.Warn("dropping unreadable cache entry", "key", key)
	}
	return entries
}

// persist writes the full mapping to disk under an exclusive lock.
func (c *Cache) persist() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	return lockfile.Write(c.path, data)
}
