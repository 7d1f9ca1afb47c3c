// Package index implements the remote capability index tier: a model to
// capability-set mapping refreshed from a read-only models endpoint on a TTL
// and persisted as a local JSON document.
package index

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jmylchreest/modelcaps/capability"
	"github.com/jmylchreest/modelcaps/internal/lockfile"
)

// DefaultURL is the public models endpoint the index refreshes from.
const DefaultURL = "https://openrouter.ai/api/v1/models"

// parameterCapabilities maps remote supported_parameters values to the
// internal vocabulary. Presence implies true; the normalizer never writes
// explicit false entries.
var parameterCapabilities = map[string]capability.Capability{
	"structured_outputs": capability.StructuredOutput,
	"tools":              capability.FunctionCalling,
	"reasoning":          capability.Reasoning,
	"response_format":    capability.JSONMode,
}

// Index resolves (model, capability) pairs from an in-memory map loaded at
// most once per instance: from the on-disk file when its modification time is
// within the TTL, otherwise from a single remote fetch. Staleness is only
// evaluated at first load; later lookups reuse the map unconditionally.
type Index struct {
	path   string
	url    string
	ttl    time.Duration
	client *http.Client
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	loaded bool
	models map[string]map[capability.Capability]bool
}

// New creates an index backed by the JSON document at path, refreshed from
// url when the file is missing or older than ttl. The HTTP client uses a
// fixed timeout so a slow endpoint cannot stall tier resolution.
func New(path, url string, ttl, timeout time.Duration, logger *slog.Logger) *Index {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		path:   path,
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// Lookup reports whether the index has an opinion on the pair. A model absent
// from the map, or present without the capability key, is unknown rather than
// unsupported.
func (ix *Index) Lookup(model string, cap capability.Capability) (supported, ok bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.ensureLoaded()

	caps, found := ix.models[model]
	if !found {
		return false, false
	}
	v, found := caps[cap]
	return v, found
}

// ensureLoaded populates the in-memory map exactly once per instance.
// Every failure mode degrades to an empty index; this tier never faults.
func (ix *Index) ensureLoaded() {
	if ix.loaded {
		return
	}
	ix.loaded = true
	ix.models = map[string]map[capability.Capability]bool{}

	if models, ok := ix.loadFile(); ok {
		ix.models = models
		ix.logger.Debug("capability index loaded from disk",
			"path", ix.path,
			"models", len(models),
		)
		return
	}

	body, ok := ix.fetch()
	if !ok {
		return
	}

	models := normalize(body)
	ix.models = models
	ix.logger.Debug("capability index refreshed from remote",
		"url", ix.url,
		"models", len(models),
	)

	if err := ix.persist(models); err != nil {
		ix.logger.Warn("failed to persist capability index", "path", ix.path, "error", err)
	}
}

// loadFile reads and decodes the on-disk index when it exists and is within
// the TTL. Any problem (missing, stale, unreadable, malformed) reports false
// so the caller falls through to a remote fetch.
func (ix *Index) loadFile() (map[string]map[capability.Capability]bool, bool) {
	info, err := os.Stat(ix.path)
	if err != nil {
		return nil, false
	}
	if age := ix.now().Sub(info.ModTime()); age > ix.ttl {
		ix.logger.Debug("capability index file is stale",
			"path", ix.path,
			"age_seconds", int(age.Seconds()),
			"ttl_seconds", int(ix.ttl.Seconds()),
		)
		return nil, false
	}

	data, err := lockfile.Read(ix.path)
	if err != nil {
		ix.logger.Warn("failed to read capability index file", "path", ix.path, "error", err)
		return nil, false
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		ix.logger.Warn("capability index file is not valid JSON", "path", ix.path, "error", err)
		return nil, false
	}

	models := make(map[string]map[capability.Capability]bool, len(raw))
	for id, caps := range raw {
		m := map[capability.Capability]bool{}
		for name, v := range caps {
			// Filter non-boolean values defensively.
			b, isBool := v.(bool)
			if !isBool {
				continue
			}
			m[capability.Capability(name)] = b
		}
		if len(m) > 0 {
			models[id] = m
		}
	}
	return models, true
}

// fetch performs exactly one outbound request. No retries: on any failure
// the index stays empty and resolution falls through to cheaper tiers.
func (ix *Index) fetch() ([]byte, bool) {
	req, err := http.NewRequest(http.MethodGet, ix.url, nil)
	if err != nil {
		ix.logger.Warn("failed to build capability index request", "url", ix.url, "error", err)
		return nil, false
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		ix.logger.Warn("capability index fetch failed", "url", ix.url, "error", err)
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ix.logger.Warn("capability index fetch returned non-2xx status",
			"url", ix.url,
			"status", resp.StatusCode,
		)
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ix.logger.Warn("failed to read capability index response", "url", ix.url, "error", err)
		return nil, false
	}
	if len(body) == 0 || !gjson.ValidBytes(body) {
		ix.logger.Warn("capability index response body is empty or invalid", "url", ix.url)
		return nil, false
	}
	return body, true
}

// normalize converts the remote models payload into the internal schema.
// Non-object entries, entries without a string id, and a non-array data
// field are skipped without aborting. Models that map to zero capabilities
// are omitted entirely so that "present but empty" and "absent" read the
// same while keeping the persisted file compact.
func normalize(body []byte) map[string]map[capability.Capability]bool {
	models := map[string]map[capability.Capability]bool{}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return models
	}

	data.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		id := item.Get("id")
		if id.Type != gjson.String || id.Str == "" {
			return true
		}

		// ForEach on a scalar visits the scalar itself, so each field must be
		// a real array before iteration.
		caps := map[capability.Capability]bool{}
		if params := item.Get("supported_parameters"); params.IsArray() {
			params.ForEach(func(_, p gjson.Result) bool {
				if p.Type != gjson.String {
					return true
				}
				if c, ok := parameterCapabilities[p.Str]; ok {
					caps[c] = true
				}
				return true
			})
		}
		if inputs := item.Get("architecture.input_modalities"); inputs.IsArray() {
			inputs.ForEach(func(_, m gjson.Result) bool {
				if m.Type == gjson.String && m.Str == "image" {
					caps[capability.Vision] = true
				}
				return true
			})
		}
		if outputs := item.Get("architecture.output_modalities"); outputs.IsArray() {
			outputs.ForEach(func(_, m gjson.Result) bool {
				if m.Type == gjson.String && m.Str == "image" {
					caps[capability.ImageGeneration] = true
				}
				return true
			})
		}

		if len(caps) > 0 {
			models[id.Str] = caps
		}
		return true
	})

	return models
}

// persist writes the normalized map to disk, creating parent directories as
// needed and overwriting any prior file.
func (ix *Index) persist(models map[string]map[capability.Capability]bool) error {
	out := make(map[string]map[string]bool, len(models))
	for id, caps := range models {
		m := make(map[string]bool, len(caps))
		for c, v := range caps {
			m[string(c)] = v
		}
		out[id] = m
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return lockfile.Write(ix.path, data)
}
