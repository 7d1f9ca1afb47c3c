package cache

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/modelcaps/capability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T, maxAge time.Duration) *Cache {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "empirical.json"), maxAge, testLogger())
}

// ========================================
// Record / Lookup Tests
// ========================================

func TestCache_RecordThenLookup(t *testing.T) {
	c := newTestCache(t, 0)

	if err := c.Record("anthropic/claude-x", capability.StructuredOutput, nil, false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	supported, ok, err := c.Lookup("anthropic/claude-x", capability.StructuredOutput, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok {
		t.Fatal("Lookup() should find the recorded entry")
	}
	if supported {
		t.Error("Lookup() = true, want false")
	}
}

func TestCache_ContextOrderIndependence(t *testing.T) {
	c := newTestCache(t, 0)

	if err := c.Record("m", capability.Reasoning, capability.Context{"a": 1, "b": 2}, true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	supported, ok, err := c.Lookup("m", capability.Reasoning, capability.Context{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || !supported {
		t.Errorf("Lookup() = (%v, %v), want (true, true)", supported, ok)
	}
}

func TestCache_EmptyContextEqualsNil(t *testing.T) {
	c := newTestCache(t, 0)

	if err := c.Record("m", capability.Vision, capability.Context{}, true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	_, ok, err := c.Lookup("m", capability.Vision, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok {
		t.Error("empty context and nil context should hit the same entry")
	}
}

func TestCache_ContextScopesEntries(t *testing.T) {
	c := newTestCache(t, 0)

	if err := c.Record("m", capability.StructuredOutput, capability.Context{"thinking": true}, false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	_, ok, err := c.Lookup("m", capability.StructuredOutput, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ok {
		t.Error("contextless lookup should not hit a contextual entry")
	}
}

// ========================================
// Expiry Tests
// ========================================

func TestCache_Expiry(t *testing.T) {
	maxAge := 100 * time.Second
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("entry aged exactly max_age is still visible", func(t *testing.T) {
		c := newTestCache(t, maxAge)
		c.now = func() time.Time { return base }
		if err := c.Record("m", capability.Batch, nil, true); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		c.now = func() time.Time { return base.Add(maxAge) }
		_, ok, err := c.Lookup("m", capability.Batch, nil)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if !ok {
			t.Error("entry recorded max_age ago should still be visible")
		}
	})

	t.Run("entry aged max_age+1 is absent", func(t *testing.T) {
		c := newTestCache(t, maxAge)
		c.now = func() time.Time { return base }
		if err := c.Record("m", capability.Batch, nil, true); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		c.now = func() time.Time { return base.Add(maxAge + time.Second) }
		_, ok, err := c.Lookup("m", capability.Batch, nil)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if ok {
			t.Error("entry recorded max_age+1 ago should read as absent")
		}
	})

	t.Run("zero max_age disables expiry", func(t *testing.T) {
		c := newTestCache(t, 0)
		c.now = func() time.Time { return base }
		if err := c.Record("m", capability.Batch, nil, true); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		c.now = func() time.Time { return base.Add(1000 * time.Hour) }
		_, ok, err := c.Lookup("m", capability.Batch, nil)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if !ok {
			t.Error("expiry should be disabled when max_age is zero")
		}
	})
}

// ========================================
// Persistence / Migration Tests
// ========================================

func TestCache_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empirical.json")

	a := New(path, 0, testLogger())
	if err := a.Record("m", capability.Streaming, nil, true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	b := New(path, 0, testLogger())
	supported, ok, err := b.Lookup("m", capability.Streaming, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || !supported {
		t.Errorf("Lookup() on fresh instance = (%v, %v), want (true, true)", supported, ok)
	}
}

func TestCache_LoadsFileOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empirical.json")
	if err := os.WriteFile(path, []byte(`{"m:vision":{"supported":true,"recorded_at":1}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(path, 0, testLogger())
	if _, err := c.Size(); err != nil {
		t.Fatalf("Size() error = %v", err)
	}

	// Rewriting the file after first load must not affect this instance.
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := c.Lookup("m", capability.Vision, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok {
		t.Error("loaded instance should not re-read the file")
	}
}

func TestCache_LegacyBooleanMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empirical.json")
	if err := os.WriteFile(path, []byte(`{"m:structured_output": true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(path, 100*time.Second, testLogger())
	supported, ok, err := c.Lookup("m", capability.StructuredOutput, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || !supported {
		t.Errorf("legacy entry should migrate to (true, true), got (%v, %v)", supported, ok)
	}
}

func TestCache_UnreadableEntryShapeIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empirical.json")
	if err := os.WriteFile(path, []byte(`{"m:vision": 5, "m:batch": "yes"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(path, 0, testLogger())
	_, ok, err := c.Lookup("m", capability.Vision, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ok {
		t.Error("entry with unrecognized value shape should read as absent")
	}

	n, err := c.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Size() = %d, want 0", n)
	}
}

func TestCache_MalformedFileResetsToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empirical.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(path, 0, testLogger())

	_, ok, err := c.Lookup("m", capability.Vision, nil)
	if err != nil {
		t.Fatalf("Lookup() should soft-recover from malformed JSON, got error %v", err)
	}
	if ok {
		t.Error("malformed file should read as empty store")
	}

	n, err := c.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Size() = %d, want 0", n)
	}
}

func TestCache_IOFaultPropagates(t *testing.T) {
	// A path that exists but cannot be read as a file is a genuine storage
	// fault, unlike a missing or malformed file, and must surface.
	c := New(t.TempDir(), 0, testLogger())

	if _, _, err := c.Lookup("m", capability.Vision, nil); err == nil {
		t.Error("Lookup() against an unreadable path should return an error")
	}
	if err := c.Record("m", capability.Vision, nil, true); err == nil {
		t.Error("Record() against an unreadable path should return an error")
	}
	if _, err := c.Size(); err == nil {
		t.Error("Size() against an unreadable path should return an error")
	}
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t, 0)

	if err := c.Record("m", capability.Vision, nil, true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	n, err := c.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", n)
	}

	_, ok, err := c.Lookup("m", capability.Vision, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ok {
		t.Error("Lookup() after Clear() should be absent")
	}
}

func TestCache_RecordOverwritesEntry(t *testing.T) {
	c := newTestCache(t, 0)

	if err := c.Record("m", capability.Vision, nil, true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := c.Record("m", capability.Vision, nil, false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	supported, ok, err := c.Lookup("m", capability.Vision, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || supported {
		t.Errorf("Lookup() = (%v, %v), want (false, true)", supported, ok)
	}

	n, err := c.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Size() = %d, want 1", n)
	}
}
