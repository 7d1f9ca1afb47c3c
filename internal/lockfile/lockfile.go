// Package lockfile reads and writes store files under advisory flock locks
// so that concurrent processes sharing the same file never observe a torn
// JSON document and concurrent writers serialize.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Read returns the file contents, holding a shared lock for the duration of
// the read. A missing file is reported via the os.Stat error (fs.ErrNotExist)
// before any lock is taken, so probing never creates the file.
func Read(path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	fl := flock.New(path)
	if err := fl.RLock(); err != nil {
		return nil, fmt.Errorf("lock %s for reading: %w", path, err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces the file contents, creating parent directories on demand
// and holding an exclusive lock while the document is swapped.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lock %s for writing: %w", path, err)
	}
	defer func() { _ = fl.Unlock() }()

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
