package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLockPath returns the lock file path that sits next to the store database.
func RunLockPath(storePath string) string {
	if storePath == "" || storePath == ":memory:" {
		return filepath.Join(os.TempDir(), "wpx.lock")
	}
	return storePath + ".lock"
}

// AcquireRunLock takes the exclusive migration lock at path without blocking.
//
// Only one process may run batches against a ledger at a time; a held lock yields [ErrRunInProgress].
// Callers release with Unlock.
func AcquireRunLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: lock held at %s", ErrRunInProgress, path)
	}
	return lock, nil
}
