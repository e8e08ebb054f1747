package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// workspaceLock serializes stage runs against one state directory.
type workspaceLock struct {
	path string
	lock *flock.Flock
}

func newWorkspaceLock(path string) *workspaceLock {
	return &workspaceLock{path: path, lock: flock.New(path)}
}

// acquire takes the lock without blocking. A held lock fails with ErrLocked.
func (w *workspaceLock) acquire() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("ensure lock directory: %w", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", w.path, err)
	}
	if !ok {
		return fmt.Errorf("%w: another skiprice run holds %s", ErrLocked, w.path)
	}
	return nil
}

func (w *workspaceLock) release() error {
	return w.lock.Unlock()
}
