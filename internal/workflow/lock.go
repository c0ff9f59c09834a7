package workflow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"setprep/internal/services"
	"setprep/internal/textutil"
)

// targetLock guards a target folder against concurrent runs.
type targetLock struct {
	path string
	lock *flock.Flock
}

func lockPathFor(stateDir, target string) string {
	name := textutil.SanitizeFileName(filepath.Clean(target))
	if name == "" {
		name = "target"
	}
	return filepath.Join(stateDir, "locks", name+".lock")
}

func acquireTargetLock(stateDir, target string) (*targetLock, error) {
	path := lockPathFor(stateDir, target)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "lock target",
			"another setprep run is already preparing "+target, nil)
	}
	return &targetLock{path: path, lock: l}, nil
}

func (l *targetLock) release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
