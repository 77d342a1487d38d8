// Package instance keeps a single shell window per user.
package instance

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gitlab.com/tozd/go/errors"
)

// ErrAlreadyRunning is returned when another shell holds the lock.
var ErrAlreadyRunning = errors.Base("audioshell is already running")

const lockName = "audioshell.lock"

// Lock is a held single-instance lock.
type Lock struct {
	lock *flock.Flock
}

// Acquire takes the lock file in dir without blocking.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("ensure lock directory: %w", err)
	}
	fl := flock.New(filepath.Join(dir, lockName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.WithStack(ErrAlreadyRunning)
	}
	return &Lock{lock: fl}, nil
}

func (l *Lock) Path() string {
	return l.lock.Path()
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return errors.Errorf("release lock: %w", err)
	}
	return nil
}
