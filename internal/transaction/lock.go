// Package transaction serializes mutating anvilup operations.
//
// A single advisory file lock below the anvilup root guards installs,
// removals and default switches, so concurrent anvilup processes cannot
// interleave writes to the toolchain store or settings.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	// LockFileName is the lock file below the anvilup root.
	LockFileName = "anvilup.lock"

	// acquireTimeout bounds how long an operation waits for the lock.
	acquireTimeout = 30 * time.Second

	// retryInterval is the poll interval while waiting for the lock.
	retryInterval = 250 * time.Millisecond
)

// ErrLockHeld is returned when another anvilup process holds the lock for
// longer than the acquire timeout.
var ErrLockHeld = errors.New("another anvilup operation is in progress")

// Lock is a held operation lock.
type Lock struct {
	flock *flock.Flock
	path  string
}

// Acquire takes the operation lock below root, waiting up to the acquire
// timeout for a concurrent operation to finish.
func Acquire(ctx context.Context, root string) (*Lock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(root, LockFileName)
	fl := flock.New(path)

	lockCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(lockCtx, retryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLockHeld
	}

	// Lock metadata is diagnostic only; the flock is what excludes.
	meta := fmt.Sprintf("id=%s\npid=%d\ntime=%s\n",
		uuid.New().String(), os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	_ = os.WriteFile(path, []byte(meta), 0o644)

	return &Lock{flock: fl, path: path}, nil
}

// Release releases the lock. The lock file stays behind; flock semantics
// make a leftover file harmless.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	l.flock = nil
	return nil
}
