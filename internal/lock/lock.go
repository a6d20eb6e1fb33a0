// Package lock provides the file lock that keeps two clmigrate runs from
// working on the same job at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockHeld is returned when another process holds the lock.
var ErrLockHeld = errors.New("lock is held by another process")

// Common wait values for lock acquisition.
const (
	// TimeoutImmediate fails at once if the lock is taken.
	TimeoutImmediate = 0 * time.Second

	// TimeoutShort is suitable for fast-failing duplicate run detection.
	TimeoutShort = time.Second

	retryDelay = 100 * time.Millisecond
)

// RunLock is an exclusive lock on a file.
type RunLock struct {
	fl *flock.Flock
}

// NewRunLock creates a lock on path. The lock is not acquired until
// Acquire is called.
func NewRunLock(path string) *RunLock {
	return &RunLock{fl: flock.New(path)}
}

// NewJobLock creates a lock for one job next to base, e.g.
// "clmigrate.lock" and "employers import" give "clmigrate.employers_import.lock".
func NewJobLock(base, job string) *RunLock {
	return NewRunLock(JobLockPath(base, job))
}

// JobLockPath derives the lock file for a job from the configured base path.
func JobLockPath(base, job string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, job)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".lock"
	}
	return fmt.Sprintf("%s.%s%s", stem, sanitized, ext)
}

// Acquire tries to take the lock, retrying until wait has elapsed.
// It returns ErrLockHeld when the lock is still taken afterwards.
func (l *RunLock) Acquire(ctx context.Context, wait time.Duration) error {
	if l.IsHeld() {
		return nil
	}

	var (
		ok  bool
		err error
	)
	if wait <= 0 {
		ok, err = l.fl.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		ok, err = l.fl.TryLockContext(waitCtx, retryDelay)
		if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLockHeld, l.Path())
	}
	return nil
}

// Release releases the lock. Releasing a lock that is not held is a no-op.
func (l *RunLock) Release() error {
	if !l.IsHeld() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.Path(), err)
	}
	return nil
}

// IsHeld reports whether this instance holds the lock.
func (l *RunLock) IsHeld() bool {
	return l.fl.Locked()
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.fl.Path()
}

// WithLock runs fn while holding the lock. The lock is released however fn
// returns, including by panic.
func (l *RunLock) WithLock(ctx context.Context, wait time.Duration, fn func() error) error {
	if err := l.Acquire(ctx, wait); err != nil {
		return err
	}
	defer func() {
		_ = l.Release()
	}()
	return fn()
}
