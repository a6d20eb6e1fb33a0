package lock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLockPath(t *testing.T) {
	tests := []struct {
		base, job, expected string
	}{
		{"clmigrate.lock", "employers import", "clmigrate.employers_import.lock"},
		{"/var/run/clmigrate.lock", "jobseekers-export", "/var/run/clmigrate.jobseekers-export.lock"},
		{"run", "employers/export", "run.employers_export.lock"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, JobLockPath(tt.base, tt.job))
	}
}

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clmigrate.lock")
	l := NewRunLock(path)

	require.NoError(t, l.Acquire(context.Background(), TimeoutImmediate))
	assert.True(t, l.IsHeld())
	assert.Equal(t, path, l.Path())

	// re-acquiring a held lock is a no-op
	require.NoError(t, l.Acquire(context.Background(), TimeoutImmediate))

	require.NoError(t, l.Release())
	assert.False(t, l.IsHeld())
	require.NoError(t, l.Release())
}

func TestSecondHolderIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clmigrate.lock")
	first := NewRunLock(path)
	second := NewRunLock(path)

	require.NoError(t, first.Acquire(context.Background(), TimeoutImmediate))
	defer first.Release()

	err := second.Acquire(context.Background(), TimeoutImmediate)
	assert.True(t, errors.Is(err, ErrLockHeld), "got %v", err)

	start := time.Now()
	err = second.Acquire(context.Background(), 300*time.Millisecond)
	assert.True(t, errors.Is(err, ErrLockHeld), "got %v", err)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestAcquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clmigrate.lock")
	first := NewRunLock(path)
	second := NewRunLock(path)

	require.NoError(t, first.Acquire(context.Background(), TimeoutImmediate))
	require.NoError(t, first.Release())

	require.NoError(t, second.Acquire(context.Background(), TimeoutShort))
	require.NoError(t, second.Release())
}

func TestWithLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clmigrate.lock")
	l := NewJobLock(path, "employers import")

	called := false
	err := l.WithLock(context.Background(), TimeoutImmediate, func() error {
		called = true
		assert.True(t, l.IsHeld())
		return errors.New("job failed")
	})
	assert.EqualError(t, err, "job failed")
	assert.True(t, called)
	assert.False(t, l.IsHeld())
}

func TestWithLockReleasesOnPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clmigrate.lock")
	l := NewRunLock(path)

	assert.Panics(t, func() {
		_ = l.WithLock(context.Background(), TimeoutImmediate, func() error {
			panic("boom")
		})
	})
	assert.False(t, l.IsHeld())
}

func TestWithLockHeldElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clmigrate.lock")
	holder := NewRunLock(path)
	require.NoError(t, holder.Acquire(context.Background(), TimeoutImmediate))
	defer holder.Release()

	called := false
	err := NewRunLock(path).WithLock(context.Background(), TimeoutImmediate, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.False(t, called)
}
