// Package filelock provides a cooperative lock backed by the existence of a
// marker file. It guards a critical section against other callers that use
// the same lock path and protocol, within one process or across processes
// sharing the filesystem. It is not enforced against arbitrary writers.
//
// A lock file left behind by a crashed holder is cleared once it is older
// than the stale threshold. Clearing renames the file to a unique name
// before deleting it, so only one waiter wins the removal; a waiter that
// stats an old file and loses the race to a fresh holder can still remove
// the fresh file. That window is accepted for a single-admin workload.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chero-kobuleti/menu/pkg/types"
)

// Guard is the lock for one named resource. The zero value is not usable;
// construct with New. A Guard is safe for concurrent use and is not
// reentrant: calling Do from inside fn waits for itself until the timeout.
type Guard struct {
	path       string
	timeout    time.Duration
	staleAfter time.Duration
	retry      time.Duration
	log        *zap.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithTimeout bounds the total time Do waits for the lock.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) { g.timeout = d }
}

// WithStaleAfter sets the age after which an existing lock file is treated
// as abandoned.
func WithStaleAfter(d time.Duration) Option {
	return func(g *Guard) { g.staleAfter = d }
}

// WithRetryInterval sets the sleep between acquisition attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(g *Guard) { g.retry = d }
}

// WithLogger sets the logger used for stale-lock and timeout events.
func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// New returns a Guard for the lock file at path with the default timeout
// (10s), stale threshold (30s) and retry interval (120ms).
func New(path string, opts ...Option) *Guard {
	g := &Guard{
		path:       path,
		timeout:    types.DefaultLockTimeout,
		staleAfter: types.DefaultLockStaleAfter,
		retry:      types.DefaultLockRetryInterval,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(zap.String("lock", filepath.Base(path)))
	return g
}

// Do runs fn while holding the lock. It returns an error wrapping
// types.ErrLockTimeout, without running fn, when the lock cannot be taken
// within the timeout, and ctx.Err() when ctx ends first. The lock file is
// removed after fn returns whether or not fn failed.
func (g *Guard) Do(ctx context.Context, fn func() error) (err error) {
	start := time.Now()
	if err := g.acquire(ctx, start); err != nil {
		return err
	}
	acquired := time.Now()
	lockWaitSeconds.Observe(acquired.Sub(start).Seconds())

	defer func() {
		lockHeldSeconds.Observe(time.Since(acquired).Seconds())
		if rerr := g.release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn()
}

func (g *Guard) acquire(ctx context.Context, start time.Time) error {
	for {
		f, err := os.OpenFile(g.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if cerr := f.Close(); cerr != nil {
				os.Remove(g.path)
				return fmt.Errorf("%w: closing lock %s: %w", types.ErrIO, g.path, cerr)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: creating lock %s: %w", types.ErrIO, g.path, err)
		}

		if g.clearStale() {
			continue
		}

		if waited := time.Since(start); waited > g.timeout {
			lockTimeouts.Inc()
			g.log.Warn("lock wait timed out", zap.Duration("waited", waited))
			return fmt.Errorf("%w: %s", types.ErrLockTimeout, filepath.Base(g.path))
		}

		timer := time.NewTimer(g.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// clearStale reports whether the caller should retry the create at once:
// either the lock vanished or it was stale and has been removed.
func (g *Guard) clearStale() bool {
	info, err := os.Stat(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil {
		return false
	}
	age := time.Since(info.ModTime())
	if age <= g.staleAfter {
		return false
	}

	quarantine := g.path + ".stale-" + uuid.NewString()
	if err := os.Rename(g.path, quarantine); err != nil {
		return errors.Is(err, fs.ErrNotExist)
	}
	if err := os.Remove(quarantine); err != nil && !errors.Is(err, fs.ErrNotExist) {
		g.log.Warn("removing quarantined stale lock", zap.String("file", quarantine), zap.Error(err))
	}
	staleRecoveries.Inc()
	g.log.Warn("cleared stale lock", zap.Duration("age", age))
	return true
}

func (g *Guard) release() error {
	err := os.Remove(g.path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: removing lock %s: %w", types.ErrIO, g.path, err)
}
