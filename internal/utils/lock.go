package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 50 * time.Millisecond
)

// ErrBusy is returned by TryLock while another process holds the lock.
var ErrBusy = errors.New("database is busy")

// DBLock is an advisory file lock serialising writers of a local sqlite file
// across gigscope processes. It sits next to the database as <db>.lock.
type DBLock struct {
	lock *flock.Flock
	path string
}

func NewDBLock(dbPath string) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute db path: %w", err)
	}
	return &DBLock{lock: flock.New(absPath + lockFileSuffix), path: absPath + lockFileSuffix}, nil
}

// Lock waits for the lock until ctx is done. The first failed attempt is
// logged so a blocked command does not look hung.
func (l *DBLock) Lock(ctx context.Context) error {
	err := l.TryLock()
	if !errors.Is(err, ErrBusy) {
		return err
	}

	Log.Infof("Another gigscope process holds %s, waiting...", l.path)
	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	switch {
	case err != nil:
		return fmt.Errorf("waiting for %s: %w", l.path, err)
	case !locked:
		return fmt.Errorf("waiting for %s: %w", l.path, ErrBusy)
	}
	return nil
}

// TryLock takes the lock without waiting, or fails with ErrBusy.
func (l *DBLock) TryLock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: %w", l.path, ErrBusy)
	}
	return nil
}

// Unlock releases the lock. A lock file removed underneath us counts as released.
func (l *DBLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return nil
}

// GetAbsDBPath resolves dbPath, defaulting to ~/.config/gigscope/basket.sqlite.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "gigscope", "basket.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
