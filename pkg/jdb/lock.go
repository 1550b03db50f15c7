package jdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const lockRetryInterval = 100 * time.Millisecond

// lockDir takes an exclusive flock on dir and returns the function
// releasing it. It polls until the lock is free or ctx is done.
func lockDir(ctx context.Context, dir string) (func() error, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for locking: %w", dir, err)
	}

	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) {
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", dir, err)
		}

		jdbLog.WithField("dir", dir).Debug("waiting for database lock")
		select {
		case <-ctx.Done():
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", dir, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}

	unlock := func() error {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return unlock, nil
}
