//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory flock on path and returns its release func. The
// lock lives on a sidecar file because the store file itself is replaced by
// rename on every write.
func lockFile(path string, exclusive bool) (func(), error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store lock: %w", err)
	}

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	if err := unix.Flock(int(fh.Fd()), how); err != nil {
		fh.Close()
		return nil, fmt.Errorf("failed to lock store: %w", err)
	}

	return func() {
		_ = unix.Flock(int(fh.Fd()), unix.LOCK_UN)
		fh.Close()
	}, nil
}
