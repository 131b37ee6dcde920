package util

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock is an advisory, whole-process exclusive lock on the dependency
// directory. This engine assumes a single synchronous process drives a
// given dependency directory at a time (concurrent build/remove/update
// runs could interleave PKGDB writes and dependency-file edits); Lock
// makes that assumption enforceable instead of merely documented.
type Lock struct {
	f *os.File
}

// AcquireLock takes an exclusive, non-blocking flock on
// "<depDir>/.lock", creating the file if necessary. It fails immediately
// (rather than waiting) if another process already holds it.
func AcquireLock(depDir string) (*Lock, error) {
	path := depDir + "/.lock"
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s is locked by another sbopkg-dep2sqf process: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	return l.f.Close()
}
