package filelock

import (
	"os"
	"syscall"

	"github.com/Iron-Ham/rudder/internal/errors"
)

// lockSuffix is appended to the protected file's path to form the lock
// file. Locking a sibling rather than the data file itself keeps the lock
// independent of the data file being created, rotated, or read.
const lockSuffix = ".lock"

// FileLock provides cross-process mutual exclusion using flock(2).
// It serializes appends to a shared data file when more than one process
// may write to it.
type FileLock struct {
	path string
	file *os.File
}

// New creates a FileLock protecting the given data file. The lock file is
// the data file's path with ".lock" appended and is created on first Lock.
func New(dataPath string) *FileLock {
	return &FileLock{
		path: dataPath + lockSuffix,
	}
}

// Path returns the lock file's path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires an exclusive lock, blocking until available.
func (fl *FileLock) Lock() error {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return errors.Wrap(err, "open lock file")
	}
	fl.file = f

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		fl.file = nil
		return errors.Wrap(err, "flock")
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another process holds it.
func (fl *FileLock) TryLock() (bool, error) {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return false, errors.Wrap(err, "open lock file")
	}

	err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return false, nil
		}
		return false, errors.Wrap(err, "flock")
	}

	fl.file = f
	return true, nil
}

// Unlock releases the lock and closes the lock file. Unlocking a lock that
// was never acquired is a no-op.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	if err := syscall.Flock(int(fl.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = fl.file.Close()
		fl.file = nil
		return errors.Wrap(err, "funlock")
	}

	err := fl.file.Close()
	fl.file = nil
	return err
}
