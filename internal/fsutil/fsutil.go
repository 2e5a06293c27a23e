// Package fsutil holds the locked read and atomic write used by every file
// backed store.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

func lockFor(path string) *flock.Flock {
	return flock.New(path + ".lock")
}

// ReadLocked reads path under a shared lock. A missing file returns
// os.ErrNotExist unwrapped so callers can test it with errors.Is, and leaves
// no directory or lock file behind.
func ReadLocked(path string) ([]byte, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, os.ErrNotExist
	}
	fl := lockFor(path)
	if err := fl.RLock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = fl.Unlock() }()

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, os.ErrNotExist
	}
	return b, err
}

// WriteAtomic replaces path with data under an exclusive lock via tmp+rename,
// so readers never observe a partial file.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	fl := lockFor(path)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = fl.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Remove deletes path and its lock file. Missing files are not an error.
func Remove(path string) error {
	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	fl := lockFor(path)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	err := os.Remove(path)
	_ = fl.Unlock()
	_ = os.Remove(path + ".lock")
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
