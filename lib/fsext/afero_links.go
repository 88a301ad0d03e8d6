// Package fsext wraps the afero file system so commands can run against the
// real disk or an in-memory file system in tests.
package fsext

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Fs represents a file system
type Fs = afero.Fs

// NewMemMapFs returns a Fs that is in memory
func NewMemMapFs() Fs {
	return afero.NewMemMapFs()
}

// NewOsFs returns a Fs backed by the OS file system
func NewOsFs() Fs {
	return afero.NewOsFs()
}

// WriteFile writes the provided data to the provided fs in the provided filename
func WriteFile(fs Fs, filename string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(fs, filename, data, perm)
}

// ReadFile reads the whole file from the filesystem
func ReadFile(fs Fs, filename string) ([]byte, error) {
	return afero.ReadFile(fs, filename)
}

// ReadDir reads the info for each file in the provided dirname, sorted by name
func ReadDir(fs Fs, dirname string) ([]fs.FileInfo, error) {
	return afero.ReadDir(fs, dirname)
}

// Exists checks if the provided path exists on the filesystem
func Exists(fs Fs, path string) (bool, error) {
	return afero.Exists(fs, path)
}

// IsDir checks if the provided path is a directory
func IsDir(fs Fs, path string) (bool, error) {
	return afero.IsDir(fs, path)
}

// WriteNewFile writes data to filename, creating its parent directories. Unless
// overwrite is set, an existing file is left alone and an error wrapping
// os.ErrExist is returned.
func WriteNewFile(fs Fs, filename string, data []byte, overwrite bool) error {
	if !overwrite {
		exists, err := Exists(fs, filename)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s: %w", filename, os.ErrExist)
		}
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return WriteFile(fs, filename, data, 0o644)
}
