package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage keeps each key in its own file under a directory, created with
// owner-only permissions. This is the default backend for CLI hosts.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns a storage
// rooted at it.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("credential: storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("credential: create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("credential: invalid storage key %q", key)
	}
	return filepath.Join(f.dir, key), nil
}

// Get returns the stored value, or "" when the key has no file.
func (f *FileStorage) Get(key string) (string, error) {
	path, err := f.path(key)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("credential: read %s: %w", key, err)
	}
	return string(raw), nil
}

// Set writes the value to the key's file with owner-only permissions.
func (f *FileStorage) Set(key, value string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(value), 0o600); err != nil {
		return fmt.Errorf("credential: write %s: %w", key, err)
	}
	return nil
}

// Delete removes the key's file. A missing file is not an error.
func (f *FileStorage) Delete(key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credential: delete %s: %w", key, err)
	}
	return nil
}
