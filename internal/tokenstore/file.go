// ABOUTME: File-based token backend storing one file per key
// ABOUTME: Follows the ~/.config/<app>/token convention with 0600 permissions

package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each key in its own file under Dir.
type FileBackend struct {
	Dir string
}

// NewFileBackend creates a FileBackend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating token directory: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

// DefaultDir returns $XDG_CONFIG_HOME/principal-session, falling back to
// ~/.config/principal-session.
func DefaultDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "principal-session"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "principal-session")
}

// Load reads the file for key.
func (f *FileBackend) Load(ctx context.Context, key string) (string, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	// Save appends exactly one newline
	value := strings.TrimSuffix(string(data), "\n")
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Save writes value to the file for key, replacing it atomically.
func (f *FileBackend) Save(ctx context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.Dir, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting token file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}

// Delete removes the file for key.
func (f *FileBackend) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *FileBackend) Close() error {
	return nil
}

// path maps a key to a file name, keeping it inside Dir.
func (f *FileBackend) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", ".").Replace(key)
	return filepath.Join(f.Dir, name)
}
