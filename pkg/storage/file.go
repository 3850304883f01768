package storage

import (
	"encoding/base32"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileAdapter persists each key as one file under a base directory. Writes go
// through a temp file and rename so a crash never leaves a half-written
// snapshot behind.
type FileAdapter struct {
	mu  sync.Mutex
	dir string
}

// NewFileAdapter creates the base directory if needed
func NewFileAdapter(dir string) (*FileAdapter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileAdapter{dir: dir}, nil
}

func (a *FileAdapter) GetItem(key string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := os.ReadFile(a.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (a *FileAdapter) SetItem(key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (a *FileAdapter) RemoveItem(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := os.Remove(a.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// path encodes the key so arbitrary storage keys map to safe file names
func (a *FileAdapter) path(key string) string {
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(key))
	return filepath.Join(a.dir, strings.ToLower(encoded)+".json")
}
