package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Backend persists whole slot values. Load returns nil data, not an error,
// for a slot that has never been written.
type Backend interface {
	Load(slot string) ([]byte, error)
	Save(slot string, data []byte) error
}

// FileBackend keeps each slot as a JSON file in a directory
type FileBackend struct {
	fs  afero.Fs
	dir string
}

// NewFileBackend creates a file backend rooted at dir on fs
func NewFileBackend(fs afero.Fs, dir string) *FileBackend {
	return &FileBackend{fs: fs, dir: dir}
}

// Path returns the file a slot is stored in
func (b *FileBackend) Path(slot string) string {
	return filepath.Join(b.dir, filepath.Base(slot)+".json")
}

// Load reads a slot file
func (b *FileBackend) Load(slot string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.Path(slot))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", slot, err)
	}
	return data, nil
}

// Save writes a slot file through a temporary file and rename
func (b *FileBackend) Save(slot string, data []byte) error {
	if err := b.fs.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("failed to create slot directory: %w", err)
	}

	path := b.Path(slot)
	tmp := path + ".tmp"
	if err := afero.WriteFile(b.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", slot, err)
	}
	if err := b.fs.Rename(tmp, path); err != nil {
		b.fs.Remove(tmp)
		return fmt.Errorf("failed to replace slot %q: %w", slot, err)
	}
	return nil
}
