package rc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Backend persists the serialized store.
type Backend interface {
	// Load returns the stored bytes, ok=false when nothing was stored yet.
	Load(path string) (data []byte, ok bool, err error)
	// Save replaces the stored bytes, keeping the previous content as a
	// backup under path + "~".
	Save(path string, data []byte) error
}

// BackupSuffix is appended to the path of the previous file on write.
const BackupSuffix = "~"

// FileBackend stores the file on the local filesystem. Missing parent
// directories are not created.
type FileBackend struct {
	Perm fs.FileMode
}

// Load implements Backend.
func (b FileBackend) Load(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rc: read %s: %w", path, err)
	}
	return data, true, nil
}

// Save implements Backend.
func (b FileBackend) Save(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+BackupSuffix); err != nil {
			return fmt.Errorf("rc: backup %s: %w", path, err)
		}
	}
	perm := b.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("rc: write %s: %w", path, err)
	}
	return nil
}

// MemoryBackend keeps files in memory, mostly for tests.
type MemoryBackend struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{files: make(map[string][]byte)}
}

// Put seeds path with data.
func (b *MemoryBackend) Put(path string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.files == nil {
		b.files = make(map[string][]byte)
	}
	b.files[path] = append([]byte(nil), data...)
}

// Load implements Backend.
func (b *MemoryBackend) Load(path string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.files[path]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Save implements Backend.
func (b *MemoryBackend) Save(path string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.files == nil {
		b.files = make(map[string][]byte)
	}
	if previous, ok := b.files[path]; ok {
		b.files[path+BackupSuffix] = previous
	}
	b.files[path] = append([]byte(nil), data...)
	return nil
}
