package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/renameio"
)

// Backend is the persistent keyspace an object Store writes encoded objects
// into. Keys are object hashes; values are opaque stored bytes.
type Backend interface {
	Has(h Hash) bool
	// Get returns ErrNotFound when no value is stored under h.
	Get(h Hash) ([]byte, error)
	// Put stores data under h. Callers guarantee h is the content hash, so
	// implementations may skip the write when h already exists.
	Put(h Hash, data []byte) error
	// List returns the stored hashes beginning with prefix, sorted.
	List(prefix string) ([]Hash, error)
}

// FileBackend stores objects as files with a 2-character fan-out directory
// layout: objects/ab/cdef0123...
type FileBackend struct {
	root string
}

// NewFileBackend creates a FileBackend rooted at the given metadata
// directory. The objects/ subdirectory is created lazily on first write.
func NewFileBackend(root string) *FileBackend {
	return &FileBackend{root: root}
}

func (b *FileBackend) objectsDir() string {
	return filepath.Join(b.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (b *FileBackend) objectPath(h Hash) string {
	return filepath.Join(b.objectsDir(), string(h[:2]), string(h[2:]))
}

func (b *FileBackend) Has(h Hash) bool {
	if !IsHash(string(h)) {
		return false
	}
	_, err := os.Stat(b.objectPath(h))
	return err == nil
}

func (b *FileBackend) Get(h Hash) ([]byte, error) {
	if !IsHash(string(h)) {
		return nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
	}
	raw, err := os.ReadFile(b.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return raw, nil
}

// Put writes data atomically: a temp file in the fan-out directory is
// synced and renamed into place.
func (b *FileBackend) Put(h Hash, data []byte) error {
	if b.Has(h) {
		return nil
	}
	dir := filepath.Join(b.objectsDir(), string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}
	if err := renameio.WriteFile(b.objectPath(h), data, 0o644); err != nil {
		return fmt.Errorf("object write %s: %w", h, err)
	}
	return nil
}

func (b *FileBackend) List(prefix string) ([]Hash, error) {
	var dirs []string
	if len(prefix) >= 2 {
		dirs = []string{prefix[:2]}
	} else {
		entries, err := os.ReadDir(b.objectsDir())
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("object list: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() && len(e.Name()) == 2 && strings.HasPrefix(e.Name(), prefix) {
				dirs = append(dirs, e.Name())
			}
		}
	}

	var out []Hash
	for _, d := range dirs {
		entries, err := os.ReadDir(filepath.Join(b.objectsDir(), d))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("object list %s: %w", d, err)
		}
		for _, e := range entries {
			full := d + e.Name()
			if e.IsDir() || !IsHash(full) || !strings.HasPrefix(full, prefix) {
				continue
			}
			out = append(out, Hash(full))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// MemoryBackend keeps objects in a map. Independent instances share nothing,
// which makes it suitable for tests and throwaway repositories.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[Hash][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[Hash][]byte)}
}

func (b *MemoryBackend) Has(h Hash) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[h]
	return ok
}

func (b *MemoryBackend) Get(h Hash) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.objects[h]
	if !ok {
		return nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (b *MemoryBackend) Put(h Hash, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[h]; ok {
		return nil
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	b.objects[h] = stored
	return nil
}

func (b *MemoryBackend) List(prefix string) ([]Hash, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Hash
	for h := range b.objects {
		if strings.HasPrefix(string(h), prefix) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
