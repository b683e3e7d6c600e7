package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/renameio"
	"github.com/odvcencio/gitox/pkg/object"
	"github.com/sirupsen/logrus"
)

// ErrUnknownReference is returned when a name maps to no object.
var ErrUnknownReference = errors.New("unknown reference")

// HeadRef names the current commit.
const HeadRef = "HEAD"

// RefStore is the mutable keyspace mapping reference names (HEAD,
// refs/tags/v1) to object hashes. It is kept apart from the write-once
// object store.
type RefStore interface {
	// Get returns ErrUnknownReference when name is not set.
	Get(name string) (object.Hash, error)
	Set(name string, h object.Hash) error
	// List returns refs under refs/<prefix>, keyed relative to refs/.
	List(prefix string) (map[string]object.Hash, error)
}

// FileRefStore keeps one file per reference under the metadata directory:
// .gitox/HEAD, .gitox/refs/tags/<name>.
type FileRefStore struct {
	dir string
}

// NewFileRefStore returns a RefStore rooted at the metadata directory.
func NewFileRefStore(gitoxDir string) *FileRefStore {
	return &FileRefStore{dir: gitoxDir}
}

func (s *FileRefStore) Get(name string) (object.Hash, error) {
	refPath := filepath.Join(s.dir, filepath.FromSlash(name))
	// refs/tags itself is a directory, not a ref.
	if info, err := os.Stat(refPath); err == nil && info.IsDir() {
		return "", fmt.Errorf("resolve ref %q: %w", name, ErrUnknownReference)
	}
	data, err := os.ReadFile(refPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("resolve ref %q: %w", name, ErrUnknownReference)
		}
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// Set writes the ref with temp file + rename so readers never observe a
// partially written hash.
func (s *FileRefStore) Set(name string, h object.Hash) error {
	refPath := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}
	if err := renameio.WriteFile(refPath, []byte(string(h)+"\n"), 0o644); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	return nil
}

func (s *FileRefStore) List(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(s.dir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		// Skip renameio temp files left behind by an interrupted write.
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// MemoryRefStore keeps references in a map.
type MemoryRefStore struct {
	mu   sync.RWMutex
	refs map[string]object.Hash
}

// NewMemoryRefStore returns an empty in-memory RefStore.
func NewMemoryRefStore() *MemoryRefStore {
	return &MemoryRefStore{refs: make(map[string]object.Hash)}
}

func (s *MemoryRefStore) Get(name string) (object.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.refs[name]
	if !ok {
		return "", fmt.Errorf("resolve ref %q: %w", name, ErrUnknownReference)
	}
	return h, nil
}

func (s *MemoryRefStore) Set(name string, h object.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[name] = h
	return nil
}

func (s *MemoryRefStore) List(prefix string) (map[string]object.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := "refs/"
	if p := strings.Trim(prefix, "/"); p != "" {
		want += p + "/"
	}
	out := make(map[string]object.Hash)
	for name, h := range s.refs {
		if strings.HasPrefix(name, want) {
			out[strings.TrimPrefix(name, "refs/")] = h
		}
	}
	return out, nil
}

// Head returns the commit HEAD points at, or "" before the first commit.
func (r *Repo) Head() (object.Hash, error) {
	h, err := r.Refs.Get(HeadRef)
	if errors.Is(err, ErrUnknownReference) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	return h, nil
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. The name as given ("HEAD", "refs/tags/v1").
//  2. "refs/<name>".
//  3. "refs/tags/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	for _, candidate := range []string{name, "refs/" + name, "refs/tags/" + name} {
		if validateRefName(candidate) != nil {
			continue
		}
		h, err := r.Refs.Get(candidate)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, ErrUnknownReference) {
			return "", err
		}
	}
	return "", fmt.Errorf("resolve ref %q: %w", name, ErrUnknownReference)
}

// UpdateRef points name at h, creating the ref if needed. The target must
// already be in the object store: a ref never names an unwritten object.
// HEAD additionally only accepts commits.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	if !object.IsHash(string(h)) {
		return fmt.Errorf("update ref %q: invalid hash %q", name, h)
	}
	if !r.Store.Has(h) {
		return fmt.Errorf("update ref %q: %s: %w", name, h, object.ErrNotFound)
	}
	// HEAD is the parent of the next commit, so it must name a commit.
	if name == HeadRef {
		if _, err := r.Store.ReadCommit(h); err != nil {
			return fmt.Errorf("update ref %q: %w", name, err)
		}
	}
	if err := r.Refs.Set(name, h); err != nil {
		return err
	}
	r.Logger().WithFields(logrus.Fields{"ref": name, "oid": h}).Debug("ref updated")
	return nil
}

// ListRefs lists references under refs/<prefix>, keyed relative to refs/
// (e.g. "tags/v1").
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	return r.Refs.List(prefix)
}

// RefNames returns the names from ListRefs sorted alphabetically.
func RefNames(refs map[string]object.Hash) []string {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateRefName(name string) error {
	if name == HeadRef {
		return nil
	}
	if !strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("invalid ref name %q", name)
	}
	for _, part := range strings.Split(strings.TrimPrefix(name, "refs/"), "/") {
		if part == "" || part == "." || part == ".." || strings.HasPrefix(part, ".") {
			return fmt.Errorf("invalid ref name %q", name)
		}
		if strings.ContainsAny(part, " \t\n\r\\\x00") {
			return fmt.Errorf("invalid ref name %q", name)
		}
	}
	return nil
}
