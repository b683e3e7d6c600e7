package object

import (
	"bytes"
	"errors"
	"fmt"
)

// Store is a content-addressed object store. Objects are encoded as
// "type\0payload", addressed by the SHA-1 of that encoding and written once.
type Store struct {
	backend     Backend
	compression Compression
	cache       *objectCache
}

// StoreOption configures a Store.
type StoreOption func(*Store) error

// WithCompression sets how newly written objects are stored. Reads accept
// both forms regardless of this setting.
func WithCompression(c Compression) StoreOption {
	return func(s *Store) error {
		if _, err := ParseCompression(string(c)); err != nil {
			return err
		}
		s.compression = c
		return nil
	}
}

// WithCacheSize sets the decoded object cache size. Zero disables caching.
func WithCacheSize(n int) StoreOption {
	return func(s *Store) error {
		cache, err := newObjectCache(n)
		if err != nil {
			return fmt.Errorf("object cache: %w", err)
		}
		s.cache = cache
		return nil
	}
}

// NewStore creates a Store backed by files under root (the metadata
// directory). The objects/ subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) (*Store, error) {
	return NewStoreWithBackend(NewFileBackend(root), opts...)
}

// NewMemoryStore creates a Store whose objects live only in memory.
func NewMemoryStore(opts ...StoreOption) (*Store, error) {
	return NewStoreWithBackend(NewMemoryBackend(), opts...)
}

// NewStoreWithBackend creates a Store on top of an arbitrary Backend.
func NewStoreWithBackend(b Backend, opts ...StoreOption) (*Store, error) {
	s := &Store{backend: b, compression: CompressionNone}
	cache, err := newObjectCache(DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("object cache: %w", err)
	}
	s.cache = cache
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	return s.backend.Has(h)
}

// Write stores an object and returns its content hash. Writing an object
// that already exists is a no-op.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	if _, err := ParseObjectType(string(objType)); err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	raw := Encode(objType, data)
	h := HashBytes(raw)

	// Fast path: already exists.
	if s.backend.Has(h) {
		return h, nil
	}

	stored := raw
	if s.compression == CompressionZstd {
		compressed, err := compressZstd(raw)
		if err != nil {
			return "", fmt.Errorf("object write compress: %w", err)
		}
		stored = compressed
	}
	if err := s.backend.Put(h, stored); err != nil {
		return "", err
	}
	return h, nil
}

// Read retrieves an object by hash, returning its type and raw payload.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if c, ok := s.cache.get(h); ok {
		return c.objType, bytes.Clone(c.data), nil
	}

	raw, err := s.readEncoded(h)
	if err != nil {
		return "", nil, err
	}
	objType, content, err := splitEncoded(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	s.cache.add(h, objType, bytes.Clone(content))
	return objType, content, nil
}

// readEncoded returns the uncompressed "type\0payload" bytes stored for h.
func (s *Store) readEncoded(h Hash) ([]byte, error) {
	raw, err := s.backend.Get(h)
	if err != nil {
		return nil, err
	}
	if isZstdFrame(raw) {
		raw, err = decompressZstd(raw)
		if err != nil {
			return nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorruptObject, err)
		}
	}
	return raw, nil
}

// splitEncoded splits at the first NUL: the type tag precedes it and the
// payload, which may itself contain NUL bytes, follows it.
func splitEncoded(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: invalid format (no NUL)", ErrCorruptObject)
	}
	objType, err := ParseObjectType(string(raw[:nulIdx]))
	if err != nil {
		return "", nil, err
	}
	return objType, raw[nulIdx+1:], nil
}

// Get reads and decodes an object. When expected is non-empty and the stored
// type differs, Get fails with a *TypeMismatchError.
func (s *Store) Get(h Hash, expected ObjectType) (Object, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if expected != "" && objType != expected {
		return nil, &TypeMismatchError{Hash: h, Got: objType, Want: expected}
	}
	obj, err := Unmarshal(objType, data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return obj, nil
}

// Verify re-hashes the stored bytes of h and checks that they still decode.
func (s *Store) Verify(h Hash) error {
	raw, err := s.readEncoded(h)
	if err != nil {
		return err
	}
	if got := HashBytes(raw); got != h {
		return fmt.Errorf("object %s: %w: content hashes to %s", h, ErrCorruptObject, got)
	}
	objType, data, err := splitEncoded(raw)
	if err != nil {
		return fmt.Errorf("object %s: %w", h, err)
	}
	if _, err := Unmarshal(objType, data); err != nil {
		return fmt.Errorf("object %s: %w", h, err)
	}
	return nil
}

// ResolvePrefix expands an abbreviated hash to the single stored object it
// identifies.
func (s *Store) ResolvePrefix(prefix string) (Hash, error) {
	if !IsHashPrefix(prefix) {
		return "", fmt.Errorf("resolve prefix %q: %w", prefix, ErrNotFound)
	}
	matches, err := s.backend.List(prefix)
	if err != nil {
		return "", fmt.Errorf("resolve prefix %q: %w", prefix, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("resolve prefix %q: %w", prefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("resolve prefix %q: %w (%d candidates)", prefix, ErrAmbiguousPrefix, len(matches))
	}
}

// All returns every stored object hash, sorted.
func (s *Store) All() ([]Hash, error) {
	return s.backend.List("")
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	obj, err := s.Get(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return obj.(*Blob), nil
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return "", err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	obj, err := s.Get(h, TypeTree)
	if err != nil {
		return nil, err
	}
	return obj.(*TreeObj), nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	obj, err := s.Get(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	return obj.(*CommitObj), nil
}

// IsNotFound reports whether err means a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
