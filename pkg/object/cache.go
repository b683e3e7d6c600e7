package object

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of decoded objects a Store keeps in memory.
const DefaultCacheSize = 256

type cachedObject struct {
	objType ObjectType
	data    []byte
}

// objectCache holds recently read payloads. Objects never change once
// written, so entries are never invalidated.
type objectCache struct {
	entries *lru.Cache
}

func newObjectCache(size int) (*objectCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &objectCache{entries: entries}, nil
}

func (c *objectCache) get(h Hash) (cachedObject, bool) {
	if c == nil {
		return cachedObject{}, false
	}
	v, ok := c.entries.Get(h)
	if !ok {
		return cachedObject{}, false
	}
	return v.(cachedObject), true
}

func (c *objectCache) add(h Hash, objType ObjectType, data []byte) {
	if c == nil {
		return
	}
	c.entries.Add(h, cachedObject{objType: objType, data: data})
}
