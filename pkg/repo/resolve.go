package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/gitox/pkg/object"
)

// ResolveOID maps user input to an object hash. It accepts, in order: "@"
// as an alias for HEAD, a full hash of a stored object, a ref name (see
// ResolveRef), and an unambiguous hash prefix of at least four characters.
func (r *Repo) ResolveOID(nameOrOID string) (object.Hash, error) {
	name := strings.TrimSpace(nameOrOID)
	if name == "@" {
		name = HeadRef
	}
	if name == "" {
		return "", fmt.Errorf("resolve: empty name: %w", ErrUnknownReference)
	}

	if object.IsHash(name) && r.Store.Has(object.Hash(name)) {
		return object.Hash(name), nil
	}

	h, err := r.ResolveRef(name)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrUnknownReference) {
		return "", err
	}

	if object.IsHashPrefix(name) {
		h, err := r.Store.ResolvePrefix(name)
		if err == nil {
			return h, nil
		}
		if errors.Is(err, object.ErrAmbiguousPrefix) {
			return "", err
		}
	}
	return "", fmt.Errorf("resolve %q: %w", nameOrOID, ErrUnknownReference)
}
