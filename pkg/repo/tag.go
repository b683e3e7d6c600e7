package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gitox/pkg/object"
)

// ErrTagExists is returned by CreateTag when the name is taken and force is
// not set.
var ErrTagExists = errors.New("tag already exists")

// CreateTag points refs/tags/<name> at target. An existing tag is only
// replaced when force is set.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if strings.TrimSpace(string(target)) == "" {
		return fmt.Errorf("create tag: target hash is required")
	}

	refName := "refs/tags/" + name
	if !force {
		_, err := r.Refs.Get(refName)
		if err == nil {
			return fmt.Errorf("create tag %q: %w", name, ErrTagExists)
		}
		if !errors.Is(err, ErrUnknownReference) {
			return fmt.Errorf("create tag: %w", err)
		}
	}
	if err := r.UpdateRef(refName, target); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// ResolveTag resolves a tag name under refs/tags/.
func (r *Repo) ResolveTag(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	return r.Refs.Get("refs/tags/" + name)
}

// ListTags lists tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	tags, err := r.ListTagsWithHashes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListTagsWithHashes returns tag name -> target hash.
func (r *Repo) ListTagsWithHashes() (map[string]object.Hash, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	out := make(map[string]object.Hash, len(refs))
	for full, hash := range refs {
		out[strings.TrimPrefix(full, "tags/")] = hash
	}
	return out, nil
}

func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	if strings.Contains(name, "..") || name == "@" {
		return fmt.Errorf("invalid tag name %q", name)
	}
	if strings.ContainsAny(name, " \t\n\r\\\x00") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return validateRefName("refs/tags/" + name)
}
