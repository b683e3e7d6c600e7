package object

import (
	"fmt"
	"sort"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by following
// commit parents, commit trees and tree entries. Unlike a restore, a
// reachability walk tolerates holes: missing objects are reported in the
// second return value instead of aborting.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, []Hash, error) {
	w, err := s.walkReachable(roots, nil)
	if err != nil {
		return nil, nil, err
	}
	return w.reachable, w.missing, nil
}

// objectRef is an edge of the object graph: from names hash and declares
// that it stores an object of type want. Roots have no from and no want.
type objectRef struct {
	from Hash
	hash Hash
	want ObjectType
}

type reachableWalk struct {
	reachable map[Hash]struct{}
	missing   []Hash
	// mistyped maps an object to the error describing an edge it declares
	// with the wrong type.
	mistyped map[Hash]error
}

// walkReachable treats hashes in leaves as terminal: they are counted as
// reachable but their references are not followed.
func (s *Store) walkReachable(roots []Hash, leaves map[Hash]error) (*reachableWalk, error) {
	roots = uniqueNormalizedHashes(roots)
	w := &reachableWalk{
		reachable: make(map[Hash]struct{}, len(roots)),
		mistyped:  make(map[Hash]error),
	}
	missing := make(map[Hash]struct{})
	types := make(map[Hash]ObjectType)

	stack := make([]objectRef, 0, len(roots))
	for _, h := range roots {
		stack = append(stack, objectRef{hash: h})
	}
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		h := ref.hash
		if h == "" {
			continue
		}
		if _, ok := w.reachable[h]; ok {
			w.checkEdge(ref, types[h])
			continue
		}
		if !s.Has(h) {
			missing[h] = struct{}{}
			continue
		}
		w.reachable[h] = struct{}{}
		if _, leaf := leaves[h]; leaf {
			continue
		}

		objType, data, err := s.Read(h)
		if err != nil {
			return nil, fmt.Errorf("reachable set read %s: %w", h, err)
		}
		types[h] = objType
		w.checkEdge(ref, objType)
		// Children are read by the stored type, whatever the edge declared.
		refs, err := referencedHashes(h, objType, data)
		if err != nil {
			return nil, fmt.Errorf("reachable set parse %s (%s): %w", h, objType, err)
		}
		stack = append(stack, refs...)
	}

	w.missing = sortedHashes(missing)
	return w, nil
}

// checkEdge records ref.from as mistyped when the stored type got differs
// from the declared one. An unknown got (leaf objects) is not checked.
func (w *reachableWalk) checkEdge(ref objectRef, got ObjectType) {
	if ref.want == "" || got == "" || got == ref.want {
		return
	}
	if _, seen := w.mistyped[ref.from]; !seen {
		w.mistyped[ref.from] = fmt.Errorf("%w: references %w",
			ErrCorruptObject, &TypeMismatchError{Hash: ref.hash, Got: got, Want: ref.want})
	}
}

func referencedHashes(from Hash, objType ObjectType, data []byte) ([]objectRef, error) {
	switch objType {
	case TypeBlob:
		return nil, nil
	case TypeCommit:
		commit, err := UnmarshalCommit(data)
		if err != nil {
			return nil, err
		}
		refs := []objectRef{{from: from, hash: commit.TreeHash, want: TypeTree}}
		if commit.Parent != "" {
			refs = append(refs, objectRef{from: from, hash: commit.Parent, want: TypeCommit})
		}
		return refs, nil
	case TypeTree:
		tree, err := UnmarshalTree(data)
		if err != nil {
			return nil, err
		}
		refs := make([]objectRef, 0, len(tree.Entries))
		for _, e := range tree.Entries {
			refs = append(refs, objectRef{from: from, hash: e.Hash, want: e.Type})
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported object type %q", objType)
	}
}

// FsckReport summarizes an integrity check of the store.
type FsckReport struct {
	Objects   int
	Reachable int
	Dangling  []Hash
	Missing   []Hash
	Corrupt   map[Hash]error
}

// OK reports whether the check found no missing or corrupt objects.
// Dangling objects are harmless leftovers and do not fail the check.
func (r *FsckReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Corrupt) == 0
}

// Fsck verifies every stored object and walks the graph from roots. An
// object whose tree, parent or entry hash names an object of another type
// is reported as corrupt.
func (s *Store) Fsck(roots []Hash) (*FsckReport, error) {
	all, err := s.All()
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	report := &FsckReport{Objects: len(all), Corrupt: make(map[Hash]error)}

	for _, h := range all {
		if err := s.Verify(h); err != nil {
			report.Corrupt[h] = err
		}
	}

	walk, err := s.walkReachable(roots, report.Corrupt)
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	reachable := walk.reachable
	report.Reachable = len(reachable)
	report.Missing = walk.missing
	for h, err := range walk.mistyped {
		report.Corrupt[h] = err
	}

	for _, h := range all {
		if _, ok := reachable[h]; ok {
			continue
		}
		if _, bad := report.Corrupt[h]; bad {
			continue
		}
		report.Dangling = append(report.Dangling, h)
	}
	return report, nil
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedHashes(set map[Hash]struct{}) []Hash {
	if len(set) == 0 {
		return nil
	}
	out := make([]Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
