package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/odvcencio/gitox/pkg/object"
	"github.com/sirupsen/logrus"
)

// loadedTree is a tree with every descendant already read from the store.
type loadedTree struct {
	entries []loadedEntry
}

type loadedEntry struct {
	name string
	data []byte      // blob contents
	sub  *loadedTree // subtree, nil for blobs
}

// ReadTree materializes the tree h into dir. Files named by the tree are
// overwritten; files the tree does not name are left alone.
//
// The whole graph reachable from h is loaded before the first write, so a
// missing or corrupt object aborts the restore with the directory
// untouched.
func (r *Repo) ReadTree(h object.Hash, dir string) error {
	root, err := r.loadTree(h, map[object.Hash][]byte{})
	if err != nil {
		return fmt.Errorf("read tree %s: %w", h, err)
	}
	if err := r.materialize(root, dir); err != nil {
		return fmt.Errorf("read tree %s: %w", h, err)
	}
	r.Logger().WithFields(logrus.Fields{"oid": h, "path": dir}).Debug("tree materialized")
	return nil
}

// loadTree reads h and all of its descendants. blobs dedups blob reads
// across the walk.
func (r *Repo) loadTree(h object.Hash, blobs map[object.Hash][]byte) (*loadedTree, error) {
	tr, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, err
	}

	lt := &loadedTree{entries: make([]loadedEntry, 0, len(tr.Entries))}
	for _, e := range tr.Entries {
		if e.Name == MetaDirName {
			return nil, fmt.Errorf("tree %s: reserved entry name %q: %w", h, e.Name, object.ErrCorruptObject)
		}
		le := loadedEntry{name: e.Name}
		switch e.Type {
		case object.TypeTree:
			sub, err := r.loadTree(e.Hash, blobs)
			if err != nil {
				return nil, err
			}
			le.sub = sub
		case object.TypeBlob:
			data, ok := blobs[e.Hash]
			if !ok {
				b, err := r.Store.ReadBlob(e.Hash)
				if err != nil {
					return nil, err
				}
				data = b.Data
				blobs[e.Hash] = data
			}
			le.data = data
		default:
			return nil, fmt.Errorf("tree %s: entry %q: %w", h, e.Name, object.ErrCorruptObject)
		}
		lt.entries = append(lt.entries, le)
	}
	return lt, nil
}

func (r *Repo) materialize(lt *loadedTree, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, e := range lt.entries {
		target := filepath.Join(dir, e.name)
		info, statErr := os.Lstat(target)
		exists := statErr == nil
		if statErr != nil && !os.IsNotExist(statErr) {
			return statErr
		}

		if e.sub != nil {
			// A file in the way of a tracked directory is replaced.
			if exists && !info.IsDir() {
				if err := os.Remove(target); err != nil {
					return err
				}
			}
			if err := r.materialize(e.sub, target); err != nil {
				return err
			}
			continue
		}

		perm := os.FileMode(0o644)
		if exists {
			if info.IsDir() {
				return fmt.Errorf("%s: directory in the way of tracked file", target)
			}
			if info.Mode().IsRegular() {
				perm = info.Mode().Perm()
			}
		}
		if err := renameio.WriteFile(target, e.data, perm); err != nil {
			return err
		}
	}
	return nil
}

// Checkout restores the snapshot recorded by commit h into the working
// directory and moves HEAD to h.
func (r *Repo) Checkout(h object.Hash) error {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.ReadTree(c.TreeHash, r.RootDir); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.UpdateRef(HeadRef, h); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	r.Logger().WithField("oid", h).Debug("checked out")
	return nil
}
