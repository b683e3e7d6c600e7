package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path     string
	BlobHash object.Hash
}

// HashFile stores the contents of the file at path as a blob.
func (r *Repo) HashFile(path string) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return "", fmt.Errorf("hash file %s: %w", path, err)
	}
	r.Logger().WithFields(logrus.Fields{"path": path, "oid": h}).Debug("blob written")
	return h, nil
}

// WriteTree snapshots the directory dir into the object store and returns
// the root tree hash. Regular files become blobs and subdirectories become
// trees, children first. The metadata directory, symlinks, special files,
// names a tree line cannot hold (a newline) and paths matched by
// .gitoxignore are left out.
//
// Subdirectories are hashed concurrently, up to core.workers at a time. The
// result does not depend on scheduling: entries are sorted before encoding.
func (r *Repo) WriteTree(dir string) (object.Hash, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("write tree: abs path: %w", err)
	}
	ignore, err := NewIgnoreChecker(abs)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}

	w := &treeWriter{
		repo:   r,
		ignore: ignore,
		// The calling goroutine does work too, so it does not hold a slot.
		sem: semaphore.NewWeighted(int64(r.workers() - 1)),
	}
	h, err := w.writeDir(abs, "")
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	r.Logger().WithFields(logrus.Fields{"path": abs, "oid": h}).Debug("tree written")
	return h, nil
}

type treeWriter struct {
	repo   *Repo
	ignore *IgnoreChecker
	sem    *semaphore.Weighted
}

func (w *treeWriter) writeDir(absDir, rel string) (object.Hash, error) {
	dirEntries, err := os.ReadDir(absDir)
	if err != nil {
		return "", err
	}

	slots := make([]object.TreeEntry, len(dirEntries))
	var g errgroup.Group

	for i, de := range dirEntries {
		i := i // per-iteration copy for the goroutine below (go 1.21 loop semantics)
		name := de.Name()
		if name == MetaDirName {
			continue
		}
		if err := object.ValidateEntryName(name); err != nil {
			w.repo.Logger().WithFields(logrus.Fields{
				"path": path.Join(rel, name),
			}).WithError(err).Debug("skipping unencodable name")
			continue
		}
		childAbs := filepath.Join(absDir, name)
		childRel := path.Join(rel, name)
		mode := de.Type()

		switch {
		case mode.IsDir():
			if w.ignore.IsIgnored(childRel, true) {
				continue
			}
			hashDir := func() error {
				h, err := w.writeDir(childAbs, childRel)
				if err != nil {
					return err
				}
				slots[i] = object.TreeEntry{Type: object.TypeTree, Hash: h, Name: name}
				return nil
			}
			if w.sem.TryAcquire(1) {
				g.Go(func() error {
					defer w.sem.Release(1)
					return hashDir()
				})
				continue
			}
			if err := hashDir(); err != nil {
				_ = g.Wait()
				return "", err
			}

		case mode.IsRegular():
			if w.ignore.IsIgnored(childRel, false) {
				continue
			}
			data, err := os.ReadFile(childAbs)
			if err != nil {
				_ = g.Wait()
				return "", err
			}
			h, err := w.repo.Store.WriteBlob(&object.Blob{Data: data})
			if err != nil {
				_ = g.Wait()
				return "", fmt.Errorf("%s: %w", childRel, err)
			}
			slots[i] = object.TreeEntry{Type: object.TypeBlob, Hash: h, Name: name}

		default:
			w.repo.Logger().WithFields(logrus.Fields{
				"path": childRel,
				"mode": mode.String(),
			}).Debug("skipping non-regular file")
		}
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	entries := make([]object.TreeEntry, 0, len(slots))
	for _, e := range slots {
		if e.Name != "" {
			entries = append(entries, e)
		}
	}
	h, err := w.repo.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("%s: %w", displayRel(rel), err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file entries
// with their full paths (using forward slashes).
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range treeObj.Entries {
		fullPath := path.Join(prefix, entry.Name)
		if entry.IsDir() {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		result = append(result, TreeFileEntry{Path: fullPath, BlobHash: entry.Hash})
	}
	return result, nil
}

func displayRel(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
