package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitox/pkg/object"
)

var (
	// ErrRepoExists is returned by Init when a metadata directory is present.
	ErrRepoExists = errors.New("repository already exists")
	// ErrNotRepo is returned by Open when no metadata directory is found.
	ErrNotRepo = errors.New("not a gitox repository (or any parent up to /)")
)

// Init creates a new repository at path. It creates the .gitox/ directory
// structure: objects/ and refs/tags/. HEAD is written by the first commit
// or checkout.
func Init(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	gitoxDir := filepath.Join(abs, MetaDirName)

	if _, err := os.Stat(gitoxDir); err == nil {
		return nil, fmt.Errorf("init: %w at %s", ErrRepoExists, gitoxDir)
	}

	dirs := []string{
		filepath.Join(gitoxDir, "objects"),
		filepath.Join(gitoxDir, "refs", "tags"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	return openAt(abs, gitoxDir)
}

// Open searches upward from path for a .gitox/ directory and opens the
// repository.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitoxDir := filepath.Join(cur, MetaDirName)
		info, err := os.Stat(gitoxDir)
		if err == nil && info.IsDir() {
			return openAt(cur, gitoxDir)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w", ErrNotRepo)
		}
		cur = parent
	}
}

func openAt(rootDir, gitoxDir string) (*Repo, error) {
	cfg, err := LoadConfig(gitoxDir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	store, err := object.NewStore(gitoxDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	r := New(rootDir, store, NewFileRefStore(gitoxDir))
	r.GitoxDir = gitoxDir
	r.Config = cfg
	return r, nil
}
