package repo

import (
	"io"
	"runtime"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/sirupsen/logrus"
)

// MetaDirName is the repository metadata directory. It is never included in
// a tree snapshot.
const MetaDirName = ".gitox"

// Repo is a handle to one repository: its working directory, object store,
// references and settings. All state an operation needs, HEAD included, is
// reached through the handle.
type Repo struct {
	RootDir  string        // working directory root
	GitoxDir string        // .gitox/ directory; empty for in-memory repos
	Store    *object.Store // content-addressed object store
	Refs     RefStore      // mutable name -> hash mapping
	Config   *Config

	log logrus.FieldLogger
}

// New assembles a Repo from explicit parts. It is how in-memory repositories
// are built: pair object.NewMemoryStore with NewMemoryRefStore.
func New(rootDir string, store *object.Store, refs RefStore) *Repo {
	return &Repo{
		RootDir: rootDir,
		Store:   store,
		Refs:    refs,
		Config:  DefaultConfig(),
		log:     discardLogger(),
	}
}

// SetLogger routes the repository's diagnostic output to l.
func (r *Repo) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = discardLogger()
	}
	r.log = l
}

// Logger returns the repository's logger.
func (r *Repo) Logger() logrus.FieldLogger {
	if r.log == nil {
		return discardLogger()
	}
	return r.log
}

func (r *Repo) workers() int {
	if r.Config != nil && r.Config.Core.Workers > 0 {
		return r.Config.Core.Workers
	}
	return runtime.NumCPU()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
