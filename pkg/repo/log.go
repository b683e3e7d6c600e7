package repo

import (
	"fmt"

	"github.com/odvcencio/gitox/pkg/object"
)

// LogIter walks a commit chain from newest to oldest, one store lookup per
// step:
//
//	it := r.Log(head)
//	for it.Next() {
//		fmt.Println(it.Hash(), it.Commit().Message)
//	}
//	if err := it.Err(); err != nil { ... }
//
// A missing or unreadable commit ends the walk with a non-nil Err; the
// history is never silently truncated.
type LogIter struct {
	store *object.Store

	next   object.Hash
	hash   object.Hash
	commit *object.CommitObj
	err    error
}

// Log returns an iterator over the history ending at start. An empty start
// yields no commits. Iterators hold no shared state, so any number may walk
// the same history.
func (r *Repo) Log(start object.Hash) *LogIter {
	return &LogIter{store: r.Store, next: start}
}

// Next advances to the next commit. It returns false at the root commit's
// end of history or on error.
func (it *LogIter) Next() bool {
	if it.err != nil || it.next == "" {
		it.hash, it.commit = "", nil
		return false
	}
	c, err := it.store.ReadCommit(it.next)
	if err != nil {
		it.err = fmt.Errorf("log: read commit %s: %w", it.next, err)
		it.hash, it.commit = "", nil
		return false
	}
	it.hash, it.commit = it.next, c
	it.next = c.Parent
	return true
}

// Hash returns the hash of the current commit.
func (it *LogIter) Hash() object.Hash { return it.hash }

// Commit returns the current commit.
func (it *LogIter) Commit() *object.CommitObj { return it.commit }

// Err returns the error that stopped the walk, if any.
func (it *LogIter) Err() error { return it.err }

// LogEntry pairs a commit with its hash.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// CollectLog walks at most limit commits from start (all when limit <= 0).
func (r *Repo) CollectLog(start object.Hash, limit int) ([]LogEntry, error) {
	var out []LogEntry
	it := r.Log(start)
	for (limit <= 0 || len(out) < limit) && it.Next() {
		out = append(out, LogEntry{Hash: it.Hash(), Commit: it.Commit()})
	}
	if err := it.Err(); err != nil {
		return out, err
	}
	return out, nil
}
