package object

import (
	"errors"
	"os"
	"testing"
)

// buildHistory writes blob <- tree <- commit <- commit and returns the
// hashes in that order.
func buildHistory(t *testing.T, s *Store) (blob, tree, c1, c2 Hash) {
	t.Helper()
	var err error
	blob, err = s.WriteBlob(&Blob{Data: []byte("content\n")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	tree, err = s.WriteTree(&TreeObj{Entries: []TreeEntry{{Type: TypeBlob, Hash: blob, Name: "f.txt"}}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	c1, err = s.WriteCommit(&CommitObj{TreeHash: tree, Message: "one"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	c2, err = s.WriteCommit(&CommitObj{TreeHash: tree, Parent: c1, Message: "two"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	return blob, tree, c1, c2
}

func TestReachableSet(t *testing.T) {
	s := tempStore(t)
	blob, tree, c1, c2 := buildHistory(t, s)
	unrelated, err := s.WriteBlob(&Blob{Data: []byte("dangling")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}

	set, missing, err := s.ReachableSet([]Hash{c2})
	if err != nil {
		t.Fatalf("ReachableSet: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
	for _, h := range []Hash{blob, tree, c1, c2} {
		if _, ok := set[h]; !ok {
			t.Errorf("%s not reachable", h)
		}
	}
	if _, ok := set[unrelated]; ok {
		t.Error("unrelated blob reported reachable")
	}
}

func TestFsckReportsDanglingMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, WithCacheSize(0))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	blob, _, c1, c2 := buildHistory(t, s)
	dangling, err := s.WriteBlob(&Blob{Data: []byte("dangling")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}

	report, err := s.Fsck([]Hash{c2})
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	if !report.OK() {
		t.Fatalf("healthy store reported problems: %+v", report)
	}
	if report.Objects != 5 || report.Reachable != 4 {
		t.Errorf("Objects=%d Reachable=%d, want 5/4", report.Objects, report.Reachable)
	}
	if len(report.Dangling) != 1 || report.Dangling[0] != dangling {
		t.Errorf("Dangling = %v, want [%s]", report.Dangling, dangling)
	}

	// Remove the first commit and corrupt the blob.
	fb := s.backend.(*FileBackend)
	if err := os.Remove(fb.objectPath(c1)); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	blobPath := fb.objectPath(blob)
	if err := os.WriteFile(blobPath, []byte("blob\x00tampered"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	report, err = s.Fsck([]Hash{c2})
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	if report.OK() {
		t.Fatal("damaged store reported OK")
	}
	if len(report.Missing) != 1 || report.Missing[0] != c1 {
		t.Errorf("Missing = %v, want [%s]", report.Missing, c1)
	}
	if _, ok := report.Corrupt[blob]; !ok {
		t.Errorf("Corrupt = %v, want %s", report.Corrupt, blob)
	}
}

func TestFsckReportsMistypedReferences(t *testing.T) {
	s := tempStore(t)
	blob, tree, c1, _ := buildHistory(t, s)

	blobAsTree, err := s.WriteCommit(&CommitObj{TreeHash: blob, Message: "tree is a blob"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	treeAsParent, err := s.WriteCommit(&CommitObj{TreeHash: tree, Parent: tree, Message: "parent is a tree"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	// Declares a subtree, stores a blob.
	badEntry, err := s.WriteTree(&TreeObj{Entries: []TreeEntry{{Type: TypeTree, Hash: blob, Name: "dir"}}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	badEntryCommit, err := s.WriteCommit(&CommitObj{TreeHash: badEntry, Parent: c1, Message: "bad entry"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}

	tests := []struct {
		name    string
		root    Hash
		corrupt Hash
	}{
		{"commit tree is a blob", blobAsTree, blobAsTree},
		{"commit parent is a tree", treeAsParent, treeAsParent},
		{"tree entry type disagrees", badEntryCommit, badEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := s.Fsck([]Hash{tt.root})
			if err != nil {
				t.Fatalf("Fsck: %v", err)
			}
			if report.OK() {
				t.Fatal("Fsck reported OK")
			}
			err, ok := report.Corrupt[tt.corrupt]
			if !ok {
				t.Fatalf("Corrupt = %v, want entry for %s", report.Corrupt, tt.corrupt)
			}
			if !errors.Is(err, ErrCorruptObject) || !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("Corrupt[%s] = %v, want corrupt type mismatch", tt.corrupt, err)
			}
			if len(report.Missing) != 0 {
				t.Fatalf("Missing = %v, want none", report.Missing)
			}
		})
	}

	report, err := s.Fsck([]Hash{c1})
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	if !report.OK() {
		t.Fatalf("well-typed history reported problems: %v", report.Corrupt)
	}
}
