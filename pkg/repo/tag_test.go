package repo

import (
	"errors"
	"strings"
	"testing"

	"github.com/odvcencio/gitox/pkg/object"
)

func commitFile(t *testing.T, r *Repo, name, content, message string) object.Hash {
	t.Helper()
	writeFiles(t, r.RootDir, map[string]string{name: content})
	h, err := r.Commit(message)
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return h
}

func TestTagCreateResolveAndList(t *testing.T) {
	r := initTestRepo(t)
	head := commitFile(t, r, "main.go", "package main\n", "initial")

	if err := r.CreateTag("v1.0.0", head, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	resolved, err := r.ResolveTag("v1.0.0")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	if resolved != head {
		t.Fatalf("resolved tag = %q, want %q", resolved, head)
	}

	tags, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "v1.0.0" {
		t.Fatalf("ListTags = %v, want [v1.0.0]", tags)
	}
}

func TestTagCreateExistingWithoutForceFails(t *testing.T) {
	r := initTestRepo(t)
	head := commitFile(t, r, "main.go", "package main\n", "initial")

	if err := r.CreateTag("v1.0.0", head, false); err != nil {
		t.Fatalf("CreateTag first: %v", err)
	}
	err := r.CreateTag("v1.0.0", head, false)
	if !errors.Is(err, ErrTagExists) {
		t.Fatalf("CreateTag second err = %v, want ErrTagExists", err)
	}
}

func TestTagCreateForceUpdatesTarget(t *testing.T) {
	r := initTestRepo(t)
	h1 := commitFile(t, r, "main.go", "package main\n", "initial")
	if err := r.CreateTag("v1.0.0", h1, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	h2 := commitFile(t, r, "main.go", "package main\n\nfunc main() {}\n", "second")

	if err := r.CreateTag("v1.0.0", h2, true); err != nil {
		t.Fatalf("CreateTag force: %v", err)
	}
	resolved, err := r.ResolveTag("v1.0.0")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	if resolved != h2 {
		t.Fatalf("resolved tag = %q, want %q", resolved, h2)
	}
}

func TestTagListSortedWithHashes(t *testing.T) {
	r := newMemoryRepo(t)
	a := writeTestBlob(t, r, "a")
	b := writeTestBlob(t, r, "b")
	for name, h := range map[string]object.Hash{"v2": b, "v1": a, "release/v3": b} {
		if err := r.CreateTag(name, h, false); err != nil {
			t.Fatalf("CreateTag(%s): %v", name, err)
		}
	}

	tags, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if got := strings.Join(tags, ","); got != "release/v3,v1,v2" {
		t.Fatalf("ListTags = %s, want release/v3,v1,v2", got)
	}
	withHashes, err := r.ListTagsWithHashes()
	if err != nil {
		t.Fatalf("ListTagsWithHashes: %v", err)
	}
	if withHashes["v1"] != a || withHashes["release/v3"] != b {
		t.Fatalf("ListTagsWithHashes = %v", withHashes)
	}
}

func TestTagCreateInvalid(t *testing.T) {
	r := newMemoryRepo(t)
	h := writeTestBlob(t, r, "x")
	for _, name := range []string{"", "/v1", "v1/", "a..b", "has space", "@"} {
		if err := r.CreateTag(name, h, false); err == nil {
			t.Errorf("CreateTag(%q) succeeded, want error", name)
		}
	}
	if err := r.CreateTag("v1", object.Hash(strings.Repeat("0", 40)), false); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("CreateTag to missing object err = %v, want ErrNotFound", err)
	}
}
