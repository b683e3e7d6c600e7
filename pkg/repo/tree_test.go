package repo

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/gitox/pkg/object"
)

func entryNames(t *testing.T, r *Repo, h object.Hash) []string {
	t.Helper()
	tr, err := r.Store.ReadTree(h)
	if err != nil {
		t.Fatalf("ReadTree(%s): %v", h, err)
	}
	names := make([]string, 0, len(tr.Entries))
	for _, e := range tr.Entries {
		names = append(names, e.Name)
	}
	return names
}

func TestHashFileHello(t *testing.T) {
	r := newMemoryRepo(t)
	path := filepath.Join(r.RootDir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h, err := r.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	sum := sha1.Sum([]byte("blob\x00hello\n"))
	if want := object.Hash(hex.EncodeToString(sum[:])); h != want {
		t.Fatalf("HashFile = %s, want %s", h, want)
	}
	if !r.Store.Has(h) {
		t.Fatalf("blob %s not stored", h)
	}
}

func TestHashFileMissing(t *testing.T) {
	r := newMemoryRepo(t)
	_, err := r.HashFile(filepath.Join(r.RootDir, "nope"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("HashFile err = %v, want not-exist", err)
	}
}

func TestWriteTreeSortedEntries(t *testing.T) {
	r := newMemoryRepo(t)
	writeFiles(t, r.RootDir, map[string]string{
		"b.txt":     "b\n",
		"a.txt":     "a\n",
		"c/z.txt":   "z\n",
		"c/y.txt":   "y\n",
		"B-upper":   "upper\n",
		"a.txt.bak": "bak\n",
	})

	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	got := strings.Join(entryNames(t, r, h), ",")
	if want := "B-upper,a.txt,a.txt.bak,b.txt,c"; got != want {
		t.Fatalf("root entries = %s, want %s", got, want)
	}

	tr, err := r.Store.ReadTree(h)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	sub := tr.Entries[len(tr.Entries)-1]
	if sub.Type != object.TypeTree {
		t.Fatalf("entry c type = %s, want tree", sub.Type)
	}
	if got := strings.Join(entryNames(t, r, sub.Hash), ","); got != "y.txt,z.txt" {
		t.Fatalf("c entries = %s, want y.txt,z.txt", got)
	}
}

func TestWriteTreeExcludesMetaDir(t *testing.T) {
	r := initTestRepo(t)
	writeFiles(t, r.RootDir, map[string]string{
		"a.txt":             "a\n",
		"sub/.gitox/HEAD":   "nested metadata\n",
		"sub/visible.txt":   "v\n",
		".gitoxignore.note": "kept\n",
	})

	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	files, err := r.FlattenTree(h)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	got := strings.Join(paths, ",")
	if want := ".gitoxignore.note,a.txt,sub/visible.txt"; got != want {
		t.Fatalf("tracked paths = %s, want %s", got, want)
	}
}

func TestWriteTreeDeterministic(t *testing.T) {
	files := map[string]string{
		"a.txt":         "a\n",
		"dir/b.txt":     "b\n",
		"dir/sub/c.bin": "\x00\x01\x02",
	}
	mem := newMemoryRepo(t)
	disk := initTestRepo(t)
	writeFiles(t, mem.RootDir, files)
	writeFiles(t, disk.RootDir, files)

	h1, err := mem.WriteTree(mem.RootDir)
	if err != nil {
		t.Fatalf("WriteTree mem: %v", err)
	}
	h2, err := mem.WriteTree(mem.RootDir)
	if err != nil {
		t.Fatalf("WriteTree mem again: %v", err)
	}
	h3, err := disk.WriteTree(disk.RootDir)
	if err != nil {
		t.Fatalf("WriteTree disk: %v", err)
	}
	if h1 != h2 || h1 != h3 {
		t.Fatalf("tree hashes differ: %s %s %s", h1, h2, h3)
	}
}

func TestWriteTreeCanonicalization(t *testing.T) {
	r := newMemoryRepo(t)
	writeFiles(t, r.RootDir, map[string]string{
		"README":              "readme\n",
		"src/main.go":         "package main\n",
		"src/pkg/util.go":     "package pkg\n",
		"src/pkg/util_test.g": "test\n",
		"docs/a/b/c/deep.md":  "deep\n",
	})
	if err := os.MkdirAll(filepath.Join(r.RootDir, "empty"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	out := t.TempDir()
	if err := r.ReadTree(h, out); err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	assertDir(t, filepath.Join(out, "empty"))

	again, err := r.WriteTree(out)
	if err != nil {
		t.Fatalf("WriteTree restored: %v", err)
	}
	if again != h {
		t.Fatalf("restored tree = %s, want %s", again, h)
	}
}

func TestWriteTreeParallelMatchesSequential(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 12; i++ {
		for j := 0; j < 4; j++ {
			files[fmt.Sprintf("d%02d/s%d/f.txt", i, j)] = fmt.Sprintf("%d/%d\n", i, j)
		}
		files[fmt.Sprintf("d%02d/top.txt", i)] = fmt.Sprintf("top %d\n", i)
	}

	seq := newMemoryRepo(t)
	seq.Config.Core.Workers = 1
	par := newMemoryRepo(t)
	par.Config.Core.Workers = 8
	writeFiles(t, seq.RootDir, files)
	writeFiles(t, par.RootDir, files)

	hs, err := seq.WriteTree(seq.RootDir)
	if err != nil {
		t.Fatalf("sequential WriteTree: %v", err)
	}
	hp, err := par.WriteTree(par.RootDir)
	if err != nil {
		t.Fatalf("parallel WriteTree: %v", err)
	}
	if hs != hp {
		t.Fatalf("parallel tree %s != sequential tree %s", hp, hs)
	}

	all, err := par.Store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	seqAll, err := seq.Store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != len(seqAll) {
		t.Fatalf("parallel wrote %d objects, sequential %d", len(all), len(seqAll))
	}
}

func TestWriteTreeUnreadableSubdirFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	r := newMemoryRepo(t)
	r.Config.Core.Workers = 4
	writeFiles(t, r.RootDir, map[string]string{"ok/a.txt": "a", "locked/b.txt": "b"})
	locked := filepath.Join(r.RootDir, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	if _, err := r.WriteTree(r.RootDir); err == nil {
		t.Fatal("WriteTree over unreadable directory should fail")
	}
}

func TestWriteTreeIgnore(t *testing.T) {
	r := newMemoryRepo(t)
	writeFiles(t, r.RootDir, map[string]string{
		".gitoxignore":    "*.log\n!keep.log\nbuild/\n",
		"app.log":         "noise\n",
		"keep.log":        "keep\n",
		"build/out.o":     "obj\n",
		"src/build":       "a file named build\n",
		"src/trace.log":   "noise\n",
		"src/main.go":     "package main\n",
		"notbuild/out.go": "ok\n",
	})

	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	files, err := r.FlattenTree(h)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	got := strings.Join(paths, ",")
	want := ".gitoxignore,keep.log,notbuild/out.go,src/build,src/main.go"
	if got != want {
		t.Fatalf("tracked paths = %s, want %s", got, want)
	}
}

func TestWriteTreeSkipsSymlinks(t *testing.T) {
	r := newMemoryRepo(t)
	writeFiles(t, r.RootDir, map[string]string{"real.txt": "real\n"})
	if err := os.Symlink("real.txt", filepath.Join(r.RootDir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if got := strings.Join(entryNames(t, r, h), ","); got != "real.txt" {
		t.Fatalf("entries = %s, want real.txt", got)
	}
}

func TestFlattenTree(t *testing.T) {
	r := newMemoryRepo(t)
	writeFiles(t, r.RootDir, map[string]string{
		"z.txt":     "z",
		"a/b/c.txt": "c",
		"a/d.txt":   "d",
	})
	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	files, err := r.FlattenTree(h)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	want := map[string]string{"a/b/c.txt": "c", "a/d.txt": "d", "z.txt": "z"}
	if len(files) != len(want) {
		t.Fatalf("FlattenTree returned %d files, want %d", len(files), len(want))
	}
	for _, f := range files {
		b, err := r.Store.ReadBlob(f.BlobHash)
		if err != nil {
			t.Fatalf("ReadBlob(%s): %v", f.Path, err)
		}
		if string(b.Data) != want[f.Path] {
			t.Errorf("%s = %q, want %q", f.Path, b.Data, want[f.Path])
		}
	}
}

func TestWriteTreeSkipsUnencodableNames(t *testing.T) {
	r := newMemoryRepo(t)
	writeFiles(t, r.RootDir, map[string]string{"good.txt": "good\n"})
	if err := os.WriteFile(filepath.Join(r.RootDir, "bad\nname"), []byte("x"), 0o644); err != nil {
		t.Skipf("filesystem rejects newline in names: %v", err)
	}
	if err := os.Mkdir(filepath.Join(r.RootDir, "dir\nname"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if got := strings.Join(entryNames(t, r, h), ","); got != "good.txt" {
		t.Fatalf("entries = %q, want good.txt", got)
	}
}

func TestWriteTreeIgnoreDoubleStarDropsDir(t *testing.T) {
	r := newMemoryRepo(t)
	writeFiles(t, r.RootDir, map[string]string{
		".gitoxignore":  "build/**\n",
		"build/out/a.o": "obj\n",
		"build/b.o":     "obj\n",
		"src/main.go":   "package main\n",
	})

	h, err := r.WriteTree(r.RootDir)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if got := strings.Join(entryNames(t, r, h), ","); got != ".gitoxignore,src" {
		t.Fatalf("entries = %q, want .gitoxignore,src", got)
	}
}
