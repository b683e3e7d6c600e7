package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeIgnoreFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", IgnoreFileName, err)
	}
}

func TestIgnore_NoFileIgnoresNothing(t *testing.T) {
	ic, err := NewIgnoreChecker(t.TempDir())
	if err != nil {
		t.Fatalf("NewIgnoreChecker: %v", err)
	}
	if ic.IsIgnored("anything.log", false) {
		t.Error("expected nothing to be ignored without an ignore file")
	}
}

func TestIgnore_Patterns(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, `# comment line

*.log
!important.log
build/
docs/*.tmp
**/cache
/rooted.txt
file[0-9].dat
`)
	ic, err := NewIgnoreChecker(dir)
	if err != nil {
		t.Fatalf("NewIgnoreChecker: %v", err)
	}

	tests := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{"debug.log", false, true},
		{"sub/dir/trace.log", false, true},
		{"important.log", false, false},
		{"debug.txt", false, false},
		{"build", true, true},
		{"src/build", true, true},
		{"build", false, false},
		{"docs/a.tmp", false, true},
		{"docs/nested/a.tmp", false, false},
		{"other/a.tmp", false, false},
		{"cache", true, true},
		{"a/b/cache", true, true},
		{"rooted.txt", false, true},
		{"sub/rooted.txt", false, false},
		{"file7.dat", false, true},
		{"fileX.dat", false, false},
		{"# comment line", false, false},
	}
	for _, tt := range tests {
		if got := ic.IsIgnored(tt.path, tt.isDir); got != tt.ignored {
			t.Errorf("IsIgnored(%q, dir=%v) = %v, want %v", tt.path, tt.isDir, got, tt.ignored)
		}
	}
}

func TestIgnore_LastMatchWins(t *testing.T) {
	ic := ParseIgnorePatterns("!keep.txt\n*.txt\n")
	if !ic.IsIgnored("keep.txt", false) {
		t.Error("later *.txt should override earlier negation")
	}

	ic = ParseIgnorePatterns("*.txt\n!keep.txt\n")
	if ic.IsIgnored("keep.txt", false) {
		t.Error("later negation should re-include keep.txt")
	}
}

func TestIgnore_NilChecker(t *testing.T) {
	var ic *IgnoreChecker
	if ic.IsIgnored("x", false) {
		t.Error("nil checker should ignore nothing")
	}
}

func TestIgnore_TrailingDoubleStarCoversDir(t *testing.T) {
	ic := ParseIgnorePatterns("vendor/**\nlogs/**/*.gz\n")
	tests := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{"vendor", true, true},
		{"vendor/a.go", false, true},
		{"vendor/x/y", true, true},
		{"vendorized", true, false},
		{"src/vendor", true, false},
		{"logs", true, false},
		{"logs/a.gz", false, true},
		{"logs/2024/a.gz", false, true},
	}
	for _, tt := range tests {
		if got := ic.IsIgnored(tt.path, tt.isDir); got != tt.ignored {
			t.Errorf("IsIgnored(%q, dir=%v) = %v, want %v", tt.path, tt.isDir, got, tt.ignored)
		}
	}
}
