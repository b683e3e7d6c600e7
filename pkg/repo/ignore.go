package repo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFileName lists patterns excluded from write-tree, one per line.
const IgnoreFileName = ".gitoxignore"

// IgnoreChecker determines if a path should be left out of a snapshot.
// The metadata directory is excluded by the tree builder itself and needs
// no pattern.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	negated  bool
	dirOnly  bool
	hasSlash bool // match against the full relative path, not the base name
	regex    *regexp.Regexp
}

// NewIgnoreChecker loads .gitoxignore from root. A missing file yields a
// checker that ignores nothing.
func NewIgnoreChecker(root string) (*IgnoreChecker, error) {
	data, err := os.ReadFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &IgnoreChecker{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", IgnoreFileName, err)
	}
	return ParseIgnorePatterns(string(data)), nil
}

// ParseIgnorePatterns builds a checker from .gitoxignore text.
func ParseIgnorePatterns(text string) *IgnoreChecker {
	ic := &IgnoreChecker{}
	for _, line := range strings.Split(text, "\n") {
		if p, ok := parseIgnoreLine(line); ok {
			ic.patterns = append(ic.patterns, p)
		}
	}
	return ic
}

func parseIgnoreLine(line string) (ignorePattern, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}

	var p ignorePattern
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	// A leading slash anchors the pattern to the root.
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ignorePattern{}, false
	}
	p.hasSlash = anchored || strings.Contains(line, "/")

	re, err := regexp.Compile(globToRegex(line))
	if err != nil {
		return ignorePattern{}, false
	}
	p.regex = re
	return p, true
}

// IsIgnored reports whether rel (slash-separated, relative to the root)
// is excluded. The last matching pattern wins, so "!" lines re-include.
func (ic *IgnoreChecker) IsIgnored(rel string, isDir bool) bool {
	if ic == nil || len(ic.patterns) == 0 {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)

	ignored := false
	for _, p := range ic.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		target := base
		if p.hasSlash {
			target = rel
		}
		if p.regex.MatchString(target) {
			ignored = !p.negated
		}
	}
	return ignored
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '/' && pattern[i:] == "/**":
			// "dir/**" matches dir itself and everything below it.
			b.WriteString("(?:/.*)?")
			i += 2
		case ch == '*' && i+2 < len(pattern) && pattern[i+1] == '*' && pattern[i+2] == '/':
			// "**/" matches zero or more leading directories.
			b.WriteString("(?:.*/)?")
			i += 2
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		case ch == '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := pattern[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	return b.String()
}
