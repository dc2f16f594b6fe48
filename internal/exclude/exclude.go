// Package exclude holds the persisted set of glob patterns marking files
// that must never be selected for deletion, and the matcher applied to
// every scanned path.
package exclude

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	wildcard "github.com/IGLOU-EU/go-wildcard"
)

// DefaultPatterns protect the Perforce proxy's own files. Seeded into the
// exclusion file on first run.
var DefaultPatterns = []string{
	"p4p.exe",
	"pdb.lbr",
	"p4p.conf",
	"p4ps.exe",
	"svcinst.exe",
}

// List is an ordered set of exclusion patterns. Matching is
// case-insensitive; a pattern without wildcard metacharacters behaves as a
// literal name comparison.
type List struct {
	patterns []string
}

// New returns a List containing the given patterns, in order, deduplicated
// case-insensitively.
func New(patterns ...string) *List {
	l := &List{}
	for _, p := range patterns {
		l.Add(p)
	}
	return l
}

// Default returns a List seeded with DefaultPatterns.
func Default() *List {
	return New(DefaultPatterns...)
}

// Patterns returns the patterns in their stored order.
func (l *List) Patterns() []string {
	return append([]string(nil), l.patterns...)
}

// Len returns the number of stored patterns.
func (l *List) Len() int {
	return len(l.patterns)
}

// Add appends a pattern unless an equal one (case-insensitive) is already
// present. Reports whether the pattern was added.
func (l *List) Add(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || l.contains(pattern) {
		return false
	}
	l.patterns = append(l.patterns, pattern)
	return true
}

// Remove deletes a pattern (case-insensitive). Reports whether it existed.
func (l *List) Remove(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	for i, p := range l.patterns {
		if strings.EqualFold(p, pattern) {
			l.patterns = append(l.patterns[:i], l.patterns[i+1:]...)
			return true
		}
	}
	return false
}

func (l *List) contains(pattern string) bool {
	for _, p := range l.patterns {
		if strings.EqualFold(p, pattern) {
			return true
		}
	}
	return false
}

// Match reports whether the file at path is excluded. Patterns are tried
// against the base name first, then the full slash-normalized path, both
// lowercased. Pure predicate: no error conditions, no side effects.
func (l *List) Match(path string) bool {
	if l == nil || len(l.patterns) == 0 {
		return false
	}
	base := strings.ToLower(filepath.Base(path))
	full := strings.ToLower(filepath.ToSlash(path))
	for _, p := range l.patterns {
		pat := strings.ToLower(p)
		if wildcard.Match(pat, base) || wildcard.Match(pat, full) {
			return true
		}
	}
	return false
}

// Load reads an exclusion file: one pattern per line, blank lines and
// #-comments ignored. A missing file yields the default list so a fresh
// install protects the proxy binaries out of the box.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open exclusion list: %w", err)
	}
	defer f.Close()

	l := &List{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l.Add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read exclusion list: %w", err)
	}
	return l, nil
}

// Save writes the list back to path, creating parent directories as needed.
func (l *List) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Files that p4prune must never delete. One glob per line.\n")
	for _, p := range l.patterns {
		b.WriteString(p)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write exclusion list: %w", err)
	}
	return nil
}
