// Package exclude matches slash-separated relative paths against
// gitignore-like patterns so sync runs can skip junk and secrets.
package exclude

import (
	"path"
	"strings"
)

// Matcher holds a merged pattern list. A nil Matcher excludes nothing.
type Matcher struct {
	patterns []string
}

// DefaultPatterns are always excluded: VCS internals, editor droppings,
// dependency trees, and files that commonly hold secrets.
func DefaultPatterns() []string {
	return []string{
		".git/",
		".DS_Store",
		"._*",
		"node_modules/",
		"vendor/",
		"*.tmp",
		".env",
		".env.*",
		"*.key",
		"*.pem",
	}
}

// New merges user patterns with the defaults. Blank entries are dropped.
func New(patterns []string) *Matcher {
	merged := append([]string{}, DefaultPatterns()...)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		merged = append(merged, p)
	}
	return &Matcher{patterns: merged}
}

// IsExcluded reports whether relPath matches any pattern. Patterns ending
// in "/" match directories and everything beneath them; glob patterns match
// the full relative path or the base name; bare names match exact paths,
// path prefixes, and (for files) base names.
func (m *Matcher) IsExcluded(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = strings.TrimPrefix(relPath, "./")
	for _, p := range m.patterns {
		if strings.HasSuffix(p, "/") {
			dirPattern := strings.TrimSuffix(p, "/")
			if relPath == dirPattern || strings.HasPrefix(relPath, dirPattern+"/") {
				return true
			}
			continue
		}
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, relPath); ok {
				return true
			}
			if ok, _ := path.Match(p, path.Base(relPath)); ok {
				return true
			}
			continue
		}
		if relPath == p || strings.HasPrefix(relPath, p+"/") {
			return true
		}
		if !isDir && path.Base(relPath) == p {
			return true
		}
	}
	return false
}
