package domain

import (
	"path"
	"strings"
)

// NormalizePath converts a file or directory path into the canonical form used
// for ownership matching: slash separated, cleaned, relative, without a leading "./".
// The workspace root itself normalizes to the empty string.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}

// IsPathPrefix reports whether dir is a path-segment prefix of p.
// Both arguments must already be normalized. The empty dir prefixes every path.
// "a/b" prefixes "a/b" and "a/b/c.go" but not "a/bc/d.go".
func IsPathPrefix(dir, p string) bool {
	if dir == "" {
		return true
	}
	if !strings.HasPrefix(p, dir) {
		return false
	}
	return len(p) == len(dir) || p[len(dir)] == '/'
}
