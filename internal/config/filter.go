package config

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Allowed reports whether id (given its pseudo-path, e.g. "<id>/<title>")
// survives the Include/Exclude glob filters (§11.2). Exclude patterns are
// checked first; an empty Include list means "everything not excluded is
// included", matching the teacher's own include/exclude precedence in
// internal/indexing's scanner. A pattern matches when it matches either the
// whole pseudo-path or its leading id segment, so "49*" selects every id
// starting with 49 whatever its title.
func (c *Config) Allowed(pseudoPath string) bool {
	for _, pattern := range c.Exclude {
		if matchPseudoPath(pattern, pseudoPath) {
			return false
		}
	}
	if len(c.Include) == 0 {
		return true
	}
	for _, pattern := range c.Include {
		if matchPseudoPath(pattern, pseudoPath) {
			return true
		}
	}
	return false
}

func matchPseudoPath(pattern, pseudoPath string) bool {
	if ok, _ := doublestar.Match(pattern, pseudoPath); ok {
		return true
	}
	id, _, _ := strings.Cut(pseudoPath, "/")
	ok, _ := doublestar.Match(pattern, id)
	return ok
}
