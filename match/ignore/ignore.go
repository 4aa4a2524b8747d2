// Package ignore implements the gitignore-style ordered negation algebra used
// both for the global ignore set and for a single entry's own "ignores" list.
// A path is evaluated ancestor-by-ancestor from the base path down: once a
// directory has been ignored, none of its descendants can escape that state
// by matching a later negated pattern - only a pattern re-including the
// ancestor itself lifts the ignore, mirroring the documented gitignore rule
// that a file cannot be re-included if a parent directory is excluded.
package ignore

import (
	"strings"

	"github.com/vbhat161/configarray/match/glob"
)

// Element is one entry of an ordered ignores list: either a compiled string
// pattern or a predicate evaluated against the absolute path.
type Element struct {
	Pattern   *glob.Pattern
	Predicate func(absPath string) bool
}

// negated reports whether this element would, if matched, re-include rather
// than exclude the path. Predicate elements are never negated: their boolean
// result directly is the exclusion decision.
func (e Element) negated() bool {
	return e.Pattern != nil && e.Pattern.Negated
}

func (e Element) matches(relPath, absPath string, isDir bool) bool {
	if e.Pattern != nil {
		if e.Pattern.DirectoryOnly && !isDir {
			return false
		}
		return e.Pattern.MatchString(relPath)
	}
	return e.Predicate(absPath)
}

// IsIgnored walks the path from the base outward, applying elements in order
// at each ancestor level, and reports whether the final segment (the target
// itself) ends up ignored. targetIsDir indicates whether the final segment is
// a directory (true) or a file (false); every ancestor above it is always
// treated as a directory.
func IsIgnored(elements []Element, basePath, relPath string, targetIsDir bool) bool {
	relPath = strings.TrimSuffix(relPath, "/")
	if relPath == "" || relPath == "." {
		return false
	}
	if strings.HasPrefix(relPath, "..") {
		return true
	}

	segments := strings.Split(relPath, "/")
	ancestorIgnored := false

	for i := 1; i <= len(segments); i++ {
		if ancestorIgnored {
			// A parent directory is already excluded: no pattern at this or
			// any deeper level can re-include a descendant. Only a pattern
			// that matched *this exact ancestor* when it was evaluated on
			// its own turn could have lifted the exclusion.
			break
		}

		isLast := i == len(segments)
		segIsDir := targetIsDir || !isLast
		path := strings.Join(segments[:i], "/")

		state := false
		for _, el := range elements {
			if !el.matches(path, joinAbs(basePath, path), segIsDir) {
				continue
			}
			if el.negated() {
				state = false
			} else {
				state = true
			}
		}
		ancestorIgnored = state
	}

	return ancestorIgnored
}

func joinAbs(basePath, relPath string) string {
	if basePath == "" {
		return relPath
	}
	return strings.TrimSuffix(basePath, "/") + "/" + relPath
}
