package ignore

import (
	"strings"

	re2exp "github.com/wasilibs/go-re2/experimental"
)

// FastSet is a multi-pattern pre-check over a list of global ignore elements
// that contain no negation and no predicates. It answers, in a single RE2
// set match, whether a path could possibly be matched by any pattern in the
// list, letting IsIgnored's per-segment walk be skipped entirely for the
// common case of a path that isn't ignored at all. It is an accelerator
// only: a true result still requires the full ordered walk to account for
// directory-only and ancestor semantics, but a false result is final.
type FastSet struct {
	set *re2exp.Set
}

// BuildFastSet compiles a FastSet over elements, or returns nil if any
// element is negated or predicate-based - either of those makes a single
// cheap "could this match" pre-check unsound, since a negated pattern
// removes rather than adds to the ignored set.
func BuildFastSet(elements []Element) *FastSet {
	if len(elements) == 0 {
		return nil
	}

	sources := make([]string, 0, len(elements))
	for _, el := range elements {
		if el.Pattern == nil || el.Pattern.Negated {
			return nil
		}
		sources = append(sources, el.Pattern.Source)
	}

	set, err := re2exp.CompileSet(sources)
	if err != nil {
		return nil
	}
	return &FastSet{set: set}
}

// MaybeIgnored reports whether relPath, or any of its ancestor directories,
// could be excluded by a pattern the set was built from. A false result
// means IsIgnored would definitely return false for the same path, and the
// full ordered walk can be skipped.
func (fs *FastSet) MaybeIgnored(relPath string) bool {
	if fs == nil {
		return true
	}
	if strings.HasPrefix(relPath, "..") {
		// Paths escaping the base are always ignored by IsIgnored.
		return true
	}

	segments := strings.Split(strings.TrimSuffix(relPath, "/"), "/")
	for i := 1; i <= len(segments); i++ {
		path := strings.Join(segments[:i], "/")
		if len(fs.set.FindAllString(path, 1)) > 0 {
			return true
		}
	}
	return false
}
