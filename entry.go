package configarray

import "github.com/vbhat161/configarray/schema"

// Entry is one config entry, after normalization: a plain map of recognized
// keys ("name", "files", "ignores") plus whatever arbitrary keys the caller's
// schema extension defines. A files value is a non-empty ordered list whose
// elements are string or predicate patterns or AND-sequences of those; an
// ignores value is an ordered list of string or predicate patterns.
type Entry = map[string]any

// PredicateFunc is a predicate pattern: it receives an absolute path and
// reports whether it matches. It is the function-valued alternative to a
// string glob pattern in an Entry's "files" and "ignores" lists.
type PredicateFunc = schema.PredicateFunc

// AndPattern is an ordered sequence of string or PredicateFunc patterns that
// must all match the same path. Use it as a files element to require several
// independent conditions at once.
type AndPattern []any

// entryKind classifies a normalized entry by which keys it carries.
type entryKind int

const (
	kindInert entryKind = iota
	kindOrdinary
	kindFilesLess
	kindGlobalIgnore
)

func classify(e Entry) entryKind {
	filesVal, hasFiles := e["files"]
	ordinary := hasFiles && filesVal != nil
	if ordinary {
		return kindOrdinary
	}

	hasOtherKeys := false
	for k := range e {
		if k == "name" || k == "ignores" || k == "files" {
			continue
		}
		hasOtherKeys = true
		break
	}

	ignoresVal, hasIgnores := e["ignores"]
	if hasOtherKeys {
		return kindFilesLess
	}
	if hasIgnores && ignoresVal != nil {
		return kindGlobalIgnore
	}
	return kindInert
}
