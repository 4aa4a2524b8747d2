// Package schema implements the config-entry schema engine: a mapping from
// key name to a validate/merge strategy, seeded with the base strategies for
// "name", "files" and "ignores" and extensible with caller-supplied keys.
package schema

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/vbhat161/configarray/match/glob"
)

// PredicateFunc is a predicate pattern: it receives an absolute path and
// reports whether it matches.
type PredicateFunc func(absPath string) bool

// Strategy describes how a single config-entry key is validated and merged.
// Merge returns (value, false) to mean the key is absent from the merged
// result entirely - the base strategies for name/files/ignores all do this,
// since those keys do not propagate into the resolved configuration.
type Strategy struct {
	Required bool
	Validate func(value any) error
	Merge    func(a, b any) (any, bool)
}

// ValidationError reports that a config entry's value for Key failed
// validation. It always carries the key name, per the core contract.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Key %q: %s", e.Key, e.Message)
}

// Schema is an immutable mapping from key name to Strategy.
type Schema struct {
	strategies map[string]Strategy
}

// New builds a Schema from the base strategies (name, files, ignores)
// overlaid with the caller-supplied extra strategies. A caller strategy for
// one of the base keys replaces the base one.
func New(extra map[string]Strategy) *Schema {
	merged := make(map[string]Strategy, len(baseStrategies)+len(extra))
	for k, v := range baseStrategies {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &Schema{strategies: merged}
}

// Validate checks every recognized key present in entry against its
// strategy, and confirms every required key is present. Keys with no
// registered strategy are accepted unconditionally - deciding their meaning
// is not the core's concern.
func (s *Schema) Validate(entry map[string]any) error {
	for key, value := range entry {
		strat, ok := s.strategies[key]
		if !ok || strat.Validate == nil {
			continue
		}
		if err := strat.Validate(value); err != nil {
			return &ValidationError{Key: key, Message: err.Error()}
		}
	}
	for key, strat := range s.strategies {
		if !strat.Required {
			continue
		}
		if _, present := entry[key]; !present {
			return &ValidationError{Key: key, Message: "is required"}
		}
	}
	return nil
}

// Merge folds an ordered list of matching entries into one, left-associative,
// starting from an empty entry. Neither input entry is mutated.
func (s *Schema) Merge(entries []map[string]any) map[string]any {
	acc := map[string]any{}
	for _, e := range entries {
		acc = s.mergeOne(acc, e)
	}
	return acc
}

func (s *Schema) mergeOne(a, b map[string]any) map[string]any {
	out := map[string]any{}
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}

	for key := range seen {
		av, aok := a[key]
		bv, bok := b[key]

		if strat, ok := s.strategies[key]; ok && strat.Merge != nil {
			if merged, present := strat.Merge(av, bv); present {
				out[key] = merged
			}
			continue
		}

		// No strategy registered for this key: whichever entry set it first,
		// in document order, wins. Overriding a key across entries is a
		// deliberate merge decision and belongs to a registered Strategy
		// (like the "rules"-style deep merge a caller schema would supply),
		// not to this fallback.
		if aok {
			out[key] = av
		} else if bok {
			out[key] = bv
		}
	}
	return out
}

// DeepMergeStrategy builds a Strategy whose merge recursively combines two
// map[string]any values (later entry's leaves win on conflict), using mergo
// rather than a hand-rolled walk. It suits object-valued extension keys like
// an ESLint-style "languageOptions", where later entries should refine
// individual nested fields instead of replacing the whole object.
func DeepMergeStrategy(required bool) Strategy {
	return Strategy{
		Required: required,
		Validate: func(v any) error {
			if v == nil {
				return nil
			}
			if _, ok := v.(map[string]any); !ok {
				return fmt.Errorf("must be an object")
			}
			return nil
		},
		Merge: func(a, b any) (any, bool) {
			am, aok := a.(map[string]any)
			bm, bok := b.(map[string]any)
			switch {
			case !aok && !bok:
				return nil, false
			case !aok:
				return bm, true
			case !bok:
				return am, true
			}

			out := make(map[string]any, len(am)+len(bm))
			for k, v := range am {
				out[k] = v
			}
			if err := mergo.Merge(&out, bm, mergo.WithOverride()); err != nil {
				return bm, true
			}
			return out, true
		},
	}
}

var baseStrategies = map[string]Strategy{
	"name": {
		Validate: func(v any) error {
			if _, ok := v.(string); !ok {
				return fmt.Errorf("must be a string")
			}
			return nil
		},
		Merge: func(a, b any) (any, bool) { return nil, false },
	},
	"files": {
		Validate: validateFiles,
		Merge:    func(a, b any) (any, bool) { return nil, false },
	},
	"ignores": {
		Validate: validateIgnores,
		Merge:    func(a, b any) (any, bool) { return nil, false },
	},
}

func validateFiles(v any) error {
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("must be an array of strings, predicates, or AND-groups")
	}
	if len(list) == 0 {
		return fmt.Errorf("must be a non-empty array")
	}
	for _, elem := range list {
		if err := validateFilesElement(elem); err != nil {
			return err
		}
	}
	return nil
}

func validateFilesElement(elem any) error {
	switch v := elem.(type) {
	case string:
		return glob.ValidateSyntax(v)
	case PredicateFunc:
		return nil
	case func(string) bool:
		return nil
	case []any:
		for _, sub := range v {
			switch sv := sub.(type) {
			case string:
				if err := glob.ValidateSyntax(sv); err != nil {
					return err
				}
			case PredicateFunc, func(string) bool:
				// predicates need no further validation
			default:
				return fmt.Errorf("AND-pattern element must be a string or predicate, got %T", sub)
			}
		}
		return nil
	default:
		return fmt.Errorf("element must be a string, predicate, or AND-group, got %T", elem)
	}
}

func validateIgnores(v any) error {
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("must be an array of strings or predicates")
	}
	for _, elem := range list {
		switch t := elem.(type) {
		case string:
			if err := glob.ValidateSyntax(t); err != nil {
				return err
			}
		case PredicateFunc, func(string) bool:
			// predicates need no further validation
		default:
			return fmt.Errorf("element must be a string or predicate, got %T", t)
		}
	}
	return nil
}
