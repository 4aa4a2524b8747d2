// Package configarray resolves the effective configuration for a file out of
// an ordered list of config entries, each scoped by files/ignores patterns,
// merged through a pluggable schema. It also answers whether a given file or
// directory is ignored, using the same gitignore-flavored negation algebra
// upstream tooling like ESLint's flat config relies on.
package configarray

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/vbhat161/configarray/match/glob"
	"github.com/vbhat161/configarray/match/ignore"
	"github.com/vbhat161/configarray/schema"
)

// PreprocessConfigFunc runs once per raw entry as it is flattened out of the
// input list, before schema validation. It may rewrite the entry (for
// example, expanding a caller-specific shorthand key into core keys).
type PreprocessConfigFunc func(ca *ConfigArray, entry Entry) (Entry, error)

// FinalizeConfigFunc runs once per distinct merged result, after the schema
// merge and before it is handed back from GetConfig. It may reject or adjust
// the fully merged configuration.
type FinalizeConfigFunc func(ca *ConfigArray, merged Entry) (Entry, error)

// Options configures a ConfigArray at construction time.
type Options struct {
	// BasePath is the directory every entry's files/ignores patterns and
	// every queried path is resolved relative to. Required.
	BasePath string

	// Schema supplies additional key strategies beyond the base "name",
	// "files" and "ignores" ones.
	Schema map[string]schema.Strategy

	// ExtraConfigTypes opts into nested arrays and/or factory functions
	// appearing in the input list.
	ExtraConfigTypes ExtraConfigTypes

	PreprocessConfig PreprocessConfigFunc
	FinalizeConfig   FinalizeConfigFunc
}

// patternElem is one element of a files pattern group: either a compiled
// string pattern or a predicate function. A files entry is an ordered list of
// groups (OR), each group itself an ordered list of elements (AND).
type patternElem struct {
	pattern   *glob.Pattern
	predicate func(absPath string) bool
}

func (pe patternElem) matches(absPath, relPath string) bool {
	if pe.pattern != nil {
		return pe.pattern.MatchString(relPath)
	}
	return pe.predicate(absPath)
}

// compiledEntry is the precompiled form of one normalized Entry, built once
// at normalize time so GetConfig never recompiles a pattern.
type compiledEntry struct {
	index          int
	name           string
	kind           entryKind
	raw            Entry
	filesGroups    [][]patternElem
	ignoreElements []ignore.Element
	err            error // ErrInvalidFiles, surfaced lazily at query time
}

// ConfigArray is an ordered, normalized list of config entries. It must be
// normalized via Normalize or NormalizeSync before any query method is used.
type ConfigArray struct {
	basePath         string
	extraConfigTypes ExtraConfigTypes
	preprocessConfig PreprocessConfigFunc
	finalizeConfig   FinalizeConfigFunc
	schema           *schema.Schema

	mu       sync.Mutex
	pending  []any
	entries  []Entry
	compiled []compiledEntry

	globalIgnores []ignore.Element
	globalFast    *ignore.FastSet
	normalized    bool

	cache *configCache
}

// New creates a ConfigArray over the given initial items (config entries,
// and - if enabled via Options.ExtraConfigTypes - nested arrays or factory
// functions). Additional items can be appended with Push until the array is
// normalized.
func New(opts Options, items ...any) *ConfigArray {
	ca := &ConfigArray{
		basePath:         opts.BasePath,
		extraConfigTypes: opts.ExtraConfigTypes,
		preprocessConfig: opts.PreprocessConfig,
		finalizeConfig:   opts.FinalizeConfig,
		schema:           schema.New(opts.Schema),
		cache:            newConfigCache(),
	}
	ca.pending = append(ca.pending, items...)
	return ca
}

// Push appends additional raw items to the array. It fails with
// ErrNotExtensible once the array has been normalized.
func (ca *ConfigArray) Push(items ...any) error {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	if ca.normalized {
		return ErrNotExtensible
	}
	ca.pending = append(ca.pending, items...)
	return nil
}

// NormalizeSync flattens and compiles the array without suspending for any
// asynchronous factory result. A factory returning a Deferred value fails
// normalization with ErrAsyncNotSupported. Calling NormalizeSync (or
// Normalize) again after a successful call is a no-op: normalization is
// idempotent.
func (ca *ConfigArray) NormalizeSync(factoryContext any) error {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return ca.doNormalize(context.Background(), factoryContext, false)
}

// Normalize flattens and compiles the array, awaiting any Deferred value a
// factory returns. It is idempotent and safe to call more than once.
func (ca *ConfigArray) Normalize(ctx context.Context, factoryContext any) error {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return ca.doNormalize(ctx, factoryContext, true)
}

func (ca *ConfigArray) doNormalize(ctx context.Context, factoryContext any, allowAsync bool) error {
	if ca.normalized {
		return nil
	}

	var flattened []Entry
	for _, item := range ca.pending {
		es, err := ca.normalizeItem(ctx, item, factoryContext, allowAsync)
		if err != nil {
			return err
		}
		flattened = append(flattened, es...)
	}

	for _, e := range flattened {
		if err := ca.schema.Validate(e); err != nil {
			var verr *schema.ValidationError
			if errors.As(err, &verr) && verr.Key == "files" {
				// Structural "files" problems are surfaced lazily, by any
				// GetConfig query that reaches this entry.
				continue
			}
			return err
		}
	}

	ca.entries = flattened
	ca.compiled, ca.globalIgnores = ca.compileEntries(flattened)
	ca.globalFast = ignore.BuildFastSet(ca.globalIgnores)
	ca.normalized = true
	return nil
}

func (ca *ConfigArray) compileEntries(entries []Entry) ([]compiledEntry, []ignore.Element) {
	compiled := make([]compiledEntry, 0, len(entries))
	var globalIgnores []ignore.Element

	for idx, e := range entries {
		kind := classify(e)
		name, _ := e["name"].(string)
		ce := compiledEntry{index: idx, name: name, kind: kind, raw: e}

		if kind == kindOrdinary {
			groups, err := compileFilesValue(e["files"])
			if err != nil {
				ce.err = err
			} else {
				ce.filesGroups = groups
			}
		}

		if iv, ok := e["ignores"]; ok && iv != nil {
			els, err := compileIgnoresValue(iv)
			if err == nil {
				ce.ignoreElements = els
			}
		}

		compiled = append(compiled, ce)
		if kind == kindGlobalIgnore {
			globalIgnores = append(globalIgnores, ce.ignoreElements...)
		}
	}

	return compiled, globalIgnores
}

func compileFilesValue(v any) ([][]patternElem, error) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, ErrInvalidFiles
	}

	groups := make([][]patternElem, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			p, err := glob.Compile(t)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFiles, err)
			}
			groups = append(groups, []patternElem{{pattern: p}})
		case AndPattern:
			g, err := compileAndGroup([]any(t))
			if err != nil {
				return nil, err
			}
			groups = append(groups, g)
		case []any:
			g, err := compileAndGroup(t)
			if err != nil {
				return nil, err
			}
			groups = append(groups, g)
		default:
			if pred, ok := asPredicate(item); ok {
				groups = append(groups, []patternElem{{predicate: pred}})
				continue
			}
			return nil, fmt.Errorf("%w: element of type %T", ErrInvalidFiles, item)
		}
	}
	return groups, nil
}

func compileAndGroup(items []any) ([]patternElem, error) {
	group := make([]patternElem, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			p, err := glob.Compile(t)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFiles, err)
			}
			group = append(group, patternElem{pattern: p})
		default:
			pred, ok := asPredicate(item)
			if !ok {
				return nil, fmt.Errorf("%w: AND-pattern element of type %T", ErrInvalidFiles, item)
			}
			group = append(group, patternElem{predicate: pred})
		}
	}
	return group, nil
}

func compileIgnoresValue(v any) ([]ignore.Element, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("configarray: \"ignores\" must be an array")
	}
	els := make([]ignore.Element, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			p, err := glob.Compile(t)
			if err != nil {
				return nil, err
			}
			els = append(els, ignore.Element{Pattern: p})
		default:
			pred, ok := asPredicate(item)
			if !ok {
				return nil, fmt.Errorf("configarray: ignores element of type %T", item)
			}
			els = append(els, ignore.Element{Predicate: pred})
		}
	}
	return els, nil
}

func asPredicate(v any) (func(string) bool, bool) {
	switch p := v.(type) {
	case PredicateFunc:
		return p, true
	case func(string) bool:
		return p, true
	default:
		return nil, false
	}
}

func matchesFiles(ce compiledEntry, absPath, relPath string) bool {
	for _, group := range ce.filesGroups {
		allMatch := true
		for _, pe := range group {
			if !pe.matches(absPath, relPath) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}

// relPath resolves absPath to a slash-separated path relative to basePath.
// The ok result is false only when the two paths cannot be related at all
// (e.g. different volumes); a path that legitimately escapes basePath still
// resolves, as "../something", so the ignore algebra can flag it.
func (ca *ConfigArray) relPath(absPath string) (string, bool) {
	rel, err := filepath.Rel(ca.basePath, absPath)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (ca *ConfigArray) isIgnoredRel(rel string, isDir bool) bool {
	if ca.globalFast != nil && !ca.globalFast.MaybeIgnored(rel) {
		return false
	}
	return ignore.IsIgnored(ca.globalIgnores, ca.basePath, rel, isDir)
}

// IsFileIgnored reports whether absPath is excluded by the array's global
// ignore patterns - entries whose only relevant key is "ignores".
func (ca *ConfigArray) IsFileIgnored(absPath string) (bool, error) {
	if !ca.normalized {
		return false, ErrNotNormalized
	}
	rel, ok := ca.relPath(absPath)
	if !ok {
		return true, nil
	}
	return ca.isIgnoredRel(rel, false), nil
}

// IsDirectoryIgnored reports whether absPath, taken as a directory, is
// excluded by the array's global ignore patterns.
func (ca *ConfigArray) IsDirectoryIgnored(absPath string) (bool, error) {
	if !ca.normalized {
		return false, ErrNotNormalized
	}
	rel, ok := ca.relPath(absPath)
	if !ok {
		return true, nil
	}
	return ca.isIgnoredRel(rel, true), nil
}

// IsExplicitMatch reports whether absPath is named by some entry's "files"
// patterns, as opposed to only ever being picked up by a files-less entry
// that applies to everything.
func (ca *ConfigArray) IsExplicitMatch(absPath string) (bool, error) {
	if !ca.normalized {
		return false, ErrNotNormalized
	}
	rel, ok := ca.relPath(absPath)
	if !ok {
		return false, nil
	}
	for _, ce := range ca.compiled {
		if ce.kind != kindOrdinary || ce.err != nil {
			continue
		}
		if matchesFiles(ce, absPath, rel) {
			return true, nil
		}
	}
	return false, nil
}

// GetConfig returns the effective merged configuration for absPath. Repeated
// calls for the same path return the exact same map value. Files that match
// no entry, or that are globally ignored, return a nil Entry and a nil
// error. An entry with a malformed "files" value makes every query that is
// not globally ignored and reaches that entry fail with ErrInvalidFiles,
// whether or not the file would otherwise have matched it.
func (ca *ConfigArray) GetConfig(absPath string) (Entry, error) {
	if !ca.normalized {
		return nil, ErrNotNormalized
	}

	rel, ok := ca.relPath(absPath)
	if !ok {
		return nil, nil
	}
	if ca.isIgnoredRel(rel, false) {
		return nil, nil
	}

	if cached, ok := ca.cache.getByPath(absPath); ok {
		return cached.entry, cached.err
	}

	var matchedIdx []int
	var matchedRaw []Entry
	var anyOrdinaryMatch, anyExplicit bool

	for _, ce := range ca.compiled {
		switch ce.kind {
		case kindOrdinary:
			if ce.err != nil {
				ca.cache.setByPath(absPath, cacheResult{nil, ce.err})
				return nil, ce.err
			}
			if !matchesFiles(ce, absPath, rel) {
				continue
			}
			// The file is explicitly spoken about by this entry's files,
			// even if its own ignores go on to exclude it.
			anyExplicit = true
			if len(ce.ignoreElements) > 0 && ignore.IsIgnored(ce.ignoreElements, ca.basePath, rel, false) {
				continue
			}
			anyOrdinaryMatch = true
			matchedIdx = append(matchedIdx, ce.index)
			matchedRaw = append(matchedRaw, ce.raw)
		case kindFilesLess:
			if len(ce.ignoreElements) > 0 && ignore.IsIgnored(ce.ignoreElements, ca.basePath, rel, false) {
				continue
			}
			matchedIdx = append(matchedIdx, ce.index)
			matchedRaw = append(matchedRaw, ce.raw)
		default:
			// kindGlobalIgnore and kindInert entries never contribute to a
			// file's merged configuration.
		}
	}

	// A files-less entry alone is not enough to produce a config: at least
	// one ordinary entry must have matched, or the file must be explicitly
	// named by some entry's files (even if that entry's own ignores then
	// excluded it).
	if !anyOrdinaryMatch && !anyExplicit {
		ca.cache.setByPath(absPath, cacheResult{nil, nil})
		return nil, nil
	}

	key := indexSetKey(matchedIdx)
	result := ca.cache.getOrMerge(key, func() cacheResult {
		m := ca.schema.Merge(toRawMaps(matchedRaw))
		if ca.finalizeConfig != nil {
			out, err := ca.finalizeConfig(ca, m)
			if err != nil {
				return cacheResult{nil, err}
			}
			m = out
		}
		return cacheResult{m, nil}
	})

	ca.cache.setByPath(absPath, result)
	return result.entry, result.err
}

// Files returns every top-level string files pattern across every entry, in
// document order, excluding negated patterns and predicate elements. Strings
// inside AND-pattern groups are not included.
func (ca *ConfigArray) Files() ([]string, error) {
	if !ca.normalized {
		return nil, ErrNotNormalized
	}
	var out []string
	for _, e := range ca.entries {
		list, ok := e["files"].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			s, ok := item.(string)
			if ok && !strings.HasPrefix(s, "!") {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

// Ignores returns every string pattern contributed by global-ignore entries
// (entries with no keys besides "ignores" and "name"), in document order.
func (ca *ConfigArray) Ignores() ([]string, error) {
	if !ca.normalized {
		return nil, ErrNotNormalized
	}
	var out []string
	for _, ce := range ca.compiled {
		if ce.kind != kindGlobalIgnore {
			continue
		}
		list, ok := ce.raw["ignores"].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func toRawMaps(entries []Entry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out
}

func indexSetKey(idx []int) string {
	var b strings.Builder
	for i, n := range idx {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
