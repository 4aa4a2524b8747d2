package ignore_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vbhat161/configarray/match/glob"
	"github.com/vbhat161/configarray/match/ignore"
)

func elements(t *testing.T, patterns ...string) []ignore.Element {
	t.Helper()
	els := make([]ignore.Element, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		require.NoError(t, err)
		els = append(els, ignore.Element{Pattern: g})
	}
	return els
}

func TestNegationOrdering(t *testing.T) {
	// ['!a.txt', '**/*.txt'] - a.txt ends up ignored, since the negation
	// comes before the later broad exclude.
	els := elements(t, "!a.txt", "**/*.txt")
	require.True(t, ignore.IsIgnored(els, "/base", "a.txt", false))

	// ['**/*.txt', '!a.txt'] - reversed order un-ignores it.
	els2 := elements(t, "**/*.txt", "!a.txt")
	require.False(t, ignore.IsIgnored(els2, "/base", "a.txt", false))
}

func TestDirectoryIgnorePropagatesToDescendantFile(t *testing.T) {
	els := elements(t, "foo/")
	require.True(t, ignore.IsIgnored(els, "/base", "foo/a.js", false))
	require.True(t, ignore.IsIgnored(els, "/base", "foo", true))
}

func TestNegatedFileInsideNonIgnoredTree(t *testing.T) {
	els := elements(t, "**/*.test.js", "!foo.test.js")
	require.True(t, ignore.IsIgnored(els, "/base", "bar.test.js", false))
	require.False(t, ignore.IsIgnored(els, "/base", "foo.test.js", false))
}

func TestDescendantReincludeCannotEscapeAncestorIgnore(t *testing.T) {
	els := elements(t, "**/node_modules/**", "!node_modules/pkg/**")
	require.True(t, ignore.IsIgnored(els, "/base", "node_modules/pkg/a.js", false))
	require.True(t, ignore.IsIgnored(els, "/base", "node_modules/pkg", true))
}

func TestPredicateElement(t *testing.T) {
	els := []ignore.Element{
		{Predicate: func(absPath string) bool { return absPath == "/base/secret.env" }},
	}
	require.True(t, ignore.IsIgnored(els, "/base", "secret.env", false))
	require.False(t, ignore.IsIgnored(els, "/base", "other.env", false))
}

func TestOutsideBasePathIsIgnored(t *testing.T) {
	require.True(t, ignore.IsIgnored(nil, "/base", "../outside.js", false))
}

func TestEmptyRelPathIsNotIgnored(t *testing.T) {
	els := elements(t, "**/*.js")
	require.False(t, ignore.IsIgnored(els, "/base", "", true))
}
