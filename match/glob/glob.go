// Package glob implements a single gitignore/minimatch-style pattern matcher.
//
// It classifies a pattern string (negated, directory-only, double-star or
// single-star suffixed, root-anchored) and compiles it to a regular
// expression that matches a slash-separated path relative to some base.
// Classification and matching are kept separate so that callers implementing
// the ignore negation algebra (see match/ignore) can apply the directory and
// ancestor rules themselves instead of baking them into the regex.
package glob

import (
	"fmt"
	"strings"

	gobwasglob "github.com/gobwas/glob"
	regexp "github.com/wasilibs/go-re2"
)

// Pattern is a compiled string pattern plus its derived classification.
type Pattern struct {
	Raw              string
	Negated          bool
	DirectoryOnly    bool
	RootAnchored     bool
	DoubleStarSuffix bool
	SingleStarSuffix bool

	// Source is the compiled regular expression backing MatchString, in RE2
	// syntax. It is exported so a set of patterns can be bulk-compiled into a
	// single multi-pattern matcher (see match/ignore's fast-path set).
	Source string

	re *regexp.Regexp
}

// Compile parses and compiles a single gitignore-style pattern. The leading
// "!" negation marker, if present, is stripped and recorded on Negated; it
// plays no part in the compiled regular expression itself since negation
// ordering is an algebra concern handled by the caller, not a single-pattern
// one (see match/ignore).
func Compile(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, fmt.Errorf("glob: empty pattern")
	}

	l := raw
	negated := false
	if strings.HasPrefix(l, "!") {
		negated = true
		l = l[1:]
	}
	if l == "" {
		return nil, fmt.Errorf("glob: pattern %q has no content after negation marker", raw)
	}

	rootAnchored := strings.HasPrefix(l, "/")
	if rootAnchored {
		l = l[1:]
	}
	afterRoot := l

	doubleStarSuffix := strings.HasSuffix(l, "/**")
	directoryOnly := false
	core := l
	if doubleStarSuffix {
		core = strings.TrimSuffix(l, "/**")
	} else {
		directoryOnly = strings.HasSuffix(l, "/")
		if directoryOnly {
			core = strings.TrimSuffix(l, "/")
		}
	}
	singleStarSuffix := !doubleStarSuffix && !directoryOnly && strings.HasSuffix(l, "/*")

	if core == "" {
		// The pattern was exactly "/" (possibly negated): compile it as "**",
		// which matches any single top-level path segment.
		core = "**"
	}

	// A bare trailing "/" does not anchor a pattern in gitignore semantics
	// (it only restricts the match to directories); every other interior
	// slash - including the one immediately before a "/**" or "/*" suffix -
	// anchors the pattern to the base path, per the documented gitignore
	// rule that "dir/**" is relative to the .gitignore's own location.
	slashCheckSource := afterRoot
	if directoryOnly {
		slashCheckSource = core
	}
	hasInteriorSlash := strings.Contains(slashCheckSource, "/")
	basenameOnly := !rootAnchored && !hasInteriorSlash

	core = strings.ReplaceAll(core, "[!", "[^")
	body := translateCore(core)

	anchorPrefix := ""
	if basenameOnly {
		// No slash anywhere in the pattern: match the basename at any depth
		// (the default matchBase behavior).
		anchorPrefix = `(?:|.*/)`
	}

	expr := body
	if doubleStarSuffix {
		// "foo/**" matches the directory itself and everything below it.
		expr = body + `(?:|/.*)`
	}

	full := "^" + anchorPrefix + expr + "$"
	re, err := regexp.Compile(full)
	if err != nil {
		return nil, fmt.Errorf("glob: compile pattern %q: %w", raw, err)
	}

	return &Pattern{
		Raw:              raw,
		Negated:          negated,
		DirectoryOnly:    directoryOnly,
		RootAnchored:     rootAnchored,
		DoubleStarSuffix: doubleStarSuffix,
		SingleStarSuffix: singleStarSuffix,
		Source:           full,
		re:               re,
	}, nil
}

// MatchString reports whether the pattern matches a slash-separated path
// relative to the matcher's base. The path must already be normalized
// (forward slashes, no leading "./").
func (p *Pattern) MatchString(relPath string) bool {
	return p.re.MatchString(relPath)
}

// ValidateSyntax performs a cheap syntax check of a raw pattern string using
// a second, independent glob implementation. It catches malformed bracket
// expressions and similar mistakes early, at schema-validate time, before the
// gitignore-flavored compiler below ever runs - mirroring how the upstream
// matcher validated patterns eagerly rather than failing lazily on first use.
func ValidateSyntax(raw string) error {
	l := strings.TrimPrefix(raw, "!")
	l = strings.TrimSuffix(l, "/")
	if l == "" {
		return fmt.Errorf("glob: pattern %q has no content", raw)
	}
	if _, err := gobwasglob.Compile(l, '/'); err != nil {
		return fmt.Errorf("glob: invalid pattern %q: %w", raw, err)
	}
	return nil
}

var (
	reDoubleStarWrapped = regexp.MustCompile(`/\*\*/`)
	reDoubleStarPrefix  = regexp.MustCompile(`\*\*/`)
	reDoubleStarSuffix  = regexp.MustCompile(`/\*\*`)
	reEscapedStar       = regexp.MustCompile(`\\\*`)
	reLoneStar          = regexp.MustCompile(`\*`)
	reDot               = regexp.MustCompile(`\.`)
	reQuestionMark      = regexp.MustCompile(`(^|[^\\])\?`)
)

// translateCore turns the non-suffix portion of a gitignore-style pattern
// into a regular expression body. It does not anchor or wrap the result;
// Compile adds the directory/double-star/single-star specific wrapping.
func translateCore(core string) string {
	const placeholder = "#$~"

	l := core
	l = reDot.ReplaceAllString(l, `\.`)
	l = reQuestionMark.ReplaceAllString(l, `$1[^/]`)

	// "/**/" in the middle of a pattern matches zero or more path segments.
	l = reDoubleStarWrapped.ReplaceAllString(l, `(?:/|/.+/)`)
	// A leading or mid-pattern "**/" matches zero or more leading segments.
	l = reDoubleStarPrefix.ReplaceAllString(l, `(?:|.`+placeholder+`/)`)
	// A lone "/**" that survived suffix-stripping (the inner one of
	// "a/**/**", for instance) matches any remaining path.
	l = reDoubleStarSuffix.ReplaceAllString(l, `/.`+placeholder)

	l = reEscapedStar.ReplaceAllString(l, `\`+placeholder)
	l = reLoneStar.ReplaceAllString(l, `[^/]*`)

	return strings.ReplaceAll(l, placeholder, "*")
}
