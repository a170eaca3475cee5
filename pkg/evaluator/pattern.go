package evaluator

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"

	"github.com/gobwas/glob"
)

const (
	// MaxPatternProgramSize bounds the number of instructions in a compiled
	// SSID regular expression.
	MaxPatternProgramSize = 1 << 10
	// MaxPatternLength bounds the length of an SSID pattern.
	MaxPatternLength = 1 << 10
)

// ErrPatternTooLarge is returned for patterns over the size limits.
var ErrPatternTooLarge = errors.New("pattern too large")

// Matcher matches SSIDs.
type Matcher interface {
	Match(s string) bool
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(s string) bool {
	return m.re.MatchString(s)
}

type patternKey struct {
	pattern string
	regex   bool
}

// PatternCache compiles SSID patterns on first use. Failed compilations are
// not cached and are retried on the next lookup.
type PatternCache struct {
	entries        map[patternKey]Matcher
	maxProgramSize int
}

// NewPatternCache creates an empty [PatternCache].
func NewPatternCache(maxProgramSize int) *PatternCache {
	if maxProgramSize <= 0 {
		maxProgramSize = MaxPatternProgramSize
	}

	return &PatternCache{
		entries:        make(map[patternKey]Matcher),
		maxProgramSize: maxProgramSize,
	}
}

// Get returns the compiled matcher for pattern. When regex is false the
// pattern is a glob in which only '*' is special.
func (c *PatternCache) Get(pattern string, regex bool) (Matcher, error) {
	key := patternKey{pattern: pattern, regex: regex}
	if m, ok := c.entries[key]; ok {
		return m, nil
	}

	var (
		m   Matcher
		err error
	)

	if regex {
		var re *regexp.Regexp

		re, err = CompileRegex(pattern, c.maxProgramSize)
		if err == nil {
			m = regexMatcher{re: re}
		}
	} else {
		m, err = CompileGlob(pattern)
	}

	if err != nil {
		return nil, err
	}

	c.entries[key] = m

	return m, nil
}

// Len returns the number of cached matchers.
func (c *PatternCache) Len() int {
	return len(c.entries)
}

// Clear drops every cached matcher.
func (c *PatternCache) Clear() {
	clear(c.entries)
}

// CompileRegex compiles pattern, rejecting it if the pattern or its compiled
// program exceed the size limits.
func CompileRegex(pattern string, maxProgramSize int) (*regexp.Regexp, error) {
	if len(pattern) > MaxPatternLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPatternTooLarge, len(pattern))
	}

	parsed, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", pattern, err)
	}

	prog, err := syntax.Compile(parsed.Simplify())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}

	if len(prog.Inst) > maxProgramSize {
		return nil, fmt.Errorf("%w: %d instructions, limit %d", ErrPatternTooLarge, len(prog.Inst), maxProgramSize)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}

	return re, nil
}

// CompileGlob compiles an SSID glob. '*' matches any run of characters and
// everything else is literal. The whole SSID must match.
func CompileGlob(pattern string) (glob.Glob, error) {
	if len(pattern) > MaxPatternLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrPatternTooLarge, len(pattern))
	}

	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = glob.QuoteMeta(p)
	}

	g, err := glob.Compile(strings.Join(parts, "*"))
	if err != nil {
		return nil, fmt.Errorf("compile glob %q: %w", pattern, err)
	}

	return g, nil
}
