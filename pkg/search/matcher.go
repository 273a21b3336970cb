package search

import (
	"fmt"
	"regexp"
)

// Matcher tests candidate identifier suffixes against a compiled pattern.
// The pattern is matched against the 24-character base32 portion only,
// never the "did:plc:" prefix. A Matcher is safe for concurrent use; Go's
// regexp engine guarantees read-only concurrent evaluation.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles the pattern. Compilation failure is a configuration
// error surfaced here, before any worker starts.
func NewMatcher(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern: %v", ErrConfig, err)
	}
	return &Matcher{re: re}, nil
}

// Match reports whether the suffix satisfies the pattern.
func (m *Matcher) Match(suffix []byte) bool {
	return m.re.Match(suffix)
}

// LiteralPrefix returns any literal the pattern anchors the suffix with,
// used for difficulty estimates only.
func (m *Matcher) LiteralPrefix() string {
	prefix, _ := m.re.LiteralPrefix()
	return prefix
}
