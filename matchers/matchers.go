package matchers

import (
	"bytes"
	"fmt"
	"regexp"
	"unicode/utf8"

	"logspy/types"
)

// Matcher decides whether a line is of interest. Implementations hold no
// per-line state, so Match can be called for every line of every input.
type Matcher interface {
	Match(line []byte) bool
}

// New builds the matcher selected by the run parameters. An empty pattern
// matches everything; --exact-match takes precedence over --inverse-match.
func New(p types.Params) (Matcher, error) {
	switch {
	case p.Pattern == "":
		return All{}, nil
	case p.ExactMatch:
		return NewExact(p.Pattern, p.IgnoreCase), nil
	case p.InverseMatch:
		return NewInverseRegex(p.Pattern, p.IgnoreCase)
	default:
		return NewRegex(p.Pattern, p.IgnoreCase)
	}
}

// All matches every line.
type All struct{}

func (All) Match([]byte) bool { return true }

// Exact reports lines containing the pattern as a contiguous byte run.
type Exact struct {
	pattern []byte
	fold    bool
}

// NewExact returns a substring matcher. With ignoreCase the pattern is lowered
// once and lines are compared with ASCII case folding, so nothing is allocated
// per line. Patterns with non-ASCII letters fall back to a quoted regex.
func NewExact(pattern string, ignoreCase bool) Matcher {
	if ignoreCase && !isASCII(pattern) {
		return &Regex{re: regexp.MustCompile("(?is)" + regexp.QuoteMeta(pattern))}
	}
	p := []byte(pattern)
	if ignoreCase {
		p = bytes.ToLower(p)
	}
	return &Exact{pattern: p, fold: ignoreCase}
}

func (m *Exact) Match(line []byte) bool {
	if !m.fold {
		return bytes.Contains(line, m.pattern)
	}
	return indexFold(line, m.pattern) >= 0
}

// Regex delegates to a compiled pattern with dot-matches-all semantics. Only
// existence of a match is checked; no submatches are extracted.
type Regex struct {
	re *regexp.Regexp
}

func NewRegex(pattern string, ignoreCase bool) (*Regex, error) {
	re, err := compile(pattern, ignoreCase)
	if err != nil {
		return nil, err
	}
	return &Regex{re: re}, nil
}

func (m *Regex) Match(line []byte) bool {
	return m.re.Match(line)
}

// InverseRegex matches exactly the lines its Regex counterpart rejects.
type InverseRegex struct {
	re *regexp.Regexp
}

func NewInverseRegex(pattern string, ignoreCase bool) (*InverseRegex, error) {
	re, err := compile(pattern, ignoreCase)
	if err != nil {
		return nil, err
	}
	return &InverseRegex{re: re}, nil
}

func (m *InverseRegex) Match(line []byte) bool {
	return !m.re.Match(line)
}

func compile(pattern string, ignoreCase bool) (*regexp.Regexp, error) {
	flags := "(?s)"
	if ignoreCase {
		flags = "(?is)"
	}
	re, err := regexp.Compile(flags + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", types.ErrInvalidPattern, pattern, err)
	}
	return re, nil
}

// indexFold returns the first index of lowered in s under ASCII case folding,
// or -1. lowered must already be lower case.
func indexFold(s, lowered []byte) int {
	n := len(lowered)
	if n == 0 {
		return 0
	}
	first := lowered[0]
	for i := 0; i+n <= len(s); i++ {
		if toLower(s[i]) != first {
			continue
		}
		if equalFold(s[i:i+n], lowered) {
			return i
		}
	}
	return -1
}

func equalFold(s, lowered []byte) bool {
	for i := range lowered {
		if toLower(s[i]) != lowered[i] {
			return false
		}
	}
	return true
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
