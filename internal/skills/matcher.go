// Package skills detects required skills in normalized resume text.
package skills

import (
	"regexp"
	"strings"
)

const (
	boundaryStart = `(?:^|[^\p{L}\p{N}_])`
	boundaryEnd   = `(?:[^\p{L}\p{N}_]|$)`
)

// Normalizer reduces a phrase to the token surface used by normalized text.
type Normalizer interface {
	NormalizeString(text string) string
}

type skillPattern struct {
	name     string
	patterns []*regexp.Regexp
}

// Matcher holds the compiled patterns of one role. It is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	skills     []skillPattern
	normalizer Normalizer
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithNormalizer adds, for every skill whose words all survive normalization,
// a pattern built from the skill phrase passed through the same normalizer as
// the resume text.
func WithNormalizer(n Normalizer) Option {
	return func(m *Matcher) {
		m.normalizer = n
	}
}

// NewMatcher compiles whole-word, case-insensitive literal patterns for skills.
// Blank and repeated skills are skipped; the first spelling wins.
func NewMatcher(skills []string, opts ...Option) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}

	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		lower := strings.ToLower(strings.TrimSpace(skill))
		if lower == "" {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}

		sp := skillPattern{name: skill, patterns: []*regexp.Regexp{compile(lower)}}
		if normalized, ok := m.normalize(lower); ok {
			sp.patterns = append(sp.patterns, compile(normalized))
		}
		m.skills = append(m.skills, sp)
	}

	return m
}

// normalize returns the normalized form of a skill phrase. A phrase that
// loses a word to stopword or short-token removal has no normalized form:
// "r programming" must not collapse to "program".
func (m *Matcher) normalize(phrase string) (string, bool) {
	if m.normalizer == nil {
		return "", false
	}

	normalized := m.normalizer.NormalizeString(phrase)
	if normalized == "" || normalized == phrase {
		return "", false
	}
	if len(strings.Fields(normalized)) != len(strings.Fields(phrase)) {
		return "", false
	}

	return normalized, true
}

func compile(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + boundaryStart + regexp.QuoteMeta(phrase) + boundaryEnd)
}

// Match returns the skills found in text, in role order, with their original spelling.
func (m *Matcher) Match(text string) []string {
	matched := make([]string, 0, len(m.skills))
	if text == "" {
		return matched
	}

	for _, sp := range m.skills {
		for _, re := range sp.patterns {
			if re.MatchString(text) {
				matched = append(matched, sp.name)
				break
			}
		}
	}

	return matched
}

// Missing returns the role skills that are not in matched, in role order.
func (m *Matcher) Missing(matched []string) []string {
	found := make(map[string]struct{}, len(matched))
	for _, s := range matched {
		found[s] = struct{}{}
	}

	missing := make([]string, 0, len(m.skills))
	for _, sp := range m.skills {
		if _, ok := found[sp.name]; !ok {
			missing = append(missing, sp.name)
		}
	}
	return missing
}

// Skills returns the deduplicated role skills the matcher checks.
func (m *Matcher) Skills() []string {
	out := make([]string, 0, len(m.skills))
	for _, sp := range m.skills {
		out = append(out, sp.name)
	}
	return out
}
