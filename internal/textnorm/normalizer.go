// Package textnorm reduces raw resume text to a canonical stream of lowercase lemma tokens.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokenLength drops tokens of two characters or fewer.
const DefaultMinTokenLength = 3

// Normalizer turns raw text into normalized tokens. It holds no mutable state
// after construction, so a single instance can serve concurrent callers.
type Normalizer struct {
	lemmatizer Lemmatizer
	minLength  int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLemmatizer replaces the default snowball lemmatizer.
func WithLemmatizer(l Lemmatizer) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.lemmatizer = l
		}
	}
}

// WithMinTokenLength sets the minimal rune length a source token must have to survive.
func WithMinTokenLength(length int) Option {
	return func(n *Normalizer) {
		if length > 0 {
			n.minLength = length
		}
	}
}

// New creates a Normalizer with the snowball lemmatizer and the default minimal token length.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		lemmatizer: Snowball{},
		minLength:  DefaultMinTokenLength,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize tokenizes text, lemmatizes and lowercases each token and drops
// stopwords and short tokens. Source order is preserved. Empty input yields an
// empty slice.
func (n *Normalizer) Normalize(text string) []string {
	out := make([]string, 0)
	if strings.TrimSpace(text) == "" {
		return out
	}

	for _, token := range Tokenize(norm.NFKC.String(text)) {
		if utf8.RuneCountInString(token) < n.minLength {
			continue
		}

		lower := strings.ToLower(token)
		if IsStopword(lower) {
			continue
		}

		lemma := strings.ToLower(n.lemmatizer.Lemma(lower))
		if lemma == "" {
			continue
		}
		out = append(out, lemma)
	}

	return out
}

// NormalizeString is Normalize followed by Join.
func (n *Normalizer) NormalizeString(text string) string {
	return Join(n.Normalize(text))
}

// Join renders normalized tokens as a single space separated string.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}

// Tokenize splits text into maximal runs of letters, digits and the characters
// '+', '#' and '.', so that names like "c++", "c#" and "node.js" stay whole.
// Dots at either end of a run are trimmed.
func Tokenize(text string) []string {
	var (
		tokens []string
		word   strings.Builder
	)

	flush := func() {
		if word.Len() == 0 {
			return
		}
		token := strings.Trim(word.String(), ".")
		word.Reset()
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	for _, r := range text {
		if isWordRune(r) {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.'
}
