package textnorm

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

const (
	// LemmatizerSnowball reduces words with the English snowball stemmer.
	LemmatizerSnowball = "snowball"
	// LemmatizerNone keeps words as they are.
	LemmatizerNone = "none"
)

// Lemmatizer computes the base form of a lowercase word.
type Lemmatizer interface {
	Lemma(word string) string
}

// Snowball lemmatizes pure-letter words with the English snowball stemmer.
// Words containing digits or symbols ("node.js", "c++", "html5") are returned unchanged.
type Snowball struct{}

func (Snowball) Lemma(word string) string {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return word
		}
	}
	return english.Stem(word, false)
}

// Identity returns words unchanged.
type Identity struct{}

func (Identity) Lemma(word string) string { return word }

// LemmatizerByName resolves a configured lemmatizer name. An empty name selects snowball.
func LemmatizerByName(name string) (Lemmatizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LemmatizerSnowball:
		return Snowball{}, nil
	case LemmatizerNone:
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("unknown lemmatizer: %s", name)
	}
}
