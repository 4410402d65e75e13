// Package similarity computes TF-IDF cosine similarity between a resume and role skills.
package similarity

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/resume-ranker/internal/textnorm"
)

// DefaultMaxFeatures caps the vocabulary of a single vector space.
const DefaultMaxFeatures = 1000

// ErrVocabularyDegenerate is returned when the documents share no usable terms.
var ErrVocabularyDegenerate = errors.New("vocabulary is empty")

var termPattern = regexp.MustCompile(`\w\w+`)

// Vectorizer builds a TF-IDF vector space over a fixed set of documents.
// A Vectorizer is used for one Fit call and is not shared between goroutines.
type Vectorizer struct {
	maxFeatures int
	vocabulary  []string
	index       map[string]int
}

// NewVectorizer returns a vectorizer that keeps at most maxFeatures terms.
func NewVectorizer(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Vectorizer{maxFeatures: maxFeatures}
}

// Vocabulary returns the retained terms in lexicographic order.
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.vocabulary...)
}

// Fit learns the vocabulary of docs and returns one L2-normalized row per document.
func (v *Vectorizer) Fit(docs []string) ([][]float64, error) {
	counts := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range analyze(doc) {
			counts[i][term]++
			totals[term]++
		}
	}

	if len(totals) == 0 {
		return nil, ErrVocabularyDegenerate
	}

	v.vocabulary = limit(totals, v.maxFeatures)
	v.index = make(map[string]int, len(v.vocabulary))
	for i, term := range v.vocabulary {
		v.index[term] = i
	}

	n := float64(len(docs))
	idf := make([]float64, len(v.vocabulary))
	for j, term := range v.vocabulary {
		df := 0
		for _, c := range counts {
			if c[term] > 0 {
				df++
			}
		}
		idf[j] = math.Log((1+n)/(1+float64(df))) + 1
	}

	rows := make([][]float64, len(docs))
	for i, c := range counts {
		row := make([]float64, len(v.vocabulary))
		for term, count := range c {
			if j, ok := v.index[term]; ok {
				row[j] = float64(count) * idf[j]
			}
		}
		normalize(row)
		rows[i] = row
	}

	return rows, nil
}

func analyze(doc string) []string {
	terms := termPattern.FindAllString(strings.ToLower(doc), -1)
	out := terms[:0]
	for _, term := range terms {
		if !textnorm.IsStopword(term) {
			out = append(out, term)
		}
	}
	return out
}

// limit keeps the max most frequent terms, ties broken by term, and returns
// them sorted lexicographically.
func limit(totals map[string]int, max int) []string {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}

	if len(terms) > max {
		sort.Slice(terms, func(i, j int) bool {
			if totals[terms[i]] != totals[terms[j]] {
				return totals[terms[i]] > totals[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:max]
	}

	sort.Strings(terms)
	return terms
}

func normalize(row []float64) {
	var sum float64
	for _, x := range row {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}

// Cosine returns the cosine similarity of two L2-normalized rows clamped to [0, 1].
func Cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += a[i] * b[i]
	}
	return math.Max(0, math.Min(1, dot))
}
