package similarity

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Scorer computes per-skill similarity for a candidate text. Each Score call
// builds its own vector space, so one Scorer can serve concurrent callers.
type Scorer struct {
	maxFeatures int
	logger      *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithMaxFeatures overrides the vocabulary cap.
func WithMaxFeatures(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.maxFeatures = n
		}
	}
}

// WithLogger sets the logger used for degenerate-vocabulary notices.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer creates a Scorer with the default vocabulary cap.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		maxFeatures: DefaultMaxFeatures,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the similarity of text to each skill, in skill order.
// A degenerate vocabulary yields zeros.
func (s *Scorer) Score(text string, skills []string) ([]float64, error) {
	out := make([]float64, len(skills))
	if len(skills) == 0 {
		return out, nil
	}

	docs := make([]string, 0, len(skills)+1)
	docs = append(docs, text)
	docs = append(docs, skills...)

	rows, err := NewVectorizer(s.maxFeatures).Fit(docs)
	if err != nil {
		if errors.Is(err, ErrVocabularyDegenerate) {
			s.logger.Debug("similarity vocabulary is empty, using zero vector",
				zap.Int("skills", len(skills)),
			)
			return out, nil
		}
		return nil, fmt.Errorf("fit vector space: %w", err)
	}

	for i := range skills {
		out[i] = Cosine(rows[0], rows[i+1])
	}
	return out, nil
}
