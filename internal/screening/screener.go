package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ranker/internal/ai"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/skills"
	"github.com/spigell/resume-ranker/internal/utils"
)

const (
	defaultWorkers   = 1
	defaultReviewTop = 3
	logPreviewLength = 120
)

// Normalizer turns raw text into normalized tokens.
type Normalizer interface {
	Normalize(text string) []string
	NormalizeString(text string) string
}

// SimilarityScorer returns per-skill similarity of a normalized text.
type SimilarityScorer interface {
	Score(text string, skills []string) ([]float64, error)
}

// Config tunes a Screener.
type Config struct {
	// Workers bounds concurrent candidate scoring. Values below 1 mean 1.
	Workers int `mapstructure:"workers"`
	// ReviewTop is the number of leading candidates passed to the reviewer.
	ReviewTop int `mapstructure:"review-top"`
}

// Deps are the collaborators of a Screener. Reviewer and Logger are optional.
type Deps struct {
	Normalizer Normalizer
	Scorer     SimilarityScorer
	Reviewer   ai.Reviewer
	Logger     *zap.Logger
}

// Screener runs the scoring pipeline for a batch of candidates.
type Screener struct {
	cfg        Config
	normalizer Normalizer
	scorer     SimilarityScorer
	reviewer   ai.Reviewer
	logger     *zap.Logger
}

// New validates deps and returns a Screener.
func New(cfg Config, deps Deps) (*Screener, error) {
	if deps.Normalizer == nil {
		return nil, errors.New("screening: normalizer is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("screening: similarity scorer is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkers
	}
	if cfg.ReviewTop <= 0 {
		cfg.ReviewTop = defaultReviewTop
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Screener{
		cfg:        cfg,
		normalizer: deps.Normalizer,
		scorer:     deps.Scorer,
		reviewer:   deps.Reviewer,
		logger:     deps.Logger,
	}, nil
}

type scored struct {
	detail Detail
	text   string
}

// Screen scores candidates against role and ranks them. An invalid role fails
// the whole batch before any candidate is touched. Candidates carrying a
// loader error are excluded; candidates with empty text score 0.
func (s *Screener) Screen(ctx context.Context, role Role, candidates []Candidate) (*Result, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	log := logger.WithRole(s.logger, role.Name)
	matcher := skills.NewMatcher(role.RequiredSkills(), skills.WithNormalizer(s.normalizer))
	required := matcher.Skills()
	skillDocs := s.skillDocuments(required)

	result := &Result{
		Role:     role,
		Skills:   required,
		Details:  make(map[string]Detail, len(candidates)),
		Excluded: make([]Exclusion, 0),
	}

	eligible := make([]Candidate, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			result.Excluded = append(result.Excluded, Exclusion{CandidateID: c.ID, Reason: "duplicate candidate id"})
			continue
		}
		seen[c.ID] = struct{}{}

		if c.Err != nil {
			log.Info("candidate excluded", zap.String(logger.FieldCandidate, c.ID), zap.Error(c.Err))
			result.Excluded = append(result.Excluded, Exclusion{CandidateID: c.ID, Reason: c.Err.Error(), Err: c.Err})
			continue
		}
		eligible = append(eligible, c)
	}

	log.Info("screening candidates",
		zap.Int("candidates", len(eligible)),
		zap.Int("excluded", len(result.Excluded)),
		zap.Int("skills", len(required)),
		zap.Int("workers", s.cfg.Workers),
	)

	slots := make([]scored, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, c := range eligible {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, text, err := s.scoreCandidate(role, c, matcher, required, skillDocs)
			if err != nil {
				return err
			}
			slots[i] = scored{detail: detail, text: text}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]ranking.Score, 0, len(slots))
	for _, slot := range slots {
		scores = append(scores, ranking.Score{CandidateID: slot.detail.CandidateID, Score: slot.detail.Score})
		result.Details[slot.detail.CandidateID] = slot.detail
	}
	result.Ranking = ranking.Rank(scores)

	if s.reviewer != nil {
		texts := make(map[string]string, len(slots))
		for _, slot := range slots {
			texts[slot.detail.CandidateID] = slot.text
		}
		s.review(ctx, result, texts)
	}

	return result, nil
}

// skillDocuments normalizes skills like resume text so both sides of the
// similarity vector share stems. A skill with no surviving token keeps its
// lowercase spelling.
func (s *Screener) skillDocuments(required []string) []string {
	docs := make([]string, len(required))
	for i, skill := range required {
		docs[i] = s.normalizer.NormalizeString(skill)
		if docs[i] == "" {
			docs[i] = strings.ToLower(skill)
		}
	}
	return docs
}

func (s *Screener) scoreCandidate(role Role, c Candidate, matcher *skills.Matcher, required, skillDocs []string) (Detail, string, error) {
	log := logger.WithCandidate(s.logger, role.Name, c.ID)

	empty := strings.TrimSpace(c.Text) == ""
	if empty {
		log.Warn("candidate scored as zero", zap.Error(ErrEmptyInput))
	}

	tokens := s.normalizer.Normalize(c.Text)
	text := strings.Join(tokens, " ")

	similarity, err := s.scorer.Score(text, skillDocs)
	if err != nil {
		return Detail{}, "", fmt.Errorf("similarity for %s: %w", c.ID, err)
	}

	matched := matcher.Match(text)
	score, err := scoring.Calculate(len(matched), len(required))
	if err != nil {
		return Detail{}, "", fmt.Errorf("score %s: %w", c.ID, err)
	}

	log.Debug("candidate scored",
		zap.Int("tokens", len(tokens)),
		zap.Strings("matched", matched),
		zap.Float64s("similarity", similarity),
		zap.String("score", scoring.Format(score)),
		zap.String("text_preview", utils.Preview(text, logPreviewLength)),
	)

	return Detail{
		CandidateID:   c.ID,
		Score:         score,
		MatchedSkills: matched,
		MissingSkills: matcher.Missing(matched),
		Similarity:    similarity,
		Tokens:        len(tokens),
		Empty:         empty,
	}, c.Text, nil
}

func (s *Screener) review(ctx context.Context, result *Result, texts map[string]string) {
	for _, entry := range result.Ranking.Top(s.cfg.ReviewTop) {
		if ctx.Err() != nil {
			return
		}

		detail := result.Details[entry.CandidateID]
		log := logger.WithCandidate(s.logger, result.Role.Name, entry.CandidateID)

		review, err := s.reviewer.Review(ctx, ai.Subject{
			CandidateID: entry.CandidateID,
			Rank:        entry.Rank,
			Role:        result.Role.Name,
			Skills:      result.Role.RequiredSkills(),
			Matched:     detail.MatchedSkills,
			Missing:     detail.MissingSkills,
			Score:       entry.Score,
			Text:        texts[entry.CandidateID],
		})
		if err != nil {
			log.Warn("candidate review failed", zap.Error(err))
			review = &ai.Review{Error: err.Error()}
		}

		detail.Review = review
		result.Details[entry.CandidateID] = detail
	}
}
