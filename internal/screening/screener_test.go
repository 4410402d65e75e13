package screening

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/ai"
	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/similarity"
	"github.com/spigell/resume-ranker/internal/textnorm"
)

func newScreener(t *testing.T, cfg Config, reviewer ai.Reviewer, log *zap.Logger) *Screener {
	t.Helper()

	s, err := New(cfg, Deps{
		Normalizer: textnorm.New(),
		Scorer:     similarity.NewScorer(),
		Reviewer:   reviewer,
		Logger:     log,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func TestScreenEndToEnd(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	s := newScreener(t, Config{}, nil, zap.New(core))

	role := Role{Name: "Backend", Skills: []string{"Python", "SQL"}}
	candidates := []Candidate{
		{ID: "c.pdf", Text: ""},
		{ID: "b.pdf", Text: "Experienced Python engineer"},
		{ID: "a.pdf", Text: "Python and SQL developer"},
		{ID: "d.docx", Err: errors.New("unsupported format: .doc")},
	}

	result, err := s.Screen(context.Background(), role, candidates)
	if err != nil {
		t.Fatalf("Screen returned error: %v", err)
	}

	want := ranking.Ranking{
		{Rank: 1, CandidateID: "a.pdf", Score: 100},
		{Rank: 2, CandidateID: "b.pdf", Score: 50},
		{Rank: 3, CandidateID: "c.pdf", Score: 0},
	}
	if !reflect.DeepEqual(result.Ranking, want) {
		t.Fatalf("Ranking = %#v, want %#v", result.Ranking, want)
	}

	if got := result.Details["a.pdf"].MatchedSkills; !reflect.DeepEqual(got, []string{"Python", "SQL"}) {
		t.Fatalf("matched skills for a.pdf = %v", got)
	}
	if got := result.Details["b.pdf"].MissingSkills; !reflect.DeepEqual(got, []string{"SQL"}) {
		t.Fatalf("missing skills for b.pdf = %v", got)
	}
	c := result.Details["c.pdf"]
	if !c.Empty || len(c.MatchedSkills) != 0 || c.Score != 0 {
		t.Fatalf("unexpected detail for empty candidate: %+v", c)
	}
	if len(c.Similarity) != 2 || c.Similarity[0] != 0 || c.Similarity[1] != 0 {
		t.Fatalf("unexpected similarity for empty candidate: %v", c.Similarity)
	}

	if len(result.Excluded) != 1 || result.Excluded[0].CandidateID != "d.docx" || result.Excluded[0].Reason == "" {
		t.Fatalf("unexpected exclusions: %+v", result.Excluded)
	}

	if logs.FilterMessage("candidate scored as zero").Len() != 1 {
		t.Fatalf("expected an empty input warning")
	}
}

func TestScreenSimilarityComparesStems(t *testing.T) {
	t.Parallel()

	s := newScreener(t, Config{}, nil, nil)
	role := Role{Name: "Analyst", Skills: []string{"Statistics", "SQL"}}

	result, err := s.Screen(context.Background(), role, []Candidate{{ID: "a.pdf", Text: "Statistics analyst"}})
	if err != nil {
		t.Fatalf("Screen returned error: %v", err)
	}

	sim := result.Details["a.pdf"].Similarity
	if len(sim) != 2 {
		t.Fatalf("expected one similarity per skill, got %v", sim)
	}
	if sim[0] <= 0 {
		t.Fatalf("expected positive similarity for a matched stemmed skill, got %v", sim)
	}
	if sim[1] != 0 {
		t.Fatalf("expected zero similarity for an absent skill, got %v", sim)
	}
}

func TestScreenRepeatedSkillsCountOnce(t *testing.T) {
	t.Parallel()

	s := newScreener(t, Config{}, nil, nil)
	role := Role{Name: "Backend", Skills: []string{"Python", "python", "SQL"}}

	result, err := s.Screen(context.Background(), role, []Candidate{{ID: "a.pdf", Text: "python"}})
	if err != nil {
		t.Fatalf("Screen returned error: %v", err)
	}

	if !reflect.DeepEqual(result.Skills, []string{"Python", "SQL"}) {
		t.Fatalf("Skills = %v", result.Skills)
	}
	if got := result.Details["a.pdf"].Score; got != 50 {
		t.Fatalf("Score = %v, want 50", got)
	}
}

func TestScreenTiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	s := newScreener(t, Config{}, nil, nil)
	role := Role{Name: "Data", Skills: []string{"SQL"}}
	candidates := []Candidate{
		{ID: "z.pdf", Text: "nothing relevant"},
		{ID: "y.pdf", Text: "sql reports"},
		{ID: "x.pdf", Text: ""},
		{ID: "w.pdf", Text: "sql pipelines"},
	}

	result, err := s.Screen(context.Background(), role, candidates)
	if err != nil {
		t.Fatalf("Screen returned error: %v", err)
	}
	if got := result.Ranking.IDs(); !reflect.DeepEqual(got, []string{"y.pdf", "w.pdf", "z.pdf", "x.pdf"}) {
		t.Fatalf("ranking order = %v", got)
	}
}

func TestScreenInvalidRole(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	s := newScreener(t, Config{}, nil, zap.New(core))

	for _, role := range []Role{{Name: "Empty"}, {Name: "Blank", Skills: []string{" ", ""}}} {
		_, err := s.Screen(context.Background(), role, []Candidate{{ID: "a.pdf", Text: "python"}})
		if !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("Screen(%s) error = %v, want ErrInvalidRole", role.Name, err)
		}
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no candidate processing, got %d log entries", logs.Len())
	}
}

func TestScreenParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	role := Role{Name: "Data Scientist", Skills: []string{"Python", "R", "SQL", "Machine Learning", "Statistics"}}
	texts := []string{
		"statistics and machine learning with python",
		"sql only",
		"",
		"python sql statistics",
		"director of sales",
		"machine learning researcher, python, sql, statistics",
	}
	var candidates []Candidate
	for i := 0; i < 40; i++ {
		candidates = append(candidates, Candidate{ID: fmt.Sprintf("cv-%02d.pdf", i), Text: texts[i%len(texts)]})
	}

	sequential, err := newScreener(t, Config{Workers: 1}, nil, nil).Screen(context.Background(), role, candidates)
	if err != nil {
		t.Fatalf("sequential Screen returned error: %v", err)
	}
	parallel, err := newScreener(t, Config{Workers: 8}, nil, nil).Screen(context.Background(), role, candidates)
	if err != nil {
		t.Fatalf("parallel Screen returned error: %v", err)
	}

	if !reflect.DeepEqual(sequential.Ranking, parallel.Ranking) {
		t.Fatalf("parallel ranking differs from sequential ranking")
	}
}

func TestScreenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newScreener(t, Config{Workers: 2}, nil, nil)
	_, err := s.Screen(ctx, Role{Name: "Go", Skills: []string{"Go"}}, []Candidate{{ID: "a.txt", Text: "golang"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Screen error = %v, want context.Canceled", err)
	}
}

func TestScreenDuplicateIDs(t *testing.T) {
	t.Parallel()

	s := newScreener(t, Config{}, nil, nil)
	result, err := s.Screen(context.Background(), Role{Name: "Go", Skills: []string{"SQL"}}, []Candidate{
		{ID: "a.pdf", Text: "sql"},
		{ID: "a.pdf", Text: "nothing"},
	})
	if err != nil {
		t.Fatalf("Screen returned error: %v", err)
	}
	if len(result.Ranking) != 1 || len(result.Excluded) != 1 {
		t.Fatalf("unexpected result: ranking=%v excluded=%v", result.Ranking, result.Excluded)
	}
}

type stubReviewer struct {
	calls []string
	err   error
}

func (s *stubReviewer) Review(_ context.Context, subject ai.Subject) (*ai.Review, error) {
	s.calls = append(s.calls, subject.CandidateID)
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Review{Summary: "rank " + fmt.Sprint(subject.Rank)}, nil
}

func TestScreenReviewsTopCandidates(t *testing.T) {
	t.Parallel()

	reviewer := &stubReviewer{}
	s := newScreener(t, Config{ReviewTop: 2}, reviewer, nil)
	role := Role{Name: "Backend", Skills: []string{"Python", "SQL"}}
	candidates := []Candidate{
		{ID: "c.pdf", Text: ""},
		{ID: "b.pdf", Text: "python"},
		{ID: "a.pdf", Text: "python sql"},
	}

	result, err := s.Screen(context.Background(), role, candidates)
	if err != nil {
		t.Fatalf("Screen returned error: %v", err)
	}
	if !reflect.DeepEqual(reviewer.calls, []string{"a.pdf", "b.pdf"}) {
		t.Fatalf("reviewed candidates = %v", reviewer.calls)
	}
	if result.Details["a.pdf"].Review == nil || result.Details["a.pdf"].Review.Summary != "rank 1" {
		t.Fatalf("missing review for a.pdf")
	}
	if result.Details["c.pdf"].Review != nil {
		t.Fatalf("unexpected review for c.pdf")
	}
}

func TestScreenReviewFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	reviewer := &stubReviewer{err: errors.New("quota exceeded")}
	s := newScreener(t, Config{}, reviewer, nil)

	result, err := s.Screen(context.Background(), Role{Name: "Go", Skills: []string{"SQL"}}, []Candidate{{ID: "a.pdf", Text: "sql"}})
	if err != nil {
		t.Fatalf("Screen returned error: %v", err)
	}
	if got := result.Details["a.pdf"].Review; got == nil || got.Error != "quota exceeded" {
		t.Fatalf("unexpected review: %+v", got)
	}
	if result.Ranking[0].Score != 100 {
		t.Fatalf("review changed score: %v", result.Ranking[0].Score)
	}
}

func TestNewRequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, Deps{Scorer: similarity.NewScorer()}); err == nil {
		t.Fatalf("expected error without normalizer")
	}
	if _, err := New(Config{}, Deps{Normalizer: textnorm.New()}); err == nil {
		t.Fatalf("expected error without scorer")
	}
}
