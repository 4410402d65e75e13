// Package filtering drops documents from a batch before scoring. Every dropped
// document is reported as an exclusion with a reason.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/documents"
	"github.com/spigell/resume-ranker/internal/screening"
)

// Filter represents a single filtering step applied to a batch.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, b *documents.Batch) (*documents.Batch, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial  int
	Dropped  int
	Left     int
	Excluded []screening.Exclusion
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeFile    string
	ExcludeFormats []string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard filter chain in execution order.
func Default() []Filter {
	return []Filter{
		NewExtractionFailed(),
		NewFormats(),
		NewExcludeFile(),
		NewDuplicateID(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially, returning the remaining batch
// and the exclusions of all steps in the order they happened.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, b *documents.Batch) (*documents.Batch, []screening.Exclusion, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	excluded := make([]screening.Exclusion, 0)
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		if !step.IsEnabled() {
			deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, b)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		b = next
		excluded = append(excluded, info.Excluded...)
	}

	return b, excluded, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func exclusions(docs []*documents.Document, reason func(d *documents.Document) (string, error)) []screening.Exclusion {
	out := make([]screening.Exclusion, 0, len(docs))
	for _, d := range docs {
		text, err := reason(d)
		out = append(out, screening.Exclusion{CandidateID: d.ID, Reason: text, Err: err})
	}
	return out
}

func ids(docs []*documents.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
