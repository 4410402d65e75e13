package filtering

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/documents"
)

func newBatch() *documents.Batch {
	return &documents.Batch{Items: []*documents.Document{
		{ID: "a.pdf", Source: "a.pdf", Format: ".pdf", Text: "python"},
		{ID: "b.doc", Source: "b.doc", Format: ".doc", Err: fmt.Errorf("%w: .doc", documents.ErrUnsupportedFormat)},
		{ID: "c.txt", Source: "c.txt", Format: ".txt", Text: "sql"},
		{ID: "d.docx", Source: "d.docx", Format: ".docx", Text: "go"},
		{ID: "a.pdf", Source: "old/a.pdf", Format: ".pdf", Text: "java"},
		{ID: "e.pdf", Source: "e.pdf", Format: ".pdf", Err: errors.New("malformed xref")},
	}}
}

func TestRunDefaultChain(t *testing.T) {
	t.Parallel()

	excludeFile := filepath.Join(t.TempDir(), "exclude.json")
	if err := documents.NewExcluded("Web Developer", []string{"c.txt"}, nil).ToFile(excludeFile); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &Config{ExcludeFile: excludeFile}

	batch, excluded, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Default(), newBatch())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := batch.IDs(); !reflect.DeepEqual(got, []string{"a.pdf", "d.docx"}) {
		t.Fatalf("remaining documents = %v", got)
	}
	if batch.Items[0].Text != "python" {
		t.Fatalf("first occurrence of a duplicate must be kept")
	}

	gotIDs := make([]string, 0, len(excluded))
	for _, e := range excluded {
		if e.Reason == "" {
			t.Fatalf("exclusion without reason: %+v", e)
		}
		gotIDs = append(gotIDs, e.CandidateID)
	}
	if !reflect.DeepEqual(gotIDs, []string{"b.doc", "e.pdf", "c.txt", "a.pdf"}) {
		t.Fatalf("excluded = %v", gotIDs)
	}
	if !errors.Is(excluded[0].Err, documents.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", excluded[0].Err)
	}

	if steps := logs.FilterMessage("filter step").Len(); steps != 4 {
		t.Fatalf("expected 4 filter step log entries, got %d", steps)
	}
}

func TestExcludeFileMissingIsIgnored(t *testing.T) {
	t.Parallel()

	cfg := &Config{ExcludeFile: filepath.Join(t.TempDir(), "missing.json")}
	batch, excluded, err := Run(context.Background(), cfg, Deps{}, []Filter{NewExcludeFile()}, newBatch())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if batch.Len() != 6 || len(excluded) != 0 {
		t.Fatalf("unexpected result: %d documents, %d excluded", batch.Len(), len(excluded))
	}
}

func TestFormatsFilter(t *testing.T) {
	t.Parallel()

	cfg := &Config{ExcludeFormats: []string{"PDF", " "}}
	batch, excluded, err := Run(context.Background(), cfg, Deps{}, []Filter{NewFormats()}, newBatch())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := batch.IDs(); !reflect.DeepEqual(got, []string{"b.doc", "c.txt", "d.docx"}) {
		t.Fatalf("remaining documents = %v", got)
	}
	if len(excluded) != 3 {
		t.Fatalf("expected 3 exclusions, got %d", len(excluded))
	}
}

func TestDisabledFilterIsSkipped(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	steps := []Filter{NewExtractionFailed()}
	DisableByName(steps, "extraction_failed", "keep broken documents")

	batch, _, err := Run(context.Background(), nil, Deps{Logger: zap.New(core)}, steps, newBatch())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if batch.Len() != 6 {
		t.Fatalf("disabled filter dropped documents")
	}
	if logs.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected disabled filter log entry")
	}

	statuses := Describe(steps)
	if len(statuses) != 1 || statuses[0].Enabled || statuses[0].Reason != "keep broken documents" {
		t.Fatalf("unexpected status %+v", statuses)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	steps := Default()
	cfg := &Config{ExcludeFile: "exclude.json", ExcludeFormats: []string{"txt"}}
	for _, step := range steps {
		if err := step.Validate(cfg); err != nil {
			t.Fatalf("Validate(%s): %v", step.Name(), err)
		}
	}

	statuses := Describe(steps)
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.Name)
	}
	if !reflect.DeepEqual(names, []string{"extraction_failed", "formats", "exclude_file", "duplicate_id"}) {
		t.Fatalf("unexpected filter order %v", names)
	}
	if statuses[1].Details["formats"] != ".txt" || statuses[2].Details["path"] != "exclude.json" {
		t.Fatalf("unexpected status details %+v", statuses)
	}
}
