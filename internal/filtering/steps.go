package filtering

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/documents"
)

type extractionFailedFilter struct {
	disabled bool
	reason   string
}

// NewExtractionFailed creates a filter that removes documents whose text could not be extracted.
func NewExtractionFailed() Filter {
	return &extractionFailedFilter{}
}

func (f *extractionFailedFilter) Name() string { return "extraction_failed" }

func (f *extractionFailedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *extractionFailedFilter) IsEnabled() bool { return !f.disabled }

func (f *extractionFailedFilter) Validate(*Config) error { return nil }

func (f *extractionFailedFilter) Apply(_ context.Context, deps Deps, b *documents.Batch) (*documents.Batch, Step, error) {
	initial := b.Len()
	removed := b.ExcludeFunc(func(d *documents.Document) bool { return d.Err != nil })
	if len(removed) > 0 {
		deps.Logger.Info("excluding documents without extractable text",
			zap.Strings("excluded_documents", ids(removed)),
			zap.Int("documents_left", b.Len()),
		)
	}

	excluded := exclusions(removed, func(d *documents.Document) (string, error) {
		if errors.Is(d.Err, documents.ErrUnsupportedFormat) {
			return d.Err.Error(), d.Err
		}
		return fmt.Sprintf("text extraction failed: %v", d.Err), d.Err
	})
	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len(), Excluded: excluded}, nil
}

func (f *extractionFailedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type formatsFilter struct {
	formats []string
}

// NewFormats creates a filter that removes documents by file formats configured in the config.
func NewFormats() Filter {
	return &formatsFilter{}
}

func (f *formatsFilter) Name() string { return "formats" }

func (f *formatsFilter) Disable(string) {}

func (f *formatsFilter) IsEnabled() bool { return true }

func (f *formatsFilter) Validate(cfg *Config) error {
	f.formats = nil
	if cfg == nil {
		return nil
	}
	for _, format := range cfg.ExcludeFormats {
		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			continue
		}
		if !strings.HasPrefix(format, ".") {
			format = "." + format
		}
		f.formats = append(f.formats, format)
	}
	return nil
}

func (f *formatsFilter) Apply(_ context.Context, deps Deps, b *documents.Batch) (*documents.Batch, Step, error) {
	initial := b.Len()
	if len(f.formats) == 0 {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	skip := make(map[string]struct{}, len(f.formats))
	for _, format := range f.formats {
		skip[format] = struct{}{}
	}
	removed := b.ExcludeFunc(func(d *documents.Document) bool {
		_, ok := skip[d.Format]
		return ok
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding documents by format",
			zap.Strings("excluded_formats", f.formats),
			zap.Strings("excluded_documents", ids(removed)),
			zap.Int("documents_left", b.Len()),
		)
	}

	excluded := exclusions(removed, func(d *documents.Document) (string, error) {
		return fmt.Sprintf("format %s is excluded by configuration", d.Format), nil
	})
	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len(), Excluded: excluded}, nil
}

func (f *formatsFilter) Status() Status {
	details := map[string]string{}
	if len(f.formats) > 0 {
		details["formats"] = strings.Join(f.formats, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes documents listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, b *documents.Batch) (*documents.Batch, Step, error) {
	initial := b.Len()
	if f.path == "" {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	excludedDocs, err := documents.GetExcludedDocumentsFromFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		deps.Logger.Debug("exclude file does not exist yet", zap.String("path", f.path))
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}
	if err != nil {
		return b, Step{}, fmt.Errorf("getting excluded documents from file: %w", err)
	}

	listed := make(map[string]struct{}, len(excludedDocs.Items))
	for _, id := range excludedDocs.IDs() {
		listed[id] = struct{}{}
	}
	removed := b.ExcludeFunc(func(d *documents.Document) bool {
		_, ok := listed[d.ID]
		return ok
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding documents based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_documents", ids(removed)),
			zap.Int("documents_left", b.Len()),
		)
	}

	excluded := exclusions(removed, func(*documents.Document) (string, error) {
		return "listed in exclude file " + f.path, nil
	})
	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len(), Excluded: excluded}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type duplicateIDFilter struct{}

// NewDuplicateID creates a filter that keeps only the first document of each id.
func NewDuplicateID() Filter {
	return &duplicateIDFilter{}
}

func (f *duplicateIDFilter) Name() string { return "duplicate_id" }

func (f *duplicateIDFilter) Disable(string) {}

func (f *duplicateIDFilter) IsEnabled() bool { return true }

func (f *duplicateIDFilter) Validate(*Config) error { return nil }

func (f *duplicateIDFilter) Apply(_ context.Context, deps Deps, b *documents.Batch) (*documents.Batch, Step, error) {
	initial := b.Len()
	first := make(map[string]string, b.Len())
	removed := b.ExcludeFunc(func(d *documents.Document) bool {
		if _, ok := first[d.ID]; ok {
			return true
		}
		first[d.ID] = d.Source
		return false
	})
	if len(removed) > 0 {
		deps.Logger.Warn("excluding documents with duplicate names",
			zap.Strings("excluded_documents", ids(removed)),
			zap.Int("documents_left", b.Len()),
		)
	}

	excluded := exclusions(removed, func(d *documents.Document) (string, error) {
		return fmt.Sprintf("duplicate of %s (%s)", first[d.ID], d.Source), nil
	})
	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len(), Excluded: excluded}, nil
}

func (f *duplicateIDFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
