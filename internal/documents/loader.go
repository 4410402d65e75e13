package documents

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// LoadOptions control which files become documents.
type LoadOptions struct {
	// IncludeUnsupported keeps files without an extractor as documents carrying
	// ErrUnsupportedFormat, so they are reported as excluded instead of skipped.
	IncludeUnsupported bool
	Logger             *zap.Logger
}

type entry struct {
	name string
	read func() ([]byte, error)
}

// Load reads a directory, a zip archive or a single file. Documents are
// returned in lexical order of their paths inside the input.
func Load(ctx context.Context, input string, opts LoadOptions) (*Batch, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	var entries []entry
	switch {
	case info.IsDir():
		entries, err = dirEntries(input)
	case Format(input) == ".zip":
		var closer func() error
		entries, closer, err = zipEntries(input)
		if closer != nil {
			defer closer()
		}
	default:
		entries = []entry{{name: filepath.Base(input), read: func() ([]byte, error) { return os.ReadFile(input) }}}
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	batch := &Batch{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc := &Document{
			ID:     path.Base(e.name),
			Source: e.name,
			Format: Format(e.name),
		}

		if !Supported(e.name) {
			if !opts.IncludeUnsupported {
				opts.Logger.Debug("skipping unsupported file", zap.String("source", e.name))
				continue
			}
			_, doc.Err = ExtractText(e.name, nil)
			batch.Items = append(batch.Items, doc)
			continue
		}

		data, err := e.read()
		if err != nil {
			opts.Logger.Warn("reading document failed", zap.String("source", e.name), zap.Error(err))
			doc.Err = fmt.Errorf("read: %w", err)
			batch.Items = append(batch.Items, doc)
			continue
		}
		doc.Size = len(data)

		text, err := ExtractText(e.name, data)
		if err != nil {
			opts.Logger.Warn("text extraction failed", zap.String("source", e.name), zap.Error(err))
			doc.Err = fmt.Errorf("extract text: %w", err)
		}
		doc.Text = text
		batch.Items = append(batch.Items, doc)
	}

	opts.Logger.Info(fmt.Sprintf("Extracted %d resumes", batch.Len()), zap.String("input", input))
	return batch, nil
}

func dirEntries(root string) ([]entry, error) {
	var entries []entry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		entries = append(entries, entry{
			name: filepath.ToSlash(rel),
			read: func() ([]byte, error) { return os.ReadFile(p) },
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return entries, nil
}

func zipEntries(archive string) ([]entry, func() error, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}

	var entries []entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") || strings.HasPrefix(path.Base(f.Name), ".") {
			continue
		}
		entries = append(entries, entry{
			name: f.Name,
			read: func() ([]byte, error) { return readZipFile(f) },
		})
	}
	return entries, zr.Close, nil
}
