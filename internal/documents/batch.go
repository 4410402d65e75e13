// Package documents loads resume documents from a directory or a zip archive.
package documents

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spigell/resume-ranker/internal/screening"
)

// Batch is the ordered set of documents of one run.
type Batch struct {
	Items []*Document
}

// Document is a resume file and its extracted text.
type Document struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Format string `json:"format"`
	Size   int    `json:"size"`
	Text   string `json:"text,omitempty"`
	Err    error  `json:"-"`
}

// ExcludedDocuments is the content of an exclude file.
type ExcludedDocuments struct {
	Items []*ExcludedDocument
}

// ExcludedDocument is a candidate that future runs skip.
type ExcludedDocument struct {
	ID         string
	Role       string
	Score      string
	ExcludedAt time.Time
}

// Candidate converts the document into a screening candidate.
func (d *Document) Candidate() screening.Candidate {
	return screening.Candidate{ID: d.ID, Text: d.Text, Source: d.Source, Err: d.Err}
}

// Candidates converts the batch into screening candidates in batch order.
func (b *Batch) Candidates() []screening.Candidate {
	out := make([]screening.Candidate, 0, len(b.Items))
	for _, d := range b.Items {
		out = append(out, d.Candidate())
	}
	return out
}

func (b *Batch) Len() int {
	return len(b.Items)
}

func (b *Batch) IDs() []string {
	ids := make([]string, 0, len(b.Items))
	for _, d := range b.Items {
		ids = append(ids, d.ID)
	}
	return ids
}

func (b *Batch) FindByID(id string) *Document {
	for _, d := range b.Items {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// ExcludeFunc removes every document for which drop returns true, keeping order.
func (b *Batch) ExcludeFunc(drop func(d *Document) bool) []*Document {
	var excluded []*Document
	kept := b.Items[:0]
	for _, d := range b.Items {
		if drop(d) {
			excluded = append(excluded, d)
			continue
		}
		kept = append(kept, d)
	}
	for i := len(kept); i < len(b.Items); i++ {
		b.Items[i] = nil
	}
	b.Items = kept
	return excluded
}

// ReportByFormat groups document ids by file format.
func (b *Batch) ReportByFormat() map[string][]string {
	report := make(map[string][]string)
	for _, d := range b.Items {
		report[d.Format] = append(report[d.Format], d.ID)
	}
	for format := range report {
		sort.Strings(report[format])
	}
	return report
}

// NewExcluded builds exclude file entries for ids screened against role.
func NewExcluded(role string, ids []string, scores map[string]string) *ExcludedDocuments {
	excluded := &ExcludedDocuments{}
	now := time.Now().UTC()
	for _, id := range ids {
		excluded.Items = append(excluded.Items, &ExcludedDocument{
			ID:         id,
			Role:       role,
			Score:      scores[id],
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedDocumentsFromFile reads an exclude file. An empty file holds no entries.
func GetExcludedDocumentsFromFile(path string) (*ExcludedDocuments, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedDocuments{}, nil
	}

	var excluded ExcludedDocuments
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %s: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedDocuments) Append(s *ExcludedDocuments) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedDocuments) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, d := range e.Items {
		ids = append(ids, d.ID)
	}
	return ids
}

func (e *ExcludedDocuments) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
