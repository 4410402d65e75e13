// Package ai defines the optional reviewer that comments on top ranked candidates.
// A review never changes scores or ranking order.
package ai

import (
	"context"
)

// Subject is what a reviewer gets to see about one ranked candidate.
type Subject struct {
	CandidateID string
	Rank        int
	Role        string
	Skills      []string
	Matched     []string
	Missing     []string
	Score       float64
	Text        string
}

// Review is the reviewer's assessment of a Subject.
type Review struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths,omitempty"`
	Concerns   []string `json:"concerns,omitempty"`
	Confidence float64  `json:"confidence"`
	Raw        string   `json:"-"`
	Error      string   `json:"error,omitempty"`
}

// Reviewer produces free-text reviews of candidates.
type Reviewer interface {
	Review(ctx context.Context, subject Subject) (*Review, error)
}
