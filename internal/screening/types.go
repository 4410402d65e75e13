// Package screening scores a batch of candidate documents against a role and ranks them.
package screening

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-ranker/internal/ai"
	"github.com/spigell/resume-ranker/internal/ranking"
)

var (
	// ErrEmptyInput marks a candidate without extractable text. Such a candidate scores 0.
	ErrEmptyInput = errors.New("candidate text is empty")
	// ErrInvalidRole aborts a batch whose role has no required skills.
	ErrInvalidRole = errors.New("role has no required skills")
)

// Role is a target position with its required skills in priority order.
type Role struct {
	Name   string   `json:"name" yaml:"name" mapstructure:"name"`
	Skills []string `json:"skills" yaml:"skills" mapstructure:"skills"`
}

// RequiredSkills returns the non-blank skills of the role in order.
func (r Role) RequiredSkills() []string {
	out := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// Validate reports ErrInvalidRole when the role requires nothing.
func (r Role) Validate() error {
	if len(r.RequiredSkills()) == 0 {
		if r.Name != "" {
			return fmt.Errorf("%w: %s", ErrInvalidRole, r.Name)
		}
		return ErrInvalidRole
	}
	return nil
}

// Candidate is one resume document of a batch.
type Candidate struct {
	ID     string
	Text   string
	Source string
	// Err is set when the text could not be extracted.
	Err error
}

// Detail is the diagnostic breakdown of a candidate score.
type Detail struct {
	CandidateID   string     `json:"candidate_id"`
	Score         float64    `json:"score"`
	MatchedSkills []string   `json:"matched_skills"`
	MissingSkills []string   `json:"missing_skills"`
	Similarity    []float64  `json:"similarity"`
	Tokens        int        `json:"tokens"`
	Empty         bool       `json:"empty,omitempty"`
	Review        *ai.Review `json:"review,omitempty"`
}

// Exclusion is a candidate left out of the ranking.
type Exclusion struct {
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
	Err         error  `json:"-"`
}

// Result is the outcome of one screening run.
type Result struct {
	Role Role `json:"role"`
	// Skills are the deduplicated required skills; Detail.Similarity follows their order.
	Skills   []string          `json:"skills"`
	Ranking  ranking.Ranking   `json:"ranking"`
	Details  map[string]Detail `json:"details"`
	Excluded []Exclusion       `json:"excluded"`
}
