// Package ranking orders candidate scores into a ranked list.
package ranking

import "sort"

// Score is the match score of one candidate.
type Score struct {
	CandidateID string
	Score       float64
}

// Entry is one position of a ranking.
type Entry struct {
	Rank        int     `json:"rank"`
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
}

// Ranking is ordered by rank.
type Ranking []Entry

// Rank sorts scores descending and assigns ranks starting at 1. Equal scores
// keep their input order. The input slice is not modified.
func Rank(scores []Score) Ranking {
	sorted := make([]Score, len(scores))
	copy(sorted, scores)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	out := make(Ranking, len(sorted))
	for i, s := range sorted {
		out[i] = Entry{Rank: i + 1, CandidateID: s.CandidateID, Score: s.Score}
	}
	return out
}

// IDs returns the candidate ids in rank order.
func (r Ranking) IDs() []string {
	ids := make([]string, len(r))
	for i, e := range r {
		ids[i] = e.CandidateID
	}
	return ids
}

// Top returns at most n leading entries.
func (r Ranking) Top(n int) Ranking {
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return r[:n]
}
