// Package export writes screening results as CSV, JSON or a console listing.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/screening"
)

// DefaultCSVFile is the file name used when no output path is configured.
const DefaultCSVFile = "ranked_resumes.csv"

var csvHeader = []string{"Rank", "Resume Name", "Match Score"}

// WriteCSV writes the ranking with a "Rank,Resume Name,Match Score" header.
func WriteCSV(w io.Writer, r ranking.Ranking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range r {
		if err := cw.Write([]string{strconv.Itoa(e.Rank), e.CandidateID, scoring.Format(e.Score)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFile writes the ranking to path, replacing an existing file.
func CSVFile(path string, r ranking.Ranking) error {
	if path == "" {
		path = DefaultCSVFile
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

type jsonEntry struct {
	ranking.Entry
	ScoreDisplay string `json:"score_display"`
}

type jsonExclusion struct {
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
}

type jsonResult struct {
	Role     screening.Role              `json:"role"`
	Skills   []string                    `json:"skills"`
	Ranking  []jsonEntry                 `json:"ranking"`
	Details  map[string]screening.Detail `json:"details"`
	Excluded []jsonExclusion             `json:"excluded"`
}

// WriteJSON writes the full result including details and exclusions.
func WriteJSON(w io.Writer, res *screening.Result) error {
	out := jsonResult{
		Role:     res.Role,
		Skills:   res.Skills,
		Ranking:  make([]jsonEntry, 0, len(res.Ranking)),
		Details:  res.Details,
		Excluded: make([]jsonExclusion, 0, len(res.Excluded)),
	}
	for _, e := range res.Ranking {
		out.Ranking = append(out.Ranking, jsonEntry{Entry: e, ScoreDisplay: scoring.Format(e.Score)})
	}
	for _, e := range res.Excluded {
		out.Excluded = append(out.Excluded, jsonExclusion{CandidateID: e.CandidateID, Reason: e.Reason})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// DumpToTmpFile writes the JSON result into a new temporary file and returns its path.
func DumpToTmpFile(res *screening.Result) (string, error) {
	file, err := os.CreateTemp("", "ranking_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, res); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// WriteConsole prints "Rank N: <id> - Match Score: NN.NN%" lines followed by exclusions.
func WriteConsole(w io.Writer, res *screening.Result) error {
	for _, e := range res.Ranking {
		if _, err := fmt.Fprintf(w, "Rank %d: %s - Match Score: %s\n", e.Rank, e.CandidateID, scoring.Format(e.Score)); err != nil {
			return err
		}
	}
	if len(res.Excluded) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Excluded %d resumes:\n", len(res.Excluded)); err != nil {
		return err
	}
	for _, e := range res.Excluded {
		if _, err := fmt.Fprintf(w, "- %s: %s\n", e.CandidateID, e.Reason); err != nil {
			return err
		}
	}
	return nil
}

// WriteDetail prints the skill breakdown of one candidate.
func WriteDetail(w io.Writer, res *screening.Result, id string) error {
	d, ok := res.Details[id]
	if !ok {
		return fmt.Errorf("no details for %s", id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - Match Score: %s (%d tokens)\n", id, scoring.Format(d.Score), d.Tokens)
	for _, s := range d.MatchedSkills {
		fmt.Fprintf(&b, "  [x] %s\n", s)
	}
	for _, s := range d.MissingSkills {
		fmt.Fprintf(&b, "  [ ] %s\n", s)
	}
	for i, s := range res.Skills {
		if i >= len(d.Similarity) {
			break
		}
		fmt.Fprintf(&b, "  similarity %s: %.4f\n", s, d.Similarity[i])
	}
	if d.Review != nil {
		if d.Review.Error != "" {
			fmt.Fprintf(&b, "Review failed: %s\n", d.Review.Error)
		} else {
			fmt.Fprintf(&b, "Review: %s\n", d.Review.Summary)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
