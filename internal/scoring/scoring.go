// Package scoring turns skill match counts into percentage scores.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrDivision is returned when a role has no required skills.
	ErrDivision = errors.New("division by zero: no required skills")
	// ErrInvalidCount is returned for negative counts or more matches than requirements.
	ErrInvalidCount = errors.New("invalid skill count")
)

// Calculate returns matched/required*100 at full precision.
//
// required counts distinct skills: the screener passes the role's skill list
// after case-insensitive deduplication, so a role listing "Python" and
// "python" has one required skill, not two.
func Calculate(matched, required int) (float64, error) {
	if required == 0 {
		return 0, ErrDivision
	}
	if matched < 0 || required < 0 || matched > required {
		return 0, fmt.Errorf("%w: matched=%d required=%d", ErrInvalidCount, matched, required)
	}
	return float64(matched) / float64(required) * 100, nil
}

// Round rounds score to two decimals the same way Format displays it.
func Round(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return score
	}
	v, _ := strconv.ParseFloat(strconv.FormatFloat(score, 'f', 2, 64), 64)
	return v
}

// Format renders score as a two-decimal percentage, e.g. "66.67%".
func Format(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64) + "%"
}
