package scoring

import (
	"errors"
	"testing"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		matched, required int
		want              string
	}{
		{2, 2, "100.00%"},
		{1, 2, "50.00%"},
		{2, 3, "66.67%"},
		{0, 5, "0.00%"},
		{1, 3, "33.33%"},
	}

	for _, tt := range tests {
		score, err := Calculate(tt.matched, tt.required)
		if err != nil {
			t.Fatalf("Calculate(%d, %d) returned error: %v", tt.matched, tt.required, err)
		}
		if score < 0 || score > 100 {
			t.Fatalf("Calculate(%d, %d) = %v out of range", tt.matched, tt.required, score)
		}
		if got := Format(score); got != tt.want {
			t.Fatalf("Format(Calculate(%d, %d)) = %q, want %q", tt.matched, tt.required, got, tt.want)
		}
	}
}

func TestCalculateErrors(t *testing.T) {
	t.Parallel()

	if _, err := Calculate(0, 0); !errors.Is(err, ErrDivision) {
		t.Fatalf("Calculate(0, 0) error = %v, want ErrDivision", err)
	}
	if _, err := Calculate(3, 2); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("Calculate(3, 2) error = %v, want ErrInvalidCount", err)
	}
	if _, err := Calculate(-1, 2); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("Calculate(-1, 2) error = %v, want ErrInvalidCount", err)
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	score, _ := Calculate(2, 3)
	if got := Round(score); got != 66.67 {
		t.Fatalf("Round(%v) = %v, want 66.67", score, got)
	}
}
