package style

import (
	"strings"
	"testing"
)

func TestScorePercent(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{95, 95},
		{0.5, 50},
		{1, 100},
		{0, 0},
		{-3, 0},
		{250, 100},
	}
	for _, tt := range tests {
		if got := ScorePercent(tt.in); got != tt.want {
			t.Errorf("ScorePercent(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScoreBar_PercentScale(t *testing.T) {
	bar := ScoreBar(90, 10)
	if got := strings.Count(bar, "█"); got != 9 {
		t.Errorf("want 9 filled cells for 90, got %d in %q", got, bar)
	}
	if got := strings.Count(bar, "░"); got != 1 {
		t.Errorf("want 1 empty cell for 90, got %d in %q", got, bar)
	}
}
