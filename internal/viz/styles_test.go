package viz

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 3, "───"},
		{"ramp", []float64{0, 1, 2, 3, 4, 5, 6, 7}, 8, "▁▂▃▄▅▆▇█"},
		{"flat", []float64{2, 2, 2}, 3, "▁▁▁"},
		{"sampled", []float64{0, 0, 7, 7}, 2, "▁█"},
		{"zero width", []float64{1}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("Sparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressBarWidth(t *testing.T) {
	for _, p := range []float64{-1, 0, 0.5, 1, 2} {
		bar := ProgressBar(p, 10)
		n := strings.Count(bar, "█") + strings.Count(bar, "░")
		if n != 10 {
			t.Errorf("ProgressBar(%g) has %d cells", p, n)
		}
	}
	if utf8.RuneCountInString(Metric("a", "b")) < 4 {
		t.Error("metric render too short")
	}
}
