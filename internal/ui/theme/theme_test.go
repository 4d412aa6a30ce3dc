package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		fraction float64
		filled   int
		pct      string
	}{
		{0, 0, "  0%"},
		{0.5, 5, " 50%"},
		{1, 10, "100%"},
		{1.7, 10, "100%"},
		{-1, 0, "  0%"},
	}
	for _, tt := range tests {
		got := ansi.Strip(ProgressBar(tt.fraction, 10))
		assert.Equal(t, tt.filled, strings.Count(got, "█"), "fraction %v", tt.fraction)
		assert.Equal(t, 10-tt.filled, strings.Count(got, "░"), "fraction %v", tt.fraction)
		assert.True(t, strings.HasSuffix(got, tt.pct), "fraction %v: %q", tt.fraction, got)
	}
}
