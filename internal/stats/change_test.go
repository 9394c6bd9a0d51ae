package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		prev, next float64
		label      string
		positive   bool
	}{
		{100, 112.5, "+12.5%", true},
		{200, 150, "-25.0%", false},
		{50, 50, "+0.0%", true},
		{0, 0, "+0.0%", true},
		{0, 30, "+100.0%", true},
		{3, 4, "+33.3%", true},
	}

	for _, tt := range tests {
		c := Compare(tt.prev, tt.next)
		assert.Equal(t, tt.label, c.Label, "%v -> %v", tt.prev, tt.next)
		assert.Equal(t, tt.positive, c.Positive, "%v -> %v", tt.prev, tt.next)
	}
}
