package stats

import (
	"fmt"
	"math"
)

// Change describes how a stat moved between two refreshes
type Change struct {
	Percent  float64 `json:"percent"`
	Positive bool    `json:"positive"`
	Label    string  `json:"label"`
}

// Compare computes the percent change from prev to next, rounded to one
// decimal. A move away from zero counts as +100%.
func Compare(prev, next float64) Change {
	var pct float64
	switch {
	case prev == next:
		pct = 0
	case prev == 0:
		pct = math.Copysign(100, next)
	default:
		pct = (next - prev) / math.Abs(prev) * 100
	}
	pct = math.Round(pct*10) / 10

	sign := "+"
	if pct < 0 {
		sign = "-"
	}
	return Change{
		Percent:  pct,
		Positive: pct >= 0,
		Label:    fmt.Sprintf("%s%.1f%%", sign, math.Abs(pct)),
	}
}
