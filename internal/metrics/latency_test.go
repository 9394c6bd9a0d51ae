package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"datahub/internal/models"
)

func TestLatencyTrackerEmpty(t *testing.T) {
	tr := NewLatencyTracker()
	assert.Equal(t, LatencySummary{}, tr.Summary())
	assert.Empty(t, tr.ByResource())
}

func TestLatencyTrackerPercentiles(t *testing.T) {
	tr := NewLatencyTracker()
	for i := 1; i <= 100; i++ {
		tr.Observe(models.ResourceCharacters, time.Duration(i)*time.Millisecond)
	}

	s := tr.Summary()
	assert.Equal(t, 100, s.Count)
	assert.InDelta(t, 50, s.P50, 3)
	assert.InDelta(t, 90, s.P90, 3)
	assert.LessOrEqual(t, s.P90, s.P99)

	by := tr.ByResource()
	assert.Len(t, by, 1)
	assert.Equal(t, 100, by[models.ResourceCharacters].Count)
}

func TestLatencyTrackerSingleSample(t *testing.T) {
	tr := NewLatencyTracker()
	tr.Observe(models.ResourcePlayers, 42*time.Millisecond)

	s := tr.Summary()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 42.0, s.P50)
	assert.Equal(t, 42.0, s.P99)
}
