package metrics

import (
	"math"
	"sync"
	"time"

	"github.com/influxdata/tdigest"

	"datahub/internal/models"
)

const digestCompression = 100

// LatencySummary reports fetch latency percentiles in milliseconds
type LatencySummary struct {
	Count int     `json:"count"`
	P50   float64 `json:"p50_ms"`
	P90   float64 `json:"p90_ms"`
	P99   float64 `json:"p99_ms"`
}

// LatencyTracker keeps a t-digest of fetch durations per resource and overall
type LatencyTracker struct {
	mu       sync.Mutex
	overall  *tdigest.TDigest
	resource map[models.Resource]*tdigest.TDigest
}

// NewLatencyTracker creates an empty tracker
func NewLatencyTracker() *LatencyTracker {
	return &LatencyTracker{
		overall:  tdigest.NewWithCompression(digestCompression),
		resource: make(map[models.Resource]*tdigest.TDigest),
	}
}

// Observe adds one fetch duration
func (t *LatencyTracker) Observe(resource models.Resource, d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.overall.Add(ms, 1)
	td, ok := t.resource[resource]
	if !ok {
		td = tdigest.NewWithCompression(digestCompression)
		t.resource[resource] = td
	}
	td.Add(ms, 1)
}

// Summary returns overall percentiles
func (t *LatencyTracker) Summary() LatencySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return summarize(t.overall)
}

// ByResource returns percentiles per resource
func (t *LatencyTracker) ByResource() map[models.Resource]LatencySummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[models.Resource]LatencySummary, len(t.resource))
	for res, td := range t.resource {
		out[res] = summarize(td)
	}
	return out
}

// summarize must be called with the lock held; Quantile compacts the digest.
func summarize(td *tdigest.TDigest) LatencySummary {
	count := int(td.Count())
	if count == 0 {
		return LatencySummary{}
	}
	return LatencySummary{
		Count: count,
		P50:   roundMs(td.Quantile(0.5)),
		P90:   roundMs(td.Quantile(0.9)),
		P99:   roundMs(td.Quantile(0.99)),
	}
}

func roundMs(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}
