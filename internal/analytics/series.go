// Package analytics derives chart series and stat-card values from loaded
// game data. Every function is pure apart from the injected random source.
package analytics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"datahub/internal/models"
)

// Weekdays labels the activity series
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const (
	activeShare = 0.3
	newShare    = 0.05
	minFactor   = 0.8
	maxFactor   = 1.2

	// DefaultLatencyPoints is one point per hour of day
	DefaultLatencyPoints = 24
	minLatencyMs         = 5
)

// Series is a labelled set of numeric datasets sharing one x axis
type Series struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one named line or bar group
type Dataset struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Histogram is an ordered label -> count mapping
type Histogram struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Total sums all bucket counts
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// Len returns the number of buckets
func (h Histogram) Len() int {
	return len(h.Labels)
}

// ActivitySeries builds the weekly active/new player series. The values are
// mock data scaled from the player count: each point is floor(base*f) with f
// drawn uniformly from [0.8, 1.2).
func ActivitySeries(playerCount int, rng *rand.Rand) Series {
	if playerCount < 0 {
		playerCount = 0
	}
	baseActive := math.Floor(float64(playerCount) * activeShare)
	baseNew := math.Floor(float64(playerCount) * newShare)

	active := make([]float64, len(Weekdays))
	fresh := make([]float64, len(Weekdays))
	for i := range Weekdays {
		active[i] = math.Floor(baseActive * factor(rng))
		fresh[i] = math.Floor(baseNew * factor(rng))
	}

	return Series{
		Labels: append([]string(nil), Weekdays...),
		Datasets: []Dataset{
			{Name: "Active Players", Values: active},
			{Name: "New Players", Values: fresh},
		},
	}
}

func factor(rng *rand.Rand) float64 {
	return minFactor + rng.Float64()*(maxFactor-minFactor)
}

// ActivityBounds returns the inclusive range every active and new point falls in
func ActivityBounds(playerCount int) (activeLo, activeHi, newLo, newHi float64) {
	baseActive := math.Floor(float64(playerCount) * activeShare)
	baseNew := math.Floor(float64(playerCount) * newShare)
	return math.Floor(baseActive * minFactor), math.Floor(baseActive * maxFactor),
		math.Floor(baseNew * minFactor), math.Floor(baseNew * maxFactor)
}

// LatencySeries is a synthetic daily response-time curve,
// max(5, 25 + 15*sin(i*pi/12) + U(0,10)) for each hour i. It does not reflect
// measured latency.
func LatencySeries(points int, rng *rand.Rand) Series {
	if points <= 0 {
		points = DefaultLatencyPoints
	}

	labels := make([]string, points)
	values := make([]float64, points)
	for i := 0; i < points; i++ {
		labels[i] = fmt.Sprintf("%d:00", i)
		v := 25 + 15*math.Sin(float64(i)*math.Pi/12) + rng.Float64()*10
		values[i] = math.Max(minLatencyMs, v)
	}

	return Series{
		Labels:   labels,
		Datasets: []Dataset{{Name: "Response Time (ms)", Values: values}},
	}
}

// ClassHistogram counts characters per class label in first-seen order
func ClassHistogram(characters []models.Character) Histogram {
	return countLabels(len(characters), func(i int) string { return characters[i].ClassLabel() })
}

// UnaffiliatedClan labels players without a clan
const UnaffiliatedClan = "Unaffiliated"

// ClanHistogram counts players per clan in first-seen order
func ClanHistogram(players []models.Player) Histogram {
	return countLabels(len(players), func(i int) string {
		if players[i].Clan == "" {
			return UnaffiliatedClan
		}
		return players[i].Clan
	})
}

// countLabels tallies n labels in first-seen order. Empty input gives empty,
// non-nil slices.
func countLabels(n int, label func(int) string) Histogram {
	index := make(map[string]int)
	h := Histogram{Labels: []string{}, Counts: []int{}}
	for k := range n {
		l := label(k)
		i, ok := index[l]
		if !ok {
			i = len(h.Labels)
			index[l] = i
			h.Labels = append(h.Labels, l)
			h.Counts = append(h.Counts, 0)
		}
		h.Counts[i]++
	}
	return h
}

// LevelBucketCount is the number of fixed level buckets
const LevelBucketCount = 10

// LevelBucketLabels are the fixed level bucket labels
var LevelBucketLabels = []string{
	"1-10", "11-20", "21-30", "31-40", "41-50",
	"51-60", "61-70", "71-80", "81-90", "91-100",
}

// LevelHistogram buckets characters by level in groups of ten. An unset level
// counts as 1, levels below 1 land in the first bucket and the last bucket
// also takes every level above 100.
func LevelHistogram(characters []models.Character) Histogram {
	h := Histogram{
		Labels: append([]string(nil), LevelBucketLabels...),
		Counts: make([]int, LevelBucketCount),
	}
	for _, c := range characters {
		h.Counts[levelBucket(c.Level.OrDefault(1))]++
	}
	return h
}

func levelBucket(level int) int {
	if level < 1 {
		return 0
	}
	return min((level-1)/10, LevelBucketCount-1)
}

// CategoryHistogram counts items per category in first-seen order
func CategoryHistogram(items []models.Item) Histogram {
	return countLabels(len(items), func(i int) string { return items[i].CategoryLabel() })
}
