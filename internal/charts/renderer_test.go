package charts

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datahub/internal/analytics"
)

type recordingObserver struct {
	mu      sync.Mutex
	handles []Handle
}

func (o *recordingObserver) ChartRendered(h Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handles = append(o.handles, h)
}

type countingRecorder struct {
	counts map[string]int
}

func (c *countingRecorder) ObserveRender(id string) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[id]++
}

func activityPayload() Payload {
	return SeriesPayload(analytics.ActivitySeries(500, rand.New(rand.NewPCG(1, 1))))
}

func decodeOptions(t *testing.T, h *Handle) map[string]interface{} {
	t.Helper()
	var opts map[string]interface{}
	require.NoError(t, json.Unmarshal(h.Options, &opts))
	return opts
}

func TestRenderLine(t *testing.T) {
	r := NewRenderer(nil)
	h, err := r.Render(ActivityChart, KindLine, activityPayload(), Style{Fill: true})
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, 640, h.Width)
	assert.Equal(t, 320, h.Height)
	assert.Equal(t, "Player Activity", h.Style.Title)

	opts := decodeOptions(t, h)
	assert.Equal(t, true, opts["animation"])
	series, ok := opts["series"].([]interface{})
	require.True(t, ok)
	assert.Len(t, series, 2)

	xAxis := opts["xAxis"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, xAxis["data"])
}

func TestRenderDoughnut(t *testing.T) {
	r := NewRenderer(nil)
	payload := HistogramPayload("Characters", analytics.Histogram{
		Labels: []string{"Mage", "Warrior"},
		Counts: []int{3, 5},
	})

	h, err := r.Render(ClassChart, KindDoughnut, payload, Style{})
	require.NoError(t, err)

	opts := decodeOptions(t, h)
	series := opts["series"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "pie", series["type"])
	assert.Equal(t, []interface{}{"40%", "70%"}, series["radius"])
	data := series["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "Mage", data[0].(map[string]interface{})["name"])
}

func TestRenderEmptyBarKeepsZeroBuckets(t *testing.T) {
	r := NewRenderer(nil)
	h, err := r.Render(LevelChart, KindBar, HistogramPayload("Characters", analytics.LevelHistogram(nil)), Style{})
	require.NoError(t, err)

	series := decodeOptions(t, h)["series"].([]interface{})[0].(map[string]interface{})
	data := series["data"].([]interface{})
	assert.Len(t, data, analytics.LevelBucketCount)
	assert.Equal(t, 0.0, data[0].(map[string]interface{})["value"])
}

func TestRenderUnknownCanvasIsNoop(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRenderer(nil)
	r.SetObserver(obs)

	h, err := r.Render("missingChart", KindLine, activityPayload(), Style{})
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrUnknownCanvas)
	assert.Zero(t, r.Len())
	assert.Empty(t, obs.handles)
}

func TestRenderInvalidPayload(t *testing.T) {
	r := NewRenderer(nil)
	bad := Payload{Labels: []string{"a", "b"}, Datasets: []analytics.Dataset{{Name: "x", Values: []float64{1}}}}
	_, err := r.Render(LevelChart, KindBar, bad, Style{})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	two := Payload{Labels: []string{"a"}, Datasets: []analytics.Dataset{{Values: []float64{1}}, {Values: []float64{2}}}}
	_, err = r.Render(ClassChart, KindDoughnut, two, Style{})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestRegistryHoldsOneHandlePerID(t *testing.T) {
	obs := &recordingObserver{}
	rec := &countingRecorder{}
	r := NewRenderer(nil)
	r.SetObserver(obs)
	r.SetRecorder(rec)

	ids := r.Layout().IDs()
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		id := ids[rng.IntN(len(ids))]
		if i%7 == 0 {
			id = fmt.Sprintf("ghost-%d", i)
		}
		payload := HistogramPayload("n", analytics.Histogram{Labels: []string{"a"}, Counts: []int{i}})
		_, _ = r.Render(id, "", payload, Style{})

		assert.LessOrEqual(t, r.Len(), len(ids))
		seen := map[string]bool{}
		for _, h := range r.Handles() {
			assert.False(t, seen[h.ID], "duplicate handle for %s", h.ID)
			seen[h.ID] = true
		}
	}

	total := 0
	for _, n := range rec.counts {
		total += n
	}
	assert.Equal(t, len(obs.handles), total)
}

func TestRenderVersionsIncrease(t *testing.T) {
	r := NewRenderer(nil)
	first, err := r.Render(ActivityChart, KindLine, activityPayload(), Style{})
	require.NoError(t, err)
	second, err := r.Render(ActivityChart, KindLine, activityPayload(), Style{})
	require.NoError(t, err)

	assert.Greater(t, second.Version, first.Version)
	current, ok := r.Get(ActivityChart)
	require.True(t, ok)
	assert.Equal(t, second.Version, current.Version)
}

func TestResizeRerendersFromLastPayload(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRenderer(nil)
	r.SetObserver(obs)

	payload := activityPayload()
	_, err := r.Render(ActivityChart, KindLine, payload, Style{Title: "Custom"})
	require.NoError(t, err)

	h, err := r.Resize(ActivityChart, 900, 450)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 900, h.Width)
	assert.Equal(t, 450, h.Height)
	assert.Equal(t, "Custom", h.Style.Title)
	assert.Equal(t, payload, h.Payload)
	assert.Len(t, obs.handles, 2)
	assert.Equal(t, 1, r.Len())

	c, _ := r.Layout().Canvas(ActivityChart)
	assert.Equal(t, 900, c.Width)
	assert.Equal(t, 640, DefaultLayout().Canvases[0].Width, "default layout must not change")
}

func TestResizeWithoutChart(t *testing.T) {
	r := NewRenderer(nil)
	h, err := r.Resize(LevelChart, 300, 200)
	assert.NoError(t, err)
	assert.Nil(t, h)

	_, err = r.Resize("missingChart", 300, 200)
	assert.ErrorIs(t, err, ErrUnknownCanvas)

	_, err = r.Resize(LevelChart, 0, 200)
	assert.Error(t, err)
}

func TestAnimationFollowsStyleAndCanvas(t *testing.T) {
	off := false
	layout := &Layout{Canvases: []Canvas{{ID: "still", Kind: KindBar, Width: 10, Height: 10, Animation: &off}}}
	r := NewRenderer(layout)

	payload := HistogramPayload("n", analytics.Histogram{Labels: []string{"a"}, Counts: []int{1}})
	h, err := r.Render("still", "", payload, Style{})
	require.NoError(t, err)
	assert.Equal(t, false, decodeOptions(t, h)["animation"])

	on := true
	h, err = r.Render("still", "", payload, Style{Animation: &on})
	require.NoError(t, err)
	assert.Equal(t, true, decodeOptions(t, h)["animation"])
}

func TestReleaseAndConcurrentRenders(t *testing.T) {
	r := NewRenderer(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Render(ActivityChart, KindLine, activityPayload(), Style{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.Len())

	r.Release(ActivityChart)
	assert.Zero(t, r.Len())
	_, ok := r.Get(ActivityChart)
	assert.False(t, ok)
}

func TestResizeRejectsOversizedCanvas(t *testing.T) {
	r := NewRenderer(nil)
	_, err := r.Render(ActivityChart, KindLine, activityPayload(), Style{})
	require.NoError(t, err)

	_, err = r.Resize(ActivityChart, 1<<20, 1<<20)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = r.Resize(ActivityChart, MaxCanvasSize+1, 100)
	assert.ErrorIs(t, err, ErrInvalidSize)

	c, ok := r.Layout().Canvas(ActivityChart)
	require.True(t, ok)
	assert.Equal(t, 640, c.Width)

	h, err := r.Resize(ActivityChart, MaxCanvasSize, MaxCanvasSize)
	require.NoError(t, err)
	assert.Equal(t, MaxCanvasSize, h.Width)
}

func TestFailedRenderKeepsPreviousChart(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRenderer(nil)
	r.SetObserver(obs)

	first, err := r.Render(ActivityChart, KindLine, activityPayload(), Style{})
	require.NoError(t, err)

	_, err = r.Render(ActivityChart, Kind("radar"), activityPayload(), Style{})
	require.Error(t, err)

	current, ok := r.Get(ActivityChart)
	require.True(t, ok)
	assert.Equal(t, first.Version, current.Version)
	assert.Len(t, obs.handles, 1)
}
