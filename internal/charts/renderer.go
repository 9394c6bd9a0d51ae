package charts

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"datahub/internal/logger"
)

// ErrUnknownCanvas is returned for ids that are not in the layout
var ErrUnknownCanvas = errors.New("unknown chart canvas")

// Handle is a live chart instance. At most one handle per canvas id exists.
type Handle struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Version    uint64          `json:"version"`
	Options    json.RawMessage `json:"options"`
	Payload    Payload         `json:"-"`
	Style      Style           `json:"-"`
	RenderedAt time.Time       `json:"renderedAt"`
}

// Observer is told about every new handle. It is called with the renderer
// lock held, so it must not block or call back into the renderer.
type Observer interface {
	ChartRendered(h Handle)
}

// RenderRecorder counts renders per canvas
type RenderRecorder interface {
	ObserveRender(chartID string)
}

// Renderer owns the chart registry. Every call is serialised; a render
// replaces the previous handle for the id only once the new one is built.
type Renderer struct {
	mu       sync.Mutex
	layout   *Layout
	handles  map[string]*Handle
	version  uint64
	observer Observer
	recorder RenderRecorder
	log      *logger.Logger
}

// NewRenderer creates a renderer for the given layout; nil uses the default layout
func NewRenderer(layout *Layout) *Renderer {
	if layout == nil {
		layout = DefaultLayout()
	}
	// resize mutates canvas sizes; keep the caller's layout untouched
	layout = &Layout{Theme: layout.Theme, Canvases: append([]Canvas(nil), layout.Canvases...)}
	return &Renderer{
		layout:  layout,
		handles: make(map[string]*Handle, len(layout.Canvases)),
		log:     logger.Component("charts"),
	}
}

// SetObserver installs the handle observer
func (r *Renderer) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

// SetRecorder installs the render counter
func (r *Renderer) SetRecorder(rec RenderRecorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorder = rec
}

// Layout returns a copy of the current layout, including resized canvases
func (r *Renderer) Layout() Layout {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Layout{Theme: r.layout.Theme, Canvases: make([]Canvas, len(r.layout.Canvases))}
	copy(out.Canvases, r.layout.Canvases)
	return out
}

// Render draws payload on canvas id. Unknown ids are skipped and logged.
func (r *Renderer) Render(id string, kind Kind, payload Payload, style Style) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	canvas, ok := r.layout.Canvas(id)
	if !ok {
		r.log.Warn("Chart canvas not found, skipping render", map[string]interface{}{"chart": id})
		return nil, fmt.Errorf("%w: %s", ErrUnknownCanvas, id)
	}
	return r.renderLocked(canvas, kind, payload, style)
}

// Resize changes the fixed size of a canvas and redraws its current chart
// from the last payload. It is the only path that changes a chart's size.
func (r *Renderer) Resize(id string, width, height int) (*Handle, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.layout.Canvases {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.log.Warn("Chart canvas not found, skipping resize", map[string]interface{}{"chart": id})
		return nil, fmt.Errorf("%w: %s", ErrUnknownCanvas, id)
	}

	r.layout.Canvases[idx].Width = width
	r.layout.Canvases[idx].Height = height

	current, ok := r.handles[id]
	if !ok {
		return nil, nil
	}
	return r.renderLocked(r.layout.Canvases[idx], current.Kind, current.Payload, current.Style)
}

func (r *Renderer) renderLocked(canvas Canvas, kind Kind, payload Payload, style Style) (*Handle, error) {
	if kind == "" {
		kind = canvas.Kind
	}
	if err := payload.validate(kind); err != nil {
		return nil, err
	}

	style = style.withCanvas(canvas)
	options, err := buildOptions(r.layout.Theme, canvas, kind, payload, style)
	if err != nil {
		// the previous chart stays live so page and registry agree
		return nil, err
	}
	r.releaseLocked(canvas.ID)

	r.version++
	h := &Handle{
		ID:         canvas.ID,
		Kind:       kind,
		Width:      canvas.Width,
		Height:     canvas.Height,
		Version:    r.version,
		Options:    options,
		Payload:    payload.clone(),
		Style:      style,
		RenderedAt: time.Now().UTC(),
	}
	r.handles[canvas.ID] = h

	if r.recorder != nil {
		r.recorder.ObserveRender(canvas.ID)
	}
	if r.observer != nil {
		r.observer.ChartRendered(*h)
	}
	return h, nil
}

func (r *Renderer) releaseLocked(id string) {
	if old, ok := r.handles[id]; ok {
		delete(r.handles, id)
		r.log.Debug("Released chart", map[string]interface{}{"chart": id, "version": old.Version})
	}
}

// Release destroys the handle for id, if any
func (r *Renderer) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(id)
}

// Get returns a copy of the live handle for id
func (r *Renderer) Get(id string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	if !ok {
		return Handle{}, false
	}
	return *h, true
}

// Handles returns copies of all live handles in layout order
func (r *Renderer) Handles() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Handle, 0, len(r.handles))
	for _, c := range r.layout.Canvases {
		if h, ok := r.handles[c.ID]; ok {
			out = append(out, *h)
		}
	}
	return out
}

// Len returns the number of live handles
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
