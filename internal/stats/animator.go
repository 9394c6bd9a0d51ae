// Package stats animates the headline numbers on the dashboard stat cards.
package stats

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"datahub/internal/logger"
)

const (
	// DefaultDuration is the length of one count-up animation
	DefaultDuration = time.Second
	// FrameInterval is the tick between published frames
	FrameInterval = 16 * time.Millisecond
)

// Frame is one published stat card value
type Frame struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Final bool    `json:"final"`
}

// Sink receives frames. It is called with the animator lock held and must
// not block.
type Sink interface {
	StatFrame(f Frame)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(f Frame)

// StatFrame calls f
func (f SinkFunc) StatFrame(frame Frame) { f(frame) }

type animation struct {
	cancel context.CancelFunc
}

// Animator runs at most one count-up animation per stat key. Starting a new
// animation for a key stops the previous one before its next frame.
type Animator struct {
	ctx      context.Context
	duration time.Duration
	interval time.Duration
	sink     Sink
	keys     []string
	log      *logger.Logger

	mu      sync.Mutex
	running map[string]*animation
	last    map[string]float64
	wg      sync.WaitGroup
}

// NewAnimator creates an animator. Animations stop when ctx is cancelled.
// A non-empty keys list restricts which stat cards exist.
func NewAnimator(ctx context.Context, duration time.Duration, sink Sink, keys ...string) *Animator {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Animator{
		ctx:      ctx,
		duration: duration,
		interval: FrameInterval,
		sink:     sink,
		keys:     keys,
		log:      logger.Component("stats"),
		running:  make(map[string]*animation),
		last:     make(map[string]float64),
	}
}

// Ease is the ease-out quartic curve 1-(1-p)^4 for p clamped to [0,1]
func Ease(progress float64) float64 {
	p := math.Min(math.Max(progress, 0), 1)
	return 1 - math.Pow(1-p, 4)
}

// Value returns the rounded animated value at the given progress
func Value(from, to, progress float64) float64 {
	if progress >= 1 {
		return to
	}
	return math.Round(from + (to-from)*Ease(progress))
}

// Animate starts counting key from `from` to `to`. It returns false when the
// key is not a known stat card.
func (a *Animator) Animate(key string, from, to float64) bool {
	if len(a.keys) > 0 && !slices.Contains(a.keys, key) {
		a.log.Warn("Stat card not found, skipping animation", map[string]interface{}{"stat": key})
		return false
	}

	ctx, cancel := context.WithCancel(a.ctx)
	anim := &animation{cancel: cancel}

	a.mu.Lock()
	if prev, ok := a.running[key]; ok {
		prev.cancel()
	}
	a.running[key] = anim
	a.mu.Unlock()

	a.wg.Add(1)
	go a.run(ctx, anim, key, from, to)
	return true
}

// AnimateTo counts from the last value published for key
func (a *Animator) AnimateTo(key string, to float64) bool {
	a.mu.Lock()
	from := a.last[key]
	a.mu.Unlock()
	return a.Animate(key, from, to)
}

func (a *Animator) run(ctx context.Context, anim *animation, key string, from, to float64) {
	defer a.wg.Done()
	defer anim.cancel()

	start := time.Now()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		progress := float64(time.Since(start)) / float64(a.duration)
		final := progress >= 1
		if !a.publish(anim, Frame{Key: key, Value: Value(from, to, progress), Final: final}) || final {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// publish emits a frame only while anim is still the current animation for its key
func (a *Animator) publish(anim *animation, f Frame) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running[f.Key] != anim {
		return false
	}
	a.last[f.Key] = f.Value
	if f.Final {
		delete(a.running, f.Key)
	}
	if a.sink != nil {
		a.sink.StatFrame(f)
	}
	return true
}

// Last returns the most recently published value per key
func (a *Animator) Last() map[string]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]float64, len(a.last))
	for k, v := range a.last {
		out[k] = v
	}
	return out
}

// Running reports the number of animations in flight
func (a *Animator) Running() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.running)
}

// Stop cancels every animation and waits for them to exit
func (a *Animator) Stop() {
	a.mu.Lock()
	for key, anim := range a.running {
		anim.cancel()
		delete(a.running, key)
	}
	a.mu.Unlock()
	a.wg.Wait()
}

// Wait blocks until all animations have finished
func (a *Animator) Wait() {
	a.wg.Wait()
}
