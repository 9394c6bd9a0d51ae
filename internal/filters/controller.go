package filters

import (
	"context"
	"sync"
	"time"

	"datahub/internal/config"
	"datahub/internal/logger"
)

// DefaultDebounce is the quiet period before a reactive change recomputes
const DefaultDebounce = 300 * time.Millisecond

// RecomputeFunc re-derives the dashboard from loaded data for a filter set
type RecomputeFunc func(ctx context.Context, set Set)

// Controller applies filter changes under one policy. Reactive debounces
// changes and recomputes once with the last set; manual ignores changes.
// Apply recomputes immediately under either policy.
type Controller struct {
	ctx       context.Context
	policy    string
	debounce  time.Duration
	recompute RecomputeFunc
	log       *logger.Logger

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	current Set
}

// NewController creates a controller; unknown policies fall back to reactive
func NewController(ctx context.Context, policy string, debounce time.Duration, recompute RecomputeFunc) *Controller {
	if policy != config.FilterPolicyManual {
		policy = config.FilterPolicyReactive
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		ctx:       ctx,
		policy:    policy,
		debounce:  debounce,
		recompute: recompute,
		log:       logger.Component("filters"),
		current:   Set{},
	}
}

// Policy returns the active policy name
func (c *Controller) Policy() string {
	return c.policy
}

// Change handles a filter edit. It returns false when the change is ignored.
func (c *Controller) Change(set Set) bool {
	if c.policy == config.FilterPolicyManual {
		c.log.Debug("Filter change ignored under manual policy")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return false
	}

	c.seq++
	seq := c.seq
	pending := set.Clone()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(seq, pending)
	})
	return true
}

func (c *Controller) fire(seq uint64, set Set) {
	c.mu.Lock()
	if seq != c.seq || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.current = set
	c.mu.Unlock()

	c.run(set)
}

// Apply recomputes immediately and drops any pending debounced change
func (c *Controller) Apply(set Set) {
	set = set.Clone()

	c.mu.Lock()
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = set
	c.mu.Unlock()

	c.run(set)
}

func (c *Controller) run(set Set) {
	c.log.Debug("Recomputing with filters", map[string]interface{}{"filters": map[string]string(set)})
	if c.recompute != nil {
		c.recompute(c.ctx, set)
	}
}

// Current returns the last applied filter set
func (c *Controller) Current() Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// Pending reports whether a debounced change is waiting
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Stop drops any pending change
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
