package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lixenwraith/folio-motion/dom"
	"github.com/lixenwraith/folio-motion/event"
	"github.com/lixenwraith/folio-motion/registry"
	"github.com/lixenwraith/folio-motion/status"
)

var (
	// ErrNotFound is reported in Result when play targets an unregistered id
	ErrNotFound = errors.New("animation not found")

	// ErrEffectPanic wraps a panic recovered from an effect
	ErrEffectPanic = errors.New("animation effect panicked")
)

// Effect is the side effect bound to a descriptor
// Observable only through mutation of target or external state; a returned error is reported, never propagated
type Effect func(target dom.Element, d registry.Descriptor) error

// Result is the captured outcome of a single play
type Result struct {
	ID    string
	RunID uuid.UUID
	Found bool
	Err   error
}

// OK reports whether the effect ran without failure
func (r Result) OK() bool { return r.Found && r.Err == nil }

// Controller binds descriptors to effects, tracks per-animation runtime state and publishes lifecycle events
//
// Semantics:
//   - Register replaces any prior binding for the id and resets its state (last write wins)
//   - Play on an unknown id logs a warning and creates no state
//   - Effect failures are captured, logged and emitted as animation:error; the caller still sees playing state
//   - Stop is the only completion signal; nothing stops an animation on its own
//
// All methods are safe for concurrent use. Events are emitted outside the lock so listeners may call back in
type Controller struct {
	mu          sync.RWMutex
	descriptors map[string]registry.Descriptor
	effects     map[string]Effect
	states      map[string]*State
	order       []string // First registration order

	bus    *event.Bus
	logger *zap.Logger
	clock  TimeSource

	statRegistered *atomic.Int64
	statPlays      *atomic.Int64
	statMisses     *atomic.Int64
	statErrors     *atomic.Int64
}

// ControllerOption configures a Controller
type ControllerOption func(*controllerConfig)

type controllerConfig struct {
	logger *zap.Logger
	status *status.Registry
	clock  TimeSource
	bus    *event.Bus
}

// WithLogger sets the diagnostic logger
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *controllerConfig) { c.logger = l }
}

// WithStatus publishes counters into reg
func WithStatus(reg *status.Registry) ControllerOption {
	return func(c *controllerConfig) { c.status = reg }
}

// WithTimeSource stamps events from src
func WithTimeSource(src TimeSource) ControllerOption {
	return func(c *controllerConfig) { c.clock = src }
}

// WithBus shares an existing event bus
func WithBus(b *event.Bus) ControllerOption {
	return func(c *controllerConfig) { c.bus = b }
}

// NewController creates an empty controller
// One controller per process is enforced by the composition root, not here
func NewController(opts ...ControllerOption) *Controller {
	cfg := controllerConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.clock == nil {
		cfg.clock = NewTimeProvider()
	}
	if cfg.bus == nil {
		cfg.bus = event.NewBus(cfg.logger)
	}
	reg := status.OrNew(cfg.status)

	return &Controller{
		descriptors:    make(map[string]registry.Descriptor),
		effects:        make(map[string]Effect),
		states:         make(map[string]*State),
		bus:            cfg.bus,
		logger:         cfg.logger,
		clock:          cfg.clock,
		statRegistered: reg.Ints.Get("controller.registered"),
		statPlays:      reg.Ints.Get("controller.plays"),
		statMisses:     reg.Ints.Get("controller.misses"),
		statErrors:     reg.Ints.Get("controller.errors"),
	}
}

// Register binds effect to d and resets its runtime state to idle
func (c *Controller) Register(d registry.Descriptor, effect Effect) {
	if effect == nil {
		effect = func(dom.Element, registry.Descriptor) error { return nil }
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.descriptors[d.ID]; !exists {
		c.order = append(c.order, d.ID)
		c.statRegistered.Add(1)
	}
	c.descriptors[d.ID] = d
	c.effects[d.ID] = effect
	c.states[d.ID] = &State{}
}

// BindCatalog registers every descriptor whose engine has an effect in effects
// Returns the number bound; descriptors of unmapped engines are skipped
func (c *Controller) BindCatalog(descriptors []registry.Descriptor, effects map[registry.Engine]Effect) int {
	bound := 0
	skipped := make(map[registry.Engine]int)
	for _, d := range descriptors {
		fx, ok := effects[d.Engine]
		if !ok {
			skipped[d.Engine]++
			continue
		}
		c.Register(d, fx)
		bound++
	}
	for eng, n := range skipped {
		c.logger.Debug("no effect for engine", zap.String("engine", string(eng)), zap.Int("skipped", n))
	}
	return bound
}

// Play marks id playing, emits animation:start, then runs its effect synchronously
func (c *Controller) Play(id string, target dom.Element, ctx map[string]any) Result {
	c.mu.Lock()
	d, ok := c.descriptors[id]
	effect := c.effects[id]
	if !ok {
		c.mu.Unlock()
		c.statMisses.Add(1)
		c.logger.Warn("animation not found", zap.String("id", id))
		return Result{ID: id, Err: ErrNotFound}
	}
	st := c.states[id]
	st.Playing = true
	st.Paused = false
	c.mu.Unlock()

	c.statPlays.Add(1)
	res := Result{ID: id, RunID: uuid.New(), Found: true}
	c.emit(event.Event{Type: event.EventStart, ID: id, RunID: res.RunID, Context: ctx})

	res.Err = runEffect(effect, target, d)
	if res.Err != nil {
		c.statErrors.Add(1)
		c.logger.Error("animation effect failed", zap.String("id", id), zap.Error(res.Err))
		c.emit(event.Event{Type: event.EventError, ID: id, RunID: res.RunID, Context: ctx, Err: res.Err})
	}
	return res
}

func runEffect(effect Effect, target dom.Element, d registry.Descriptor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEffectPanic, r)
		}
	}()
	return effect(target, d)
}

// Pause marks id paused and not playing
// Returns false without emitting when id has no state
func (c *Controller) Pause(id string) bool {
	return c.transition(id, event.EventPause, func(st *State) {
		st.Paused = true
		st.Playing = false
	})
}

// Resume marks id playing and not paused
func (c *Controller) Resume(id string) bool {
	return c.transition(id, event.EventResume, func(st *State) {
		st.Paused = false
		st.Playing = true
	})
}

// Stop returns id to idle with zero progress and emits animation:stop
func (c *Controller) Stop(id string) bool {
	return c.transition(id, event.EventStop, func(st *State) {
		*st = State{}
	})
}

func (c *Controller) transition(id string, et event.EventType, apply func(*State)) bool {
	c.mu.Lock()
	st, ok := c.states[id]
	if ok {
		apply(st)
	}
	c.mu.Unlock()

	if ok {
		c.emit(event.Event{Type: et, ID: id})
	}
	return ok
}

// SetProgress records advisory progress clamped to [0, 100]
func (c *Controller) SetProgress(id string, progress float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[id]
	if ok {
		st.Progress = max(0, min(100, progress))
	}
	return ok
}

// ResetAll returns every tracked animation to idle and emits a single animation:reset-all
func (c *Controller) ResetAll() {
	c.mu.Lock()
	for _, st := range c.states {
		*st = State{}
	}
	c.mu.Unlock()

	c.emit(event.Event{Type: event.EventResetAll})
}

// State returns a copy of the runtime state for id
func (c *Controller) State(id string) (State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.states[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Playing returns ids currently in the playing state, in registration order
func (c *Controller) Playing() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []string
	for _, id := range c.order {
		if c.states[id].Playing {
			ids = append(ids, id)
		}
	}
	return ids
}

// Descriptor returns the registered descriptor for id
func (c *Controller) Descriptor(id string) (registry.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.descriptors[id]
	return d, ok
}

// All returns registered descriptors in first-registration order
func (c *Controller) All() []registry.Descriptor {
	return c.filter(func(registry.Descriptor) bool { return true })
}

// ByPage returns registered descriptors for page
func (c *Controller) ByPage(page string) []registry.Descriptor {
	return c.filter(func(d registry.Descriptor) bool { return d.Page == page })
}

// ByComponent returns registered descriptors for component
func (c *Controller) ByComponent(component string) []registry.Descriptor {
	return c.filter(func(d registry.Descriptor) bool { return d.Component == component })
}

// ByTrigger returns registered descriptors for trigger
func (c *Controller) ByTrigger(trigger registry.Trigger) []registry.Descriptor {
	return c.filter(func(d registry.Descriptor) bool { return d.Trigger == trigger })
}

func (c *Controller) filter(keep func(registry.Descriptor) bool) []registry.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []registry.Descriptor
	for _, id := range c.order {
		if d := c.descriptors[id]; keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// On subscribes a listener to a lifecycle event
func (c *Controller) On(t event.EventType, l event.Listener) (unsubscribe func()) {
	return c.bus.On(t, l)
}

// OnFunc subscribes a function to a lifecycle event
func (c *Controller) OnFunc(t event.EventType, fn func(event.Event)) (unsubscribe func()) {
	return c.bus.OnFunc(t, fn)
}

// Emit publishes an externally asserted event, stamping the time if unset
func (c *Controller) Emit(ev event.Event) {
	c.emit(ev)
}

func (c *Controller) emit(ev event.Event) {
	if ev.Time.IsZero() {
		ev.Time = c.clock.Now()
	}
	c.bus.Emit(ev)
}

// Bus exposes the underlying event bus
func (c *Controller) Bus() *event.Bus { return c.bus }
