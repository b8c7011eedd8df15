// Package scheduler defers animation callbacks behind policy gates
//
// A request either runs immediately (reduced motion or low-power mode make the
// delay pointless) or is queued until Update observes that its duration has
// elapsed on the pausable clock. Update is driven by an external per-frame caller
package scheduler

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio-motion/engine"
	"github.com/lixenwraith/folio-motion/status"
)

// LowPowerKey is the store key holding the persisted low-power flag ("true"/"false")
const LowPowerKey = "lowPowerMode"

// Signal is a host-provided boolean with change notifications
// Reduced-motion preference and document visibility are both exposed this way
type Signal interface {
	Active() bool
	Watch(fn func(active bool)) (unwatch func())
}

// Store persists the low-power flag
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// CancelFunc removes a queued entry; calling it after the entry ran has no effect
type CancelFunc func()

// Options configures a Scheduler, every field is optional
type Options struct {
	// Clock is the source time; the scheduler wraps it in a pausable clock
	Clock engine.TimeSource

	// Store holds the low-power flag under LowPowerKey
	Store Store

	// ReducedMotion is active when the user prefers reduced motion
	ReducedMotion Signal

	// Hidden is active while the document is not visible
	Hidden Signal

	Logger *zap.Logger
	Status *status.Registry
}

type entry struct {
	id        string
	callback  func()
	duration  time.Duration
	priority  Priority
	start     time.Time // Pausable clock time at scheduling
	seq       uint64
	cancelled bool
}

func (e *entry) due() time.Time { return e.start.Add(e.duration) }

// Scheduler queues deferred animation callbacks
// All methods are safe for concurrent use; callbacks run without the lock held
// so they may schedule or cancel
type Scheduler struct {
	mu       sync.Mutex
	entries  map[string]*entry
	seq      uint64
	lowPower bool

	clock   *engine.PausableClock
	store   Store
	reduced Signal
	logger  *zap.Logger
	unwatch []func()

	statQueued    *atomic.Int64
	statExecuted  *atomic.Int64
	statImmediate *atomic.Int64
	statCancelled *atomic.Int64
	statFailed    *atomic.Int64
	statPaused    *atomic.Bool
	statLowPower  *atomic.Bool
}

// New creates a scheduler, reads the persisted low-power flag once and
// subscribes to the reduced-motion and visibility signals
func New(opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	reg := status.OrNew(opts.Status)

	s := &Scheduler{
		entries:       make(map[string]*entry),
		clock:         engine.NewPausableClock(opts.Clock),
		store:         opts.Store,
		reduced:       opts.ReducedMotion,
		logger:        opts.Logger,
		statQueued:    reg.Ints.Get("scheduler.queued"),
		statExecuted:  reg.Ints.Get("scheduler.executed"),
		statImmediate: reg.Ints.Get("scheduler.immediate"),
		statCancelled: reg.Ints.Get("scheduler.cancelled"),
		statFailed:    reg.Ints.Get("scheduler.failed"),
		statPaused:    reg.Bools.Get("scheduler.paused"),
		statLowPower:  reg.Bools.Get("scheduler.low_power"),
	}

	s.lowPower = s.loadLowPower()
	s.statLowPower.Store(s.lowPower)

	if opts.ReducedMotion != nil {
		s.unwatch = append(s.unwatch, opts.ReducedMotion.Watch(func(active bool) {
			s.logger.Debug("reduced motion changed", zap.Bool("active", active))
			s.setPaused(active)
		}))
	}
	if opts.Hidden != nil {
		s.unwatch = append(s.unwatch, opts.Hidden.Watch(func(hidden bool) {
			s.logger.Debug("visibility changed", zap.Bool("hidden", hidden))
			s.setPaused(hidden)
		}))
	}
	return s
}

func (s *Scheduler) loadLowPower() bool {
	if s.store == nil {
		return false
	}
	v, ok, err := s.store.Get(LowPowerKey)
	if err != nil {
		s.logger.Warn("read low-power flag", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		s.logger.Warn("invalid low-power flag", zap.String("value", v))
		return false
	}
	return on
}

// Schedule runs callback after duration at the given priority and returns its cancel function
//
// The callback runs synchronously before Schedule returns, and the cancel function is a no-op, when
// reduced motion is active and priority is not critical, or low-power mode is active and priority
// is neither critical nor high. Scheduling an id that is already queued replaces the queued entry
func (s *Scheduler) Schedule(id string, callback func(), duration time.Duration, priority Priority) CancelFunc {
	if callback == nil {
		return func() {}
	}

	s.mu.Lock()
	immediate := (s.ReducedMotion() && !priority.bypassesReducedMotion()) ||
		(s.lowPower && !priority.bypassesLowPower())
	if immediate {
		s.mu.Unlock()
		s.statImmediate.Add(1)
		s.execute(id, callback)
		return func() {}
	}

	s.seq++
	e := &entry{
		id:       id,
		callback: callback,
		duration: max(duration, 0),
		priority: priority,
		start:    s.clock.Now(),
		seq:      s.seq,
	}
	if prev, ok := s.entries[id]; ok {
		prev.cancelled = true
	}
	s.entries[id] = e
	s.statQueued.Store(int64(len(s.entries)))
	s.mu.Unlock()

	return func() { s.cancel(e) }
}

func (s *Scheduler) cancel(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.cancelled {
		return
	}
	e.cancelled = true
	if s.entries[e.id] == e {
		delete(s.entries, e.id)
		s.statCancelled.Add(1)
		s.statQueued.Store(int64(len(s.entries)))
	}
}

// Update executes every entry whose duration has elapsed and removes it
// Nothing runs while globally paused. Due entries run by priority, then due time,
// then scheduling order; a failing callback does not stop the rest
func (s *Scheduler) Update() {
	s.mu.Lock()
	if s.clock.IsPaused() {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	var due []*entry
	for id, e := range s.entries {
		if e.cancelled {
			delete(s.entries, id)
			continue
		}
		if now.Sub(e.start) >= e.duration {
			due = append(due, e)
			delete(s.entries, id)
		}
	}
	s.statQueued.Store(int64(len(s.entries)))
	s.mu.Unlock()

	slices.SortFunc(due, func(a, b *entry) int {
		return cmp.Or(
			cmp.Compare(a.priority, b.priority),
			a.due().Compare(b.due()),
			cmp.Compare(a.seq, b.seq),
		)
	})

	for _, e := range due {
		s.mu.Lock()
		// Cancelled by an earlier callback in this batch
		skip := e.cancelled
		e.cancelled = true
		s.mu.Unlock()
		if skip {
			continue
		}
		s.execute(e.id, e.callback)
	}
}

func (s *Scheduler) execute(id string, callback func()) {
	defer func() {
		if r := recover(); r != nil {
			s.statFailed.Add(1)
			s.logger.Error("scheduled callback failed", zap.String("id", id), zap.Error(fmt.Errorf("panic: %v", r)))
		}
	}()
	callback()
	s.statExecuted.Add(1)
}

// PauseAll freezes every queued entry; elapsed time stops accruing until ResumeAll
func (s *Scheduler) PauseAll() { s.setPaused(true) }

// ResumeAll unfreezes queued entries, which keep the time they had left at PauseAll
func (s *Scheduler) ResumeAll() { s.setPaused(false) }

func (s *Scheduler) setPaused(paused bool) {
	if paused {
		s.clock.Pause()
	} else {
		s.clock.Resume()
		s.logger.Debug("queue resumed", zap.Duration("paused_total", s.clock.TotalPauseDuration()))
	}
	s.statPaused.Store(paused)
}

// Paused reports whether the queue is globally paused
func (s *Scheduler) Paused() bool {
	return s.clock.IsPaused()
}

// CancelPage removes every queued entry whose id starts with prefix
// Returns the number removed
func (s *Scheduler) CancelPage(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if strings.HasPrefix(id, prefix) {
			e.cancelled = true
			delete(s.entries, id)
			n++
		}
	}
	s.statCancelled.Add(int64(n))
	s.statQueued.Store(int64(len(s.entries)))
	if n > 0 {
		s.logger.Debug("page cancelled", zap.String("prefix", prefix), zap.Int("entries", n))
	}
	return n
}

// ClearAll cancels every queued entry
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		e.cancelled = true
	}
	s.statCancelled.Add(int64(len(s.entries)))
	clear(s.entries)
	s.statQueued.Store(0)
}

// Len returns the number of queued entries
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Pending reports whether id is queued
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// SetLowPowerMode persists the flag, then pauses or resumes the queue to match
func (s *Scheduler) SetLowPowerMode(on bool) error {
	s.mu.Lock()
	s.lowPower = on
	s.mu.Unlock()
	s.statLowPower.Store(on)

	var err error
	if s.store != nil {
		if err = s.store.Set(LowPowerKey, strconv.FormatBool(on)); err != nil {
			err = fmt.Errorf("persist low-power flag: %w", err)
		}
	}
	s.logger.Debug("low-power mode changed", zap.Bool("on", on))
	s.setPaused(on)
	return err
}

// LowPowerMode reports the current low-power flag
func (s *Scheduler) LowPowerMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lowPower
}

// ReducedMotion reports the current reduced-motion preference
func (s *Scheduler) ReducedMotion() bool {
	return s.reduced != nil && s.reduced.Active()
}

// Close unsubscribes from the policy signals and drops every queued entry
func (s *Scheduler) Close() {
	s.mu.Lock()
	unwatch := s.unwatch
	s.unwatch = nil
	s.mu.Unlock()

	for _, fn := range unwatch {
		fn()
	}
	s.ClearAll()
}
