package host

import (
	"time"

	"github.com/lixenwraith/folio-motion/engine"
)

// MotionThrottle is the minimum spacing between processed pointer-move events
const MotionThrottle = 50 * time.Millisecond

type point struct{ x, y int }

// throttle admits at most one call per interval and keeps the latest rejected value
// for a trailing flush, so the final pointer position is never lost
type throttle struct {
	interval time.Duration
	clock    engine.TimeSource
	last     time.Time
	pending  *point
}

func newThrottle(interval time.Duration, clock engine.TimeSource) *throttle {
	return &throttle{interval: interval, clock: clock}
}

// offer returns the point to process now, or false if it was deferred
func (t *throttle) offer(p point) (point, bool) {
	now := t.clock.Now()
	if t.last.IsZero() || now.Sub(t.last) >= t.interval {
		t.last = now
		t.pending = nil
		return p, true
	}
	t.pending = &p
	return point{}, false
}

// flush returns the deferred point once the interval has passed
func (t *throttle) flush() (point, bool) {
	if t.pending == nil {
		return point{}, false
	}
	return t.offer(*t.pending)
}
