package engine

import (
	"sync"
	"time"
)

// PausableClock derives a time line that stands still while paused
// Elapsed time measured against it excludes every paused interval
type PausableClock struct {
	mu sync.RWMutex

	source    TimeSource
	startTime time.Time // Source time when the clock was created

	// Pause state
	paused          bool
	pauseStartTime  time.Time     // Source time when the current pause started
	totalPausedTime time.Duration // Cumulative completed pause duration
}

// NewPausableClock creates a running clock over source, nil uses real time
func NewPausableClock(source TimeSource) *PausableClock {
	if source == nil {
		source = NewTimeProvider()
	}
	return &PausableClock{
		source:    source,
		startTime: source.Now(),
	}
}

// Now returns the pause-adjusted time
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	at := pc.source.Now()
	if pc.paused {
		// Frozen at the pause point
		at = pc.pauseStartTime
	}
	return pc.startTime.Add(at.Sub(pc.startTime) - pc.totalPausedTime)
}

// Pause freezes the clock, returns false if already paused
func (pc *PausableClock) Pause() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.paused {
		return false
	}
	pc.paused = true
	pc.pauseStartTime = pc.source.Now()
	return true
}

// Resume restarts the clock, returns false if not paused
func (pc *PausableClock) Resume() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.paused {
		return false
	}
	pc.totalPausedTime += pc.source.Now().Sub(pc.pauseStartTime)
	pc.paused = false
	pc.pauseStartTime = time.Time{}
	return true
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.paused
}

// TotalPauseDuration returns cumulative pause time including an ongoing pause
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.paused {
		total += pc.source.Now().Sub(pc.pauseStartTime)
	}
	return total
}
