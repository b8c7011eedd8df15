package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio-motion/status"
)

// Updater is one per-frame step, e.g. interaction dispatch, scheduler advancement or rendering
type Updater interface {
	Update()
}

// UpdaterFunc adapts a function to Updater
type UpdaterFunc func()

// Update implements Updater
func (f UpdaterFunc) Update() { f() }

// FrameDriver invokes its steps once per frame on a single goroutine
// It is the external per-frame caller that advances the scheduler queue
//
// A panicking step is logged and the remaining steps of that frame still run
type FrameDriver struct {
	interval time.Duration
	steps    []Updater
	logger   *zap.Logger

	frames   atomic.Uint64
	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	statFrames *atomic.Int64
	statLastMs *status.AtomicFloat
}

// NewFrameDriver creates a driver ticking every interval through steps in order
func NewFrameDriver(interval time.Duration, logger *zap.Logger, reg *status.Registry, steps ...Updater) *FrameDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg = status.OrNew(reg)
	return &FrameDriver{
		interval:   interval,
		steps:      steps,
		logger:     logger,
		stopChan:   make(chan struct{}),
		statFrames: reg.Ints.Get("frame.count"),
		statLastMs: reg.Floats.Get("frame.last_ms"),
	}
}

// Run executes the frame loop on the calling goroutine until ctx is done or Stop is called
func (fd *FrameDriver) Run(ctx context.Context) error {
	if !fd.running.CompareAndSwap(false, true) {
		return fmt.Errorf("frame driver already running")
	}
	fd.wg.Add(1)
	defer fd.wg.Done()
	fd.loop(ctx)
	return nil
}

// Stop halts the loop and waits for the current frame to finish
func (fd *FrameDriver) Stop() {
	fd.stopOnce.Do(func() {
		close(fd.stopChan)
	})
	fd.wg.Wait()
}

func (fd *FrameDriver) loop(ctx context.Context) {
	ticker := time.NewTicker(fd.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fd.stopChan:
			return
		case <-ticker.C:
			fd.Tick()
		}
	}
}

// Tick runs one frame synchronously
func (fd *FrameDriver) Tick() {
	start := time.Now()
	for i, step := range fd.steps {
		fd.runStep(i, step)
	}
	fd.frames.Add(1)
	fd.statFrames.Add(1)
	fd.statLastMs.Set(float64(time.Since(start).Microseconds()) / 1000)
}

func (fd *FrameDriver) runStep(i int, step Updater) {
	defer func() {
		if r := recover(); r != nil {
			fd.logger.Error("frame step failed", zap.Int("step", i), zap.Error(fmt.Errorf("panic: %v", r)))
		}
	}()
	step.Update()
}

// Frames returns the number of completed frames
func (fd *FrameDriver) Frames() uint64 {
	return fd.frames.Load()
}
