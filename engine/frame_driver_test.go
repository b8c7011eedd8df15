package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lixenwraith/folio-motion/status"
)

func TestFrameDriver_TickRunsStepsInOrder(t *testing.T) {
	var order []int
	reg := status.NewRegistry()
	fd := NewFrameDriver(time.Millisecond, nil, reg,
		UpdaterFunc(func() { order = append(order, 1) }),
		UpdaterFunc(func() { order = append(order, 2) }),
	)

	fd.Tick()
	fd.Tick()

	assert.Equal(t, []int{1, 2, 1, 2}, order)
	assert.Equal(t, uint64(2), fd.Frames())
	assert.Equal(t, int64(2), reg.Ints.Get("frame.count").Load())
}

func TestFrameDriver_PanickingStepIsIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ran := false
	fd := NewFrameDriver(time.Millisecond, zap.New(core), nil,
		UpdaterFunc(func() { panic("bad step") }),
		UpdaterFunc(func() { ran = true }),
	)

	require.NotPanics(t, fd.Tick)
	assert.True(t, ran)
	assert.Equal(t, 1, logs.FilterMessage("frame step failed").Len())
}

func TestFrameDriver_StopEndsRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ticks atomic.Int64
	fd := NewFrameDriver(time.Millisecond, nil, nil, UpdaterFunc(func() { ticks.Add(1) }))
	done := make(chan error, 1)
	go func() { done <- fd.Run(context.Background()) }()

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)
	fd.Stop()
	fd.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not return after stop")
	}

	after := ticks.Load()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no frames after stop")
}

func TestFrameDriver_RunEndsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	fd := NewFrameDriver(time.Millisecond, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- fd.Run(ctx) }()

	require.Eventually(t, func() bool { return fd.Frames() > 0 }, time.Second, time.Millisecond)
	assert.Error(t, fd.Run(ctx), "second run is rejected")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancel")
	}
}
