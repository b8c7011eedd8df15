package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingListener struct {
	name string
	log  *[]string
}

func (r *recordingListener) HandleEvent(ev Event) {
	*r.log = append(*r.log, r.name+":"+ev.ID)
}

func TestBus_DeliveryOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string

	bus.On(EventStop, &recordingListener{name: "A", log: &got})
	bus.On(EventStop, &recordingListener{name: "B", log: &got})
	bus.On(EventStart, &recordingListener{name: "C", log: &got})

	bus.Emit(Event{Type: EventStop, ID: "x"})
	assert.Equal(t, []string{"A:x", "B:x"}, got)
}

func TestBus_DeduplicatesComparableListener(t *testing.T) {
	bus := NewBus(nil)
	var got []string
	l := &recordingListener{name: "A", log: &got}

	unsub1 := bus.On(EventStart, l)
	bus.On(EventStart, l)
	assert.Equal(t, 1, bus.ListenerCount(EventStart))

	bus.Emit(Event{Type: EventStart, ID: "x"})
	assert.Equal(t, []string{"A:x"}, got)

	unsub1()
	assert.Equal(t, 0, bus.ListenerCount(EventStart))
}

type boxedListener struct {
	fn any
}

func (b boxedListener) HandleEvent(ev Event) { b.fn.(func(Event))(ev) }

func TestBus_ListenerHoldingFuncIsNotCompared(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	fn := func(Event) { calls++ }

	require.NotPanics(t, func() {
		bus.On(EventStart, boxedListener{fn: fn})
		bus.On(EventStart, boxedListener{fn: fn})
	})
	assert.Equal(t, 2, bus.ListenerCount(EventStart))

	bus.Emit(Event{Type: EventStart})
	assert.Equal(t, 2, calls)
}

func TestBus_FuncListenersAreDistinct(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	fn := func(Event) { calls++ }

	bus.OnFunc(EventPause, fn)
	bus.OnFunc(EventPause, fn)
	bus.Emit(Event{Type: EventPause})
	assert.Equal(t, 2, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	unsub := bus.OnFunc(EventResume, func(Event) { calls++ })

	bus.Emit(Event{Type: EventResume})
	unsub()
	unsub()
	bus.Emit(Event{Type: EventResume})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.ListenerCount(EventResume))
}

func TestBus_PanickingListenerIsIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewBus(zap.New(core))

	var after bool
	bus.OnFunc(EventError, func(Event) { panic("boom") })
	bus.OnFunc(EventError, func(Event) { after = true })

	require.NotPanics(t, func() { bus.Emit(Event{Type: EventError, ID: "x"}) })
	assert.True(t, after)
	assert.Equal(t, 1, logs.FilterMessage("event listener failed").Len())
}

func TestBus_NilListener(t *testing.T) {
	bus := NewBus(nil)
	unsub := bus.On(EventStart, nil)
	unsub()
	assert.Equal(t, 0, bus.ListenerCount(EventStart))
}

func TestBus_ConcurrentSubscribeEmit(t *testing.T) {
	bus := NewBus(nil)
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := bus.OnFunc(EventStart, func(Event) {
				mu.Lock()
				total++
				mu.Unlock()
			})
			bus.Emit(Event{Type: EventStart})
			unsub()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.ListenerCount(EventStart))
	assert.Positive(t, total)
}

func TestEventType_WireNames(t *testing.T) {
	assert.Equal(t, "animation:stop", EventStop.String())
	assert.Equal(t, "animation:reset-all", EventResetAll.String())
	assert.Empty(t, GetEventName(EventType(99)))
}
