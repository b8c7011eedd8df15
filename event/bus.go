package event

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Listener receives lifecycle events
type Listener interface {
	HandleEvent(ev Event)
}

// ListenerFunc adapts a function to Listener
// Function values are not comparable, so every subscription of a ListenerFunc is distinct
type ListenerFunc func(ev Event)

// HandleEvent implements Listener
func (f ListenerFunc) HandleEvent(ev Event) { f(ev) }

type subscription struct {
	token    uint64
	listener Listener
}

// Bus delivers events to listeners subscribed per event type
//
// Delivery rules:
//   - Synchronous with Emit, in subscription order per event type
//   - A panicking listener is logged and skipped; later listeners still run
//   - Subscribing the same comparable listener twice to one type is a no-op
type Bus struct {
	mu        sync.RWMutex
	listeners map[EventType][]subscription
	next      uint64
	logger    *zap.Logger
}

// NewBus creates an empty bus, nil logger discards listener failures
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		listeners: make(map[EventType][]subscription),
		logger:    logger,
	}
}

// On subscribes l to events of type t and returns the unsubscribe function
func (b *Bus) On(t EventType, l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if reflect.TypeOf(l).Comparable() {
		for _, s := range b.listeners[t] {
			if sameListener(s.listener, l) {
				return b.remover(t, s.token)
			}
		}
	}

	b.next++
	token := b.next
	b.listeners[t] = append(b.listeners[t], subscription{token: token, listener: l})
	return b.remover(t, token)
}

// sameListener compares two listeners, treating values that hold funcs
// behind an interface field as distinct rather than panicking
func sameListener(a, b Listener) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// OnFunc subscribes a function
func (b *Bus) OnFunc(t EventType, fn func(Event)) (unsubscribe func()) {
	return b.On(t, ListenerFunc(fn))
}

func (b *Bus) remover(t EventType, token uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.listeners[t]
			for i, s := range subs {
				if s.token == token {
					b.listeners[t] = append(subs[:i:i], subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit delivers ev to every listener of ev.Type
// Listeners may subscribe or unsubscribe during delivery; changes apply from the next Emit
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := b.listeners[ev.Type]
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	b.mu.RUnlock()

	for _, s := range snapshot {
		b.deliver(s.listener, ev)
	}
}

func (b *Bus) deliver(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener failed",
				zap.String("event", ev.Type.String()),
				zap.String("id", ev.ID),
				zap.Error(fmt.Errorf("panic: %v", r)))
		}
	}()
	l.HandleEvent(ev)
}

// ListenerCount returns the number of listeners subscribed to t
func (b *Bus) ListenerCount(t EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[t])
}
