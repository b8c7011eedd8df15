package prefs

import "sync"

// Flag is a settable boolean signal with change watchers
// Watchers run synchronously on the goroutine calling Set, in subscription order,
// and only when the value actually changes
type Flag struct {
	mu       sync.Mutex
	active   bool
	next     uint64
	watchers []flagWatcher
}

type flagWatcher struct {
	token uint64
	fn    func(bool)
}

// NewFlag creates a flag with the given initial value
func NewFlag(initial bool) *Flag {
	return &Flag{active: initial}
}

// Active returns the current value
func (f *Flag) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Set stores v and notifies watchers when it differs from the current value
func (f *Flag) Set(v bool) {
	f.mu.Lock()
	if f.active == v {
		f.mu.Unlock()
		return
	}
	f.active = v
	watchers := make([]flagWatcher, len(f.watchers))
	copy(watchers, f.watchers)
	f.mu.Unlock()

	for _, w := range watchers {
		w.fn(v)
	}
}

// Watch registers fn for value changes and returns the unsubscribe function
func (f *Flag) Watch(fn func(bool)) (unwatch func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	token := f.next
	f.watchers = append(f.watchers, flagWatcher{token: token, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, w := range f.watchers {
				if w.token == token {
					f.watchers = append(f.watchers[:i:i], f.watchers[i+1:]...)
					return
				}
			}
		})
	}
}
