package event

import "sync/atomic"

// DefaultQueueSize is the ring capacity used by hosts for interaction events
const DefaultQueueSize = 256

// Queue is a lock-free MPSC ring buffer
// Thread-Safety:
//   - Push: lock-free CAS, multiple producers OK (input goroutines)
//   - Consume: single consumer (frame driver)
//   - Published flags prevent reading partial writes
//
// Overflow: oldest items overwritten when full
type Queue[T any] struct {
	items     []T
	published []atomic.Bool // True = slot fully written
	mask      uint64
	size      uint64
	head      atomic.Uint64 // Read index
	tail      atomic.Uint64 // Write index
}

// NewQueue creates a queue whose capacity is size rounded up to a power of two
func NewQueue[T any](size int) *Queue[T] {
	capacity := uint64(1)
	for capacity < uint64(max(size, 1)) {
		capacity <<= 1
	}
	return &Queue[T]{
		items:     make([]T, capacity),
		published: make([]atomic.Bool, capacity),
		mask:      capacity - 1,
		size:      capacity,
	}
}

// Push adds an item, safe for concurrent producers
func (q *Queue[T]) Push(item T) {
	for {
		currentTail := q.tail.Load()
		nextTail := currentTail + 1

		if q.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & q.mask

			q.items[idx] = item
			q.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread items
			currentHead := q.head.Load()
			if nextTail-currentHead > q.size {
				q.head.CompareAndSwap(currentHead, nextTail-q.size)
			}
			return
		}
	}
}

// Consume returns all pending items in FIFO order and advances head
func (q *Queue[T]) Consume() []T {
	for {
		currentHead := q.head.Load()
		currentTail := q.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		available := currentTail - currentHead
		if available > q.size {
			available = q.size
			currentHead = currentTail - q.size
		}

		result := make([]T, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (currentHead + i) & q.mask
			if !q.published[idx].Load() {
				break // Writer incomplete
			}
			result = append(result, q.items[idx])
			q.published[idx].Store(false)
		}

		if q.head.CompareAndSwap(currentHead, currentHead+uint64(len(result))) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns the approximate pending count
func (q *Queue[T]) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, q.size))
}
