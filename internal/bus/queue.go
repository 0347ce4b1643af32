package bus

import (
	"errors"
	"sync/atomic"
)

var (
	ErrQueueFull   = errors.New("queue full")
	ErrQueueClosed = errors.New("queue closed")
)

// Queue is a bounded, thread-safe FIFO. Push applies backpressure by blocking
// while the queue is at capacity; Pop blocks while it is empty. The queue never
// drops or duplicates elements.
type Queue[T any] struct {
	ch     chan T
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push enqueues v, blocking until capacity permits.
func (q *Queue[T]) Push(v T) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	q.ch <- v
	return nil
}

// TryPush enqueues v without blocking.
func (q *Queue[T]) TryPush(v T) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case q.ch <- v:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pop dequeues the head, blocking until an element is available.
// It reports false once the queue is closed and drained.
func (q *Queue[T]) Pop() (T, bool) {
	v, ok := <-q.ch
	return v, ok
}

// TryPop dequeues the head without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	select {
	case v, ok := <-q.ch:
		return v, ok
	default:
		var zero T
		return zero, false
	}
}

// Len reports the number of buffered elements. The value may be stale by the
// time the caller reads it.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Empty reports whether the queue is currently drained.
func (q *Queue[T]) Empty() bool {
	return len(q.ch) == 0
}

// Close stops the queue from accepting new elements. Buffered elements stay
// poppable; Pop reports false after the drain completes.
func (q *Queue[T]) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}
