package queue

import "sync"

// sliceQueue implements the Queue interface using a mutex-guarded slice.
//
// The lock is held only for the O(1) enqueue/dequeue bookkeeping; Drain swaps
// out the backing slice so callers can process the batch outside the lock.
type sliceQueue[T any] struct {
	mu       sync.Mutex
	items    []T
	prealloc int
}

// NewSliceQueue creates a new sliceQueue with the given preallocated capacity.
func NewSliceQueue[T any](prealloc int) Queue[T] {
	return &sliceQueue[T]{
		items:    make([]T, 0, prealloc),
		prealloc: prealloc,
	}
}

// Enqueue adds an item to the tail of the queue.
func (q *sliceQueue[T]) Enqueue(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Dequeue removes and returns the item at the head of the queue.
func (q *sliceQueue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	item := q.items[0]
	q.items = q.items[1:]

	return item, true
}

// Drain removes and returns all currently queued items as a single batch.
// The returned slice is owned by the caller; the queue starts over with a
// fresh backing slice.
func (q *sliceQueue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	batch := q.items
	q.items = make([]T, 0, q.prealloc)

	return batch
}

// Reset discards all queued items.
func (q *sliceQueue[T]) Reset() {
	q.mu.Lock()
	q.items = make([]T, 0, q.prealloc)
	q.mu.Unlock()
}

// IsEmpty returns true if the queue is empty, false otherwise.
func (q *sliceQueue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) == 0
}

// Length returns the number of items in the queue.
func (q *sliceQueue[T]) Length() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
