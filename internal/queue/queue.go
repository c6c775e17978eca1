package queue

// Queue defines the interface for a FIFO message queue.
//
// Within a queue, insertion order is delivery order. Implementations must be
// safe for concurrent use by multiple producers and consumers.
type Queue[T any] interface {
	// Enqueue adds an item to the tail of the queue.
	Enqueue(item T)
	// Dequeue removes and returns the item at the head of the queue.
	// The second return value reports whether an item was present.
	Dequeue() (T, bool)
	// Drain removes and returns all currently queued items as a batch,
	// preserving FIFO order.
	Drain() []T
	// Reset discards all queued items.
	Reset()
	// IsEmpty returns true if the queue is empty, false otherwise.
	IsEmpty() bool
	// Length returns the number of items in the queue.
	Length() int
}
