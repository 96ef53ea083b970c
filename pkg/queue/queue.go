// queue package

package queue

import "errors"

var (
	// ErrQueueFull is returned when enqueueing into a queue at capacity.
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueEmpty is returned when reading from a queue with no items.
	ErrQueueEmpty = errors.New("queue is empty")
	// ErrDuplicate is returned when an item is already pending in a UniqueQueue.
	ErrDuplicate = errors.New("item is already queued")
)

// Queue represents a bounded FIFO queue.
// Implementations must be thread-safe.
type Queue[T any] interface {
	Enqueue(item T) error
	Dequeue() (T, error)
	Size() int
	ReadAllMessages() ([]T, error)
	ClearQueue()
}

func IsQueueFull(err error) bool {
	return errors.Is(err, ErrQueueFull)
}

func IsQueueEmpty(err error) bool {
	return errors.Is(err, ErrQueueEmpty)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
