package queue

import "sync"

// UniqueQueue is a FIFO queue that holds each item at most once at a time.
// An item can be queued again once it has been removed.
type UniqueQueue[T comparable] struct {
	lock    sync.Mutex
	items   []T
	pending map[T]struct{}
}

func NewUniqueQueue[T comparable]() *UniqueQueue[T] {
	return &UniqueQueue[T]{
		pending: make(map[T]struct{}),
	}
}

// Enqueue appends item unless it is already queued.
func (q *UniqueQueue[T]) Enqueue(item T) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.pending[item]; ok {
		return ErrDuplicate
	}
	q.pending[item] = struct{}{}
	q.items = append(q.items, item)
	return nil
}

// Peek returns the head of the queue without removing it.
func (q *UniqueQueue[T]) Peek() (T, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, ErrQueueEmpty
	}
	return q.items[0], nil
}

// Dequeue removes and returns the head of the queue.
func (q *UniqueQueue[T]) Dequeue() (T, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, ErrQueueEmpty
	}
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	delete(q.pending, item)
	return item, nil
}

// Contains reports whether item is currently queued.
func (q *UniqueQueue[T]) Contains(item T) bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	_, ok := q.pending[item]
	return ok
}

func (q *UniqueQueue[T]) Size() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.items)
}

// ReadAllMessages removes and returns every queued item in FIFO order.
func (q *UniqueQueue[T]) ReadAllMessages() ([]T, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	items := q.items
	q.items = nil
	q.pending = make(map[T]struct{})
	return items, nil
}

func (q *UniqueQueue[T]) ClearQueue() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.items = nil
	q.pending = make(map[T]struct{})
}
