package journal

import "sync"

// queue is a FIFO ring buffer that doubles its capacity when 70% full, up to
// limit items. Past the limit the oldest item is dropped.
type queue[T any] struct {
	mu    sync.Mutex
	buf   []T
	head  int
	count int
	limit int

	notify chan struct{}

	dropped int64
}

func newQueue[T any](initial, limit int) *queue[T] {
	if initial < 1 {
		initial = 1
	}
	if limit < initial {
		limit = initial
	}
	return &queue[T]{
		buf:    make([]T, initial),
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

// push appends item, dropping the oldest item when the queue is at its limit.
func (q *queue[T]) push(item T) {
	q.mu.Lock()
	if q.count+1 >= len(q.buf)*70/100 && len(q.buf) < q.limit {
		q.grow()
	}
	if q.count == len(q.buf) {
		var zero T
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
		q.count--
		q.dropped++
	}
	q.buf[(q.head+q.count)%len(q.buf)] = item
	q.count++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// take removes up to max items in FIFO order. max <= 0 takes everything.
func (q *queue[T]) take(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.count
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]T, n)
	var zero T
	for i := range out {
		out[i] = q.buf[q.head]
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
	}
	q.count -= n
	return out
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

func (q *queue[T]) droppedCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// grow doubles capacity, capped at limit. Must be called with lock held.
func (q *queue[T]) grow() {
	size := len(q.buf) * 2
	if size > q.limit {
		size = q.limit
	}
	buf := make([]T, size)
	for i := 0; i < q.count; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
