package writer

import "sync"

// Buffer is a bounded FIFO queue that signals readers through a channel
// instead of blocking them.
type Buffer[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	closed   bool
	ready    chan struct{}

	// Stats
	totalReceived int64
	totalDropped  int64
}

// NewBuffer creates a buffer holding at most capacity items.
func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

// Send queues an item. Returns false if the buffer is full or closed.
func (b *Buffer[T]) Send(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || len(b.items) >= b.capacity {
		b.totalDropped++
		return false
	}
	b.items = append(b.items, item)
	b.totalReceived++

	select {
	case b.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready is signalled after a Send. One signal may cover many items.
func (b *Buffer[T]) Ready() <-chan struct{} {
	return b.ready
}

// Drain removes up to max items (all if max <= 0) in FIFO order.
func (b *Buffer[T]) Drain(max int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.items)
	if n == 0 {
		return nil
	}
	if max > 0 && max < n {
		n = max
	}

	out := make([]T, n)
	copy(out, b.items[:n])
	var zero T
	for i := 0; i < n; i++ {
		b.items[i] = zero
	}
	b.items = b.items[n:]
	return out
}

// Close rejects further sends. Queued items can still be drained.
func (b *Buffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Len returns the number of queued items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Stats returns buffer statistics.
func (b *Buffer[T]) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Count:         len(b.items),
		Capacity:      b.capacity,
		TotalReceived: b.totalReceived,
		TotalDropped:  b.totalDropped,
	}
}

// BufferStats contains buffer statistics.
type BufferStats struct {
	Count         int
	Capacity      int
	TotalReceived int64
	TotalDropped  int64
}
