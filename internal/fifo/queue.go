package fifo

// Queue is a growable first-in first-out buffer. Elements are appended at the end and
// consumed from the front; the backing array is compacted before it is grown so that a
// queue which is regularly drained does not keep growing.
type Queue[T any] struct {
	buffer     []T
	maxSize    int
	startIndex int
	endIndex   int
}

// New creates a queue with an initial capacity of size elements
func New[T any](size int) *Queue[T] {
	if size < 1 {
		size = 1
	}

	return &Queue[T]{
		buffer:  make([]T, size),
		maxSize: size,
	}
}

func (q *Queue[T]) straighten() {
	if q.startIndex == 0 {
		return
	}

	len := q.endIndex - q.startIndex

	if len > 0 {
		copy(q.buffer[:len], q.buffer[q.startIndex:q.endIndex])
	}

	q.startIndex = 0
	q.endIndex = len
}

// Queue appends elements to the end of the queue. There is no upper bound.
func (q *Queue[T]) Queue(elements ...T) {
	for i := 0; i < len(elements); i++ {
		if q.endIndex < len(q.buffer) {
			q.buffer[q.endIndex] = elements[i]
			q.endIndex++
			continue
		}

		q.straighten()

		if q.endIndex*100/q.maxSize > 80 {
			newMaxSize := q.maxSize * 2
			newBuffer := make([]T, newMaxSize)
			copy(newBuffer, q.buffer)
			q.buffer = newBuffer
			q.maxSize = newMaxSize
		}

		i--
	}
}

// Dequeue removes and returns the first element, or the zero value if the queue is empty
func (q *Queue[T]) Dequeue() T {
	if q.startIndex == q.endIndex {
		var zero T
		return zero
	}

	value := q.buffer[q.startIndex]
	q.startIndex++
	return value
}

// DropElements removes up to n elements from the front of the queue
func (q *Queue[T]) DropElements(n int) {
	newStart := q.startIndex + n
	if newStart > q.endIndex {
		q.startIndex = q.endIndex
	} else {
		q.startIndex = newStart
	}

	if q.startIndex == q.endIndex {
		q.startIndex = 0
		q.endIndex = 0
	}
}

// Buffer returns the queued elements in order. The slice aliases the queue and is only
// valid until the next call that modifies it.
func (q *Queue[T]) Buffer() []T {
	return q.buffer[q.startIndex:q.endIndex]
}

// Take returns a copy of every queued element and empties the queue
func (q *Queue[T]) Take() []T {
	out := make([]T, q.Len())
	copy(out, q.Buffer())
	q.DropElements(len(out))
	return out
}

// Len returns the number of queued elements
func (q *Queue[T]) Len() int {
	return q.endIndex - q.startIndex
}

// Reset drops every element
func (q *Queue[T]) Reset() {
	q.startIndex = 0
	q.endIndex = 0
}
