package tuner

import (
	"context"
	"errors"
	"sync"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// ErrQueueClosed is returned by Pop once a closed queue is drained
var ErrQueueClosed = errors.New("frame queue closed")

// FrameQueue is a bounded single-producer single-consumer queue between an
// audio source and the evaluator. Push never blocks: when the queue is full
// the oldest chunk is dropped, so the evaluator always works on recent audio
type FrameQueue struct {
	mu      sync.Mutex
	items   []common.SampleData
	head    int
	count   int
	closed  bool
	dropped int64
	notify  chan struct{}
}

// NewFrameQueue creates a queue holding up to capacity chunks
func NewFrameQueue(capacity int) *FrameQueue {
	return &FrameQueue{
		items:  make([]common.SampleData, max(capacity, 1)),
		notify: make(chan struct{}, 1),
	}
}

// Push appends a chunk. It reports whether an older chunk had to be dropped.
// Pushing to a closed queue drops the chunk
func (q *FrameQueue) Push(data common.SampleData) (dropped bool) {
	q.mu.Lock()
	if q.closed {
		q.dropped++
		q.mu.Unlock()
		return true
	}
	if q.count == len(q.items) {
		q.items[q.head] = common.SampleData{}
		q.head = (q.head + 1) % len(q.items)
		q.count--
		q.dropped++
		dropped = true
	}
	q.items[(q.head+q.count)%len(q.items)] = data
	q.count++
	q.mu.Unlock()

	q.signal()
	return dropped
}

func (q *FrameQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes the oldest chunk, waiting until one arrives, the queue is
// closed or ctx is done
func (q *FrameQueue) Pop(ctx context.Context) (common.SampleData, error) {
	for {
		q.mu.Lock()
		if q.count > 0 {
			data := q.items[q.head]
			q.items[q.head] = common.SampleData{}
			q.head = (q.head + 1) % len(q.items)
			q.count--
			q.mu.Unlock()
			return data, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return common.SampleData{}, ErrQueueClosed
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return common.SampleData{}, ctx.Err()
		}
	}
}

// Close stops accepting chunks. Chunks already queued can still be popped
func (q *FrameQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Len returns the number of queued chunks
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Dropped returns the number of chunks lost to overflow or closing
func (q *FrameQueue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
