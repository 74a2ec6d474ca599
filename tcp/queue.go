package tcp

import (
	"context"
	"sync"

	"github.com/beka-birhanu/vinom-client/protocol"
)

// MoveQueue is an unbounded FIFO of moves waiting to be sent. Producers never
// block; a single consumer waits in Dequeue.
type MoveQueue struct {
	mu      sync.Mutex
	items   []protocol.Move
	closed  bool
	ready   chan struct{} // holds one token while items may be available
	closing chan struct{}
}

// NewMoveQueue returns an empty queue.
func NewMoveQueue() *MoveQueue {
	return &MoveQueue{
		ready:   make(chan struct{}, 1),
		closing: make(chan struct{}),
	}
}

// Enqueue appends m. It returns false, dropping m, once the queue is closed.
func (q *MoveQueue) Enqueue(m protocol.Move) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, m)
	q.mu.Unlock()

	q.signal()
	return true
}

// PushFront puts m back at the head of the queue.
func (q *MoveQueue) PushFront(m protocol.Move) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append([]protocol.Move{m}, q.items...)
	q.mu.Unlock()

	q.signal()
	return true
}

func (q *MoveQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Dequeue blocks until a move is available, ctx is done or the queue is closed.
func (q *MoveQueue) Dequeue(ctx context.Context) (protocol.Move, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return protocol.Move{}, ErrQueueClosed
		}
		if len(q.items) > 0 {
			m := q.items[0]
			q.items[0] = protocol.Move{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return m, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-q.closing:
		case <-ctx.Done():
			return protocol.Move{}, ctx.Err()
		}
	}
}

// Len returns the number of pending moves.
func (q *MoveQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close discards pending moves and wakes the consumer. It returns how many
// moves were dropped.
func (q *MoveQueue) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0
	}
	q.closed = true
	dropped := len(q.items)
	q.items = nil
	close(q.closing)
	return dropped
}
