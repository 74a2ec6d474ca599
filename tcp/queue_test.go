package tcp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-client/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveQueue_FIFO(t *testing.T) {
	q := NewMoveQueue()
	moves := []protocol.Move{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 2}}
	for _, m := range moves {
		require.True(t, q.Enqueue(m))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range moves {
		got, err := q.Dequeue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestMoveQueue_KeepsDuplicates(t *testing.T) {
	q := NewMoveQueue()
	m := protocol.Move{Row: 2, Col: 2}
	q.Enqueue(m)
	q.Enqueue(m)
	assert.Equal(t, 2, q.Len())
}

func TestMoveQueue_PushFront(t *testing.T) {
	q := NewMoveQueue()
	q.Enqueue(protocol.Move{Row: 1, Col: 1})
	q.PushFront(protocol.Move{Row: 0, Col: 0})

	first, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.Move{Row: 0, Col: 0}, first)
}

func TestMoveQueue_ConcurrentProducers(t *testing.T) {
	q := NewMoveQueue()
	const producers, perProducer = 8, 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(protocol.Move{Row: p, Col: i})
			}
		}(p)
	}
	wg.Wait()
	require.Equal(t, producers*perProducer, q.Len())

	// Each producer's moves keep their relative order.
	next := make([]int, producers)
	for i := 0; i < producers*perProducer; i++ {
		m, err := q.Dequeue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, next[m.Row], m.Col)
		next[m.Row]++
	}
}

func TestMoveQueue_DequeueWaitsForEnqueue(t *testing.T) {
	q := NewMoveQueue()
	got := make(chan protocol.Move, 1)
	go func() {
		m, err := q.Dequeue(context.Background())
		if err == nil {
			got <- m
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Enqueue(protocol.Move{Row: 3, Col: 4})

	select {
	case m := <-got:
		assert.Equal(t, protocol.Move{Row: 3, Col: 4}, m)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not wake up")
	}
}

func TestMoveQueue_Unblock(t *testing.T) {
	t.Run("Context canceled", func(t *testing.T) {
		q := NewMoveQueue()
		ctx, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		go func() {
			_, err := q.Dequeue(ctx)
			errs <- err
		}()
		cancel()

		select {
		case err := <-errs:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("dequeue ignored cancellation")
		}
	})

	t.Run("Queue closed", func(t *testing.T) {
		q := NewMoveQueue()
		q.Enqueue(protocol.Move{})
		q.Enqueue(protocol.Move{})
		assert.Equal(t, 2, q.Close())
		assert.Equal(t, 0, q.Close())

		_, err := q.Dequeue(context.Background())
		assert.ErrorIs(t, err, ErrQueueClosed)
		assert.False(t, q.Enqueue(protocol.Move{}))
		assert.False(t, q.PushFront(protocol.Move{}))
		assert.Equal(t, 0, q.Len())
	})
}
