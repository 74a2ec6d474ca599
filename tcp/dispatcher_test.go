package tcp

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-client/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder collects handler invocations as strings in arrival order.
type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *eventRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *eventRecorder) handlers() Handlers {
	return Handlers{
		OnOpponentMove:         func(row, col int) { r.add("opponent (%d,%d)", row, col) },
		OnTurnChanged:          func(mine bool) { r.add("turn %t", mine) },
		OnScoreChanged:         func(s int) { r.add("score %d", s) },
		OnOpponentScoreChanged: func(s int) { r.add("otherScore %d", s) },
		OnGameOver:             func() { r.add("gameOver") },
	}
}

func newDispatchManager(t *testing.T, rec *eventRecorder) *ClientSocketManager {
	t.Helper()
	c, err := NewClientSocketManager(ClientConfig{ServerAddr: "pipe", Handlers: rec.handlers()})
	require.NoError(t, err)
	return c
}

func TestDispatch(t *testing.T) {
	rec := &eventRecorder{}
	c := newDispatchManager(t, rec)
	l, serverConn := pipeLink(t)

	finished := make(chan struct{})
	go func() {
		c.dispatch(l)
		close(finished)
	}()

	w := protocol.NewWriter(serverConn)
	require.NoError(t, w.WriteLines(
		protocol.KeywordTurn,
		protocol.KeywordNode, "(2,3)",
		"foobar",
		protocol.KeywordScore, "10",
		protocol.KeywordOtherScore, "-5",
		protocol.KeywordNotTurn,
		protocol.KeywordGameOver,
	))
	serverConn.Close()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop at end of stream")
	}

	assert.Equal(t, []string{
		"turn true",
		"opponent (2,3)",
		"score 10",
		"otherScore -5",
		"turn false",
		"gameOver",
	}, rec.snapshot())
	assert.True(t, l.failed())
	assert.ErrorIs(t, l.err, ErrPeerClosed)
}

func TestDispatch_ProtocolViolation(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{name: "Bad coordinate", lines: []string{protocol.KeywordNode, "2,3"}},
		{name: "Bad score", lines: []string{protocol.KeywordScore, "ten"}},
		{name: "Bad opponent score", lines: []string{protocol.KeywordOtherScore, "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &eventRecorder{}
			c := newDispatchManager(t, rec)
			l, serverConn := pipeLink(t)

			finished := make(chan struct{})
			go func() {
				c.dispatch(l)
				close(finished)
			}()

			w := protocol.NewWriter(serverConn)
			require.NoError(t, w.WriteLines(tt.lines...))

			select {
			case <-finished:
			case <-time.After(time.Second):
				t.Fatal("dispatcher kept running after a malformed payload")
			}
			assert.ErrorIs(t, l.err, protocol.ErrProtocolViolation)
			assert.Empty(t, rec.snapshot())
		})
	}
}

func TestDispatch_FailedLink(t *testing.T) {
	rec := &eventRecorder{}
	c := newDispatchManager(t, rec)
	l, serverConn := pipeLink(t)

	go func() {
		_ = protocol.NewWriter(serverConn).WriteLines(protocol.KeywordTurn, protocol.KeywordGameOver)
	}()
	l.fail(ErrStopped)

	finished := make(chan struct{})
	go func() {
		c.dispatch(l)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("dispatcher kept reading a failed link")
	}
	assert.Empty(t, rec.snapshot())
	assert.ErrorIs(t, l.err, ErrStopped)
}
