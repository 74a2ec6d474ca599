/*
Package tcp keeps a game session alive over a single TCP connection.

ClientSocketManager dials the server, runs the maze handshake and then keeps three
workers per connection: a send loop draining the MoveQueue, a heartbeat and a
dispatcher routing server messages to the configured handlers. Any transport or
protocol failure on an active connection closes it and, after a fixed backoff, a
new connection is made. Only Stop ends the session.
*/
package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/beka-birhanu/vinom-client/protocol"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Custom error types
var (
	ErrTransportFailure = errors.New("transport failure")
	ErrPeerClosed       = errors.Wrap(ErrTransportFailure, "connection closed by peer")
	ErrQueueClosed      = errors.New("move queue closed")
	ErrStopped          = errors.New("client socket manager stopped")
	ErrAlreadyStarted   = errors.New("client socket manager already started")
	ErrInvalidTimeouts  = errors.New("read timeout must be larger than the heartbeat interval")
	ErrMissingAddress   = errors.New("server address is required")
)

const (
	defaultHeartbeatInterval = 5 * time.Second
	defaultReconnectBackoff  = 5 * time.Second
	defaultDialTimeout       = 5 * time.Second

	readTimeoutFactor = 6
)

// Logger is the logging surface the socket manager needs.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// DialFunc opens a transport connection to addr.
type DialFunc func(ctx context.Context, addr string) (net.Conn, error)

// Handlers are the callbacks fed by the session. They run on the socket
// manager's goroutines and must hand work off to any UI thread themselves.
type Handlers struct {
	OnMazeReady            func(*maze.Maze)   // A handshake completed.
	OnOpponentMove         func(row, col int) // The opponent stepped to (row, col).
	OnTurnChanged          func(bool)         // True when the local player's turn begins.
	OnScoreChanged         func(int)          // Local score update.
	OnOpponentScoreChanged func(int)          // Opponent score update.
	OnGameOver             func()             // The server ended the game.
	OnStateChange          func(State, error) // Lifecycle changes, with the error that caused them if any.
}

// ClientConfig is a struct used to pass the required parameters to initialize a new ClientSocketManager
type ClientConfig struct {
	ServerAddr string // host:port of the game server.
	Handlers   Handlers
}

type ClientOption func(*ClientSocketManager)

// ClientSocketManager owns the connection lifecycle of one game session.
type ClientSocketManager struct {
	serverAddr           string
	handlers             Handlers
	heartbeatInterval    time.Duration
	readTimeout          time.Duration
	writeTimeout         time.Duration
	reconnectBackoff     time.Duration
	dialTimeout          time.Duration
	requeueOnSendFailure bool
	dial                 DialFunc
	logger               Logger

	queue   *MoveQueue
	current atomic.Pointer[link] // Active connection, swapped on every reconnect.
	state   atomic.Int32

	ctx      context.Context
	cancel   context.CancelFunc
	started  atomic.Bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewClientSocketManager initializes a new ClientSocketManager with the given configuration and options.
func NewClientSocketManager(c ClientConfig, options ...ClientOption) (*ClientSocketManager, error) {
	if c.ServerAddr == "" {
		return nil, ErrMissingAddress
	}

	s := &ClientSocketManager{
		serverAddr:        c.ServerAddr,
		handlers:          withDefaultHandlers(c.Handlers),
		heartbeatInterval: defaultHeartbeatInterval,
		reconnectBackoff:  defaultReconnectBackoff,
		dialTimeout:       defaultDialTimeout,
		queue:             NewMoveQueue(),
	}

	// Run optional configurations
	for _, opt := range options {
		opt(s)
	}

	if s.readTimeout == 0 {
		s.readTimeout = readTimeoutFactor * s.heartbeatInterval
	}
	if s.readTimeout <= s.heartbeatInterval {
		return nil, ErrInvalidTimeouts
	}
	if s.writeTimeout == 0 {
		s.writeTimeout = s.heartbeatInterval
	}
	if s.logger == nil {
		// Discard logging if no logger is set
		s.logger = nopLogger{}
	}
	if s.dial == nil {
		d := &net.Dialer{KeepAlive: s.heartbeatInterval}
		s.dial = func(ctx context.Context, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		}
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

func withDefaultHandlers(h Handlers) Handlers {
	if h.OnMazeReady == nil {
		h.OnMazeReady = func(*maze.Maze) {}
	}
	if h.OnOpponentMove == nil {
		h.OnOpponentMove = func(int, int) {}
	}
	if h.OnTurnChanged == nil {
		h.OnTurnChanged = func(bool) {}
	}
	if h.OnScoreChanged == nil {
		h.OnScoreChanged = func(int) {}
	}
	if h.OnOpponentScoreChanged == nil {
		h.OnOpponentScoreChanged = func(int) {}
	}
	if h.OnGameOver == nil {
		h.OnGameOver = func() {}
	}
	if h.OnStateChange == nil {
		h.OnStateChange = func(State, error) {}
	}
	return h
}

// Start runs the session in the background until Stop is called.
func (c *ClientSocketManager) Start() error {
	if c.ctx.Err() != nil {
		return ErrStopped
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	c.wg.Add(1)
	go c.run()
	return nil
}

// Stop closes the connection, ends every worker and discards pending moves.
// It blocks until all goroutines have returned, so it must not be called from a handler.
func (c *ClientSocketManager) Stop() {
	c.stopOnce.Do(func() {
		c.logger.Info("client socket manager stopping...")
		c.cancel()
		dropped := c.queue.Close()
		c.wg.Wait()
		c.current.Store(nil)
		if dropped > 0 {
			c.logger.Warning(fmt.Sprintf("discarded %d unsent moves", dropped))
		}
		c.setState(StateStopped, nil)
		c.logger.Info("client socket manager stopped")
	})
}

// SubmitMove queues a local move for sending. It returns false when the session
// is stopped and the move was dropped.
func (c *ClientSocketManager) SubmitMove(row, col int) bool {
	return c.queue.Enqueue(protocol.Move{Row: row, Col: col})
}

// State returns the current lifecycle state.
func (c *ClientSocketManager) State() State {
	return State(c.state.Load())
}

// PendingMoves returns the number of queued, unsent moves.
func (c *ClientSocketManager) PendingMoves() int {
	return c.queue.Len()
}

// ConnectionID returns the identifier of the active connection, or uuid.Nil.
func (c *ClientSocketManager) ConnectionID() uuid.UUID {
	if l := c.current.Load(); l != nil {
		return l.id
	}
	return uuid.Nil
}

// setState is only called from the supervisor goroutine, or by Stop after it
// has returned, so handlers observe transitions in order.
func (c *ClientSocketManager) setState(s State, err error) {
	c.state.Store(int32(s))
	c.handlers.OnStateChange(s, err)
}

// run is the supervisor: the only goroutine that connects and reconnects.
func (c *ClientSocketManager) run() {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		c.setState(StateConnecting, nil)
		l, m, err := c.connect()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Error(fmt.Sprintf("connecting to %s: %s", c.serverAddr, err))
			c.setState(StateReconnecting, err)
			if !c.sleep(c.reconnectBackoff) {
				return
			}
			continue
		}

		c.current.Store(l)
		c.setState(StateActive, nil)
		c.logger.Info(fmt.Sprintf("connection %s active, maze %dx%d", l.id, m.Rows(), m.Cols()))
		c.handlers.OnMazeReady(m)

		err = c.serve(l)
		l.stopWatch()
		c.current.CompareAndSwap(l, nil)
		if c.ctx.Err() != nil {
			return
		}

		c.logger.Warning(fmt.Sprintf("connection %s lost: %s", l.id, err))
		c.setState(StateReconnecting, err)
		if !c.sleep(c.reconnectBackoff) {
			return
		}
	}
}

// connect dials the server and runs the handshake on the new connection.
func (c *ClientSocketManager) connect() (*link, *maze.Maze, error) {
	dialCtx, cancel := context.WithTimeout(c.ctx, c.dialTimeout)
	defer cancel()

	conn, err := c.dial(dialCtx, c.serverAddr)
	if err != nil {
		return nil, nil, transportError("dial", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(c.heartbeatInterval)
	}

	l := newLink(uuid.New(), conn, c.readTimeout, c.writeTimeout)
	l.stopWatch = context.AfterFunc(c.ctx, func() { l.fail(ErrStopped) })

	c.setState(StateHandshaking, nil)
	m, err := handshake(l)
	if err != nil {
		l.fail(err)
		l.stopWatch()
		return nil, nil, err
	}
	return l, m, nil
}

// serve runs the workers of an active link and returns the error that ended it.
func (c *ClientSocketManager) serve(l *link) error {
	var workers sync.WaitGroup
	workers.Add(3)
	go func() {
		defer workers.Done()
		c.heartbeat(l)
	}()
	go func() {
		defer workers.Done()
		c.dispatch(l)
	}()
	go func() {
		defer workers.Done()
		c.sendLoop(l)
	}()

	<-l.done()
	workers.Wait()
	return l.err
}

// heartbeat sends a liveness line right away and then on every interval.
func (c *ClientSocketManager) heartbeat(l *link) {
	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()

	for {
		if err := l.send(protocol.KeywordHeartbeat); err != nil {
			l.fail(errors.WithMessage(err, "heartbeat"))
			return
		}

		select {
		case <-l.done():
			return
		case <-ticker.C:
		}
	}
}

// sendLoop drains the move queue onto l.
func (c *ClientSocketManager) sendLoop(l *link) {
	for {
		m, err := c.queue.Dequeue(l.ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) {
				l.fail(ErrStopped)
			}
			return
		}
		if l.failed() {
			// Never written, so putting it back cannot duplicate it.
			c.queue.PushFront(m)
			return
		}

		if err := l.send(protocol.KeywordNode, protocol.EncodeMove(m)); err != nil {
			if c.requeueOnSendFailure {
				c.queue.PushFront(m)
				c.logger.Warning(fmt.Sprintf("requeued move %s after send failure", m))
			} else {
				c.logger.Warning(fmt.Sprintf("dropped move %s after send failure", m))
			}
			l.fail(errors.WithMessagef(err, "sending move %s", m))
			return
		}
		c.logger.Info(fmt.Sprintf("sent move %s", m))
	}
}

// sleep waits for d and reports false if the manager was stopped meanwhile.
func (c *ClientSocketManager) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// ClientWithHeartbeatInterval sets the interval between heartbeats.
func ClientWithHeartbeatInterval(d time.Duration) ClientOption {
	return func(c *ClientSocketManager) {
		c.heartbeatInterval = d
	}
}

// ClientWithReadTimeout sets the read deadline for every inbound line.
func ClientWithReadTimeout(d time.Duration) ClientOption {
	return func(c *ClientSocketManager) {
		c.readTimeout = d
	}
}

// ClientWithWriteTimeout sets the write deadline for every outbound message.
func ClientWithWriteTimeout(d time.Duration) ClientOption {
	return func(c *ClientSocketManager) {
		c.writeTimeout = d
	}
}

// ClientWithReconnectBackoff sets the wait between connection attempts.
func ClientWithReconnectBackoff(d time.Duration) ClientOption {
	return func(c *ClientSocketManager) {
		c.reconnectBackoff = d
	}
}

// ClientWithDialTimeout sets the timeout of a single dial.
func ClientWithDialTimeout(d time.Duration) ClientOption {
	return func(c *ClientSocketManager) {
		c.dialTimeout = d
	}
}

// ClientWithRequeueOnSendFailure puts a move whose send failed back at the
// front of the queue. The server may then see it twice if the failed write had
// partly gone through.
func ClientWithRequeueOnSendFailure(requeue bool) ClientOption {
	return func(c *ClientSocketManager) {
		c.requeueOnSendFailure = requeue
	}
}

// ClientWithDialer replaces the TCP dialer.
func ClientWithDialer(d DialFunc) ClientOption {
	return func(c *ClientSocketManager) {
		c.dial = d
	}
}

// ClientWithLogger sets the logger
func ClientWithLogger(l Logger) ClientOption {
	return func(c *ClientSocketManager) {
		c.logger = l
	}
}
