package service

import (
	"fmt"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-client/domain"
	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/beka-birhanu/vinom-client/service/i"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultEventBuffer = 64

var (
	ErrNoMaze         = errors.New("maze not loaded yet")
	ErrNotYourTurn    = errors.New("not the local player's turn")
	ErrIllegalMove    = errors.New("illegal move")
	ErrGameOver       = errors.New("game is over")
	ErrWrongOrigin    = errors.New("move does not start at the player's cell")
	ErrSessionStopped = errors.New("session is not accepting moves")
)

type GameClientOption func(*GameClient)

// GameClient keeps the local view of one game session. Its On* methods are the
// connection manager's handlers; everything else reads that view or submits
// local moves through it.
type GameClient struct {
	sessionID   uuid.UUID
	logger      i.Logger
	eventBuffer int

	mu        sync.RWMutex
	submitter i.MoveSubmitter
	maze      *maze.Maze
	snap      dmn.Snapshot

	subsMu sync.Mutex
	subs   map[uuid.UUID]chan dmn.Event
}

// NewGameClient creates a client with a fresh session ID.
func NewGameClient(opts ...GameClientOption) *GameClient {
	g := &GameClient{
		sessionID:   uuid.New(),
		eventBuffer: defaultEventBuffer,
		subs:        make(map[uuid.UUID]chan dmn.Event),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = nopLogger{}
	}
	g.snap.SessionID = g.sessionID
	g.snap.Connection = "DISCONNECTED"
	return g
}

// GameClientWithLogger sets the logger.
func GameClientWithLogger(l i.Logger) GameClientOption {
	return func(g *GameClient) {
		g.logger = l
	}
}

// GameClientWithEventBuffer sets how many events a slow subscriber may lag
// behind before events are dropped for it.
func GameClientWithEventBuffer(n int) GameClientOption {
	return func(g *GameClient) {
		if n > 0 {
			g.eventBuffer = n
		}
	}
}

// SetMoveSubmitter attaches the transport that carries local moves.
func (g *GameClient) SetMoveSubmitter(s i.MoveSubmitter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitter = s
}

// SessionID returns the identifier of this session.
func (g *GameClient) SessionID() uuid.UUID {
	return g.sessionID
}

// Snapshot returns a copy of the session state.
func (g *GameClient) Snapshot() dmn.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := g.snap
	if s.Player != nil {
		p := *s.Player
		s.Player = &p
	}
	if s.Opponent != nil {
		p := *s.Opponent
		s.Opponent = &p
	}
	if g.submitter != nil {
		s.PendingMoves = g.submitter.PendingMoves()
	}
	return s
}

// Maze returns the maze of the latest handshake, or nil.
func (g *GameClient) Maze() *maze.Maze {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.maze
}

// IsLegalMove reports whether a step is possible on the current maze.
func (g *GameClient) IsLegalMove(fromRow, fromCol, toRow, toCol int) bool {
	return maze.IsLegalMove(g.Maze(), fromRow, fromCol, toRow, toCol)
}

// TryMove queues the step (fromRow, fromCol) -> (toRow, toCol) if it is the
// local player's turn, the step starts at the player's current cell and it is
// legal.
func (g *GameClient) TryMove(fromRow, fromCol, toRow, toCol int) error {
	g.mu.Lock()
	switch {
	case g.maze == nil:
		g.mu.Unlock()
		return ErrNoMaze
	case g.snap.GameOver:
		g.mu.Unlock()
		return ErrGameOver
	case !g.snap.MyTurn:
		g.mu.Unlock()
		return ErrNotYourTurn
	case g.snap.Player == nil || g.snap.Player.Row != fromRow || g.snap.Player.Col != fromCol:
		g.mu.Unlock()
		return errors.Wrapf(ErrWrongOrigin, "player is not on (%d,%d)", fromRow, fromCol)
	case !maze.IsLegalMove(g.maze, fromRow, fromCol, toRow, toCol):
		g.mu.Unlock()
		return errors.Wrapf(ErrIllegalMove, "(%d,%d) -> (%d,%d)", fromRow, fromCol, toRow, toCol)
	case g.submitter == nil || !g.submitter.SubmitMove(toRow, toCol):
		g.mu.Unlock()
		return ErrSessionStopped
	}
	g.snap.Player = &dmn.Position{Row: toRow, Col: toCol}
	g.mu.Unlock()

	g.publish(dmn.EventLocalMove, dmn.Position{Row: toRow, Col: toCol})
	return nil
}

// OnMazeReady installs the maze of a new connection and puts the local player
// back on the start cell.
func (g *GameClient) OnMazeReady(m *maze.Maze) {
	start := m.Start()
	g.mu.Lock()
	g.maze = m
	g.snap.MazeReady = true
	g.snap.GameOver = false
	g.snap.Player = &dmn.Position{Row: start.Row, Col: start.Col}
	g.snap.Opponent = nil
	g.mu.Unlock()

	g.logger.Info(fmt.Sprintf("session %s: maze %dx%d ready, theme %q", g.sessionID, m.Rows(), m.Cols(), m.Theme()))
	g.publish(dmn.EventMazeReady, map[string]interface{}{
		"rows":  m.Rows(),
		"cols":  m.Cols(),
		"theme": m.Theme(),
		"start": dmn.Position{Row: start.Row, Col: start.Col},
		"end":   dmn.Position{Row: m.End().Row, Col: m.End().Col},
	})
}

// OnOpponentMove records the opponent's new position.
func (g *GameClient) OnOpponentMove(row, col int) {
	g.mu.Lock()
	g.snap.Opponent = &dmn.Position{Row: row, Col: col}
	g.mu.Unlock()
	g.publish(dmn.EventOpponentMove, dmn.Position{Row: row, Col: col})
}

// OnTurnChanged records whose turn it is.
func (g *GameClient) OnTurnChanged(mine bool) {
	g.mu.Lock()
	g.snap.MyTurn = mine
	g.mu.Unlock()
	g.publish(dmn.EventTurn, mine)
}

// OnScoreChanged records the local score.
func (g *GameClient) OnScoreChanged(score int) {
	g.mu.Lock()
	g.snap.Score = score
	g.mu.Unlock()
	g.publish(dmn.EventScore, score)
}

// OnOpponentScoreChanged records the opponent's score.
func (g *GameClient) OnOpponentScoreChanged(score int) {
	g.mu.Lock()
	g.snap.OpponentScore = score
	g.mu.Unlock()
	g.publish(dmn.EventOpponentScore, score)
}

// OnGameOver ends the game. Further local moves are refused.
func (g *GameClient) OnGameOver() {
	g.mu.Lock()
	g.snap.GameOver = true
	g.snap.MyTurn = false
	score, other := g.snap.Score, g.snap.OpponentScore
	g.mu.Unlock()

	g.logger.Info(fmt.Sprintf("session %s: game over, score %d against %d", g.sessionID, score, other))
	g.publish(dmn.EventGameOver, map[string]int{"score": score, "opponent_score": other})
}

// OnConnectionChange records the connection state and the error that caused it.
func (g *GameClient) OnConnectionChange(state string, err error) {
	status := dmn.ConnectionStatus{State: state}
	if err != nil {
		status.Error = err.Error()
	}

	g.mu.Lock()
	g.snap.Connection = state
	if err != nil {
		g.snap.LastError = status.Error
	}
	g.mu.Unlock()

	g.publish(dmn.EventConnection, status)
}

// Subscribe returns a channel receiving every later event. Events are dropped
// for a subscriber whose buffer is full.
func (g *GameClient) Subscribe() (uuid.UUID, <-chan dmn.Event) {
	id := uuid.New()
	ch := make(chan dmn.Event, g.eventBuffer)

	g.subsMu.Lock()
	g.subs[id] = ch
	g.subsMu.Unlock()
	return id, ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (g *GameClient) Unsubscribe(id uuid.UUID) {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	if ch, ok := g.subs[id]; ok {
		delete(g.subs, id)
		close(ch)
	}
}

// Close unsubscribes everyone.
func (g *GameClient) Close() {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	for id, ch := range g.subs {
		delete(g.subs, id)
		close(ch)
	}
}

func (g *GameClient) publish(t dmn.EventType, payload interface{}) {
	e := dmn.Event{Type: t, At: time.Now().UTC(), Payload: payload}

	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	for id, ch := range g.subs {
		select {
		case ch <- e:
		default:
			g.logger.Warning(fmt.Sprintf("session %s: subscriber %s is lagging, dropped %s event", g.sessionID, id, t))
		}
	}
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}
