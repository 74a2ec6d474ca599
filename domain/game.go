package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names what changed in a game session.
type EventType string

const (
	EventMazeReady     EventType = "mazeReady"
	EventOpponentMove  EventType = "opponentMove"
	EventTurn          EventType = "turn"
	EventScore         EventType = "score"
	EventOpponentScore EventType = "opponentScore"
	EventGameOver      EventType = "gameOver"
	EventConnection    EventType = "connection"
	EventLocalMove     EventType = "localMove"
)

// Position is a cell coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Event is one change of session state, published to subscribers in the order
// it was received from the server.
type Event struct {
	Type    EventType   `json:"type"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
}

// ConnectionStatus is the payload of EventConnection.
type ConnectionStatus struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// Snapshot is a point in time copy of a game session's view.
type Snapshot struct {
	SessionID     uuid.UUID `json:"session_id"`
	Connection    string    `json:"connection"`
	LastError     string    `json:"last_error,omitempty"`
	MazeReady     bool      `json:"maze_ready"`
	MyTurn        bool      `json:"my_turn"`
	Score         int       `json:"score"`
	OpponentScore int       `json:"opponent_score"`
	Player        *Position `json:"player,omitempty"`
	Opponent      *Position `json:"opponent,omitempty"`
	GameOver      bool      `json:"game_over"`
	PendingMoves  int       `json:"pending_moves"`
}
