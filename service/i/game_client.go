package i

import (
	dmn "github.com/beka-birhanu/vinom-client/domain"
	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/google/uuid"
)

// MoveSubmitter queues moves for the server. Implemented by the TCP client socket manager.
type MoveSubmitter interface {
	// SubmitMove queues a move and reports whether it was accepted.
	SubmitMove(row, col int) bool

	// PendingMoves returns the number of queued, unsent moves.
	PendingMoves() int
}

// GameClient exposes the local view of a game session.
type GameClient interface {
	// Snapshot returns a copy of the current session state.
	Snapshot() dmn.Snapshot

	// Maze returns the maze of the current connection, or nil before the first handshake.
	Maze() *maze.Maze

	// TryMove checks turn, origin and legality of a step and queues it when all pass.
	TryMove(fromRow, fromCol, toRow, toCol int) error

	// Subscribe registers a listener for session events.
	Subscribe() (uuid.UUID, <-chan dmn.Event)

	// Unsubscribe removes a listener and closes its channel.
	Unsubscribe(uuid.UUID)
}
