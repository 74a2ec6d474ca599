package tcp

import (
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/beka-birhanu/vinom-client/protocol"
)

// fakeServer answers the handshake of one connection and records what the
// client sends afterwards.
type fakeServer struct {
	rows, cols int
	answers    map[string]string

	mu         sync.Mutex
	moves      []protocol.Move
	heartbeats int
	received   chan string
}

func newFakeServer(rows, cols int) *fakeServer {
	cells := make([][]maze.Cell, rows)
	for r := range cells {
		cells[r] = make([]maze.Cell, cols)
		for c := range cells[r] {
			cells[r][c] = maze.Cell{Row: r, Col: c}
		}
	}

	return &fakeServer{
		rows: rows,
		cols: cols,
		answers: map[string]string{
			protocol.KeywordRow:    strconv.Itoa(rows),
			protocol.KeywordColumn: strconv.Itoa(cols),
			protocol.KeywordStart:  "(0,0)",
			protocol.KeywordEnd:    protocol.EncodeMove(protocol.Move{Row: rows - 1, Col: cols - 1}),
			protocol.KeywordTheme:  "dark",
			protocol.KeywordMaze:   protocol.EncodeGrid(cells),
		},
		received: make(chan string, 256),
	}
}

// serve handles conn until the client closes it. Lines pushed to out are
// written to the client after the handshake.
func (s *fakeServer) serve(t *testing.T, conn net.Conn, out <-chan []string) {
	t.Helper()
	r := protocol.NewReader(conn)
	w := protocol.NewWriter(conn)
	var writeMu sync.Mutex
	write := func(lines ...string) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return w.WriteLines(lines...)
	}

	done := make(chan struct{})
	defer close(done)
	if out != nil {
		go func() {
			for {
				select {
				case <-done:
					return
				case lines, ok := <-out:
					if !ok {
						return
					}
					if write(lines...) != nil {
						return
					}
				}
			}
		}()
	}

	for {
		line, err := r.ReadLine()
		if err != nil {
			return
		}

		switch line {
		case protocol.KeywordHeartbeat:
			s.mu.Lock()
			s.heartbeats++
			s.mu.Unlock()
		case protocol.KeywordNode:
			m, err := r.ReadMove()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.moves = append(s.moves, m)
			s.mu.Unlock()
		default:
			answer, ok := s.answers[line]
			if !ok {
				break
			}
			if err := write(answer); err != nil {
				return
			}
		}

		select {
		case s.received <- line:
		default:
		}
	}
}

func (s *fakeServer) receivedMoves() []protocol.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Move(nil), s.moves...)
}

func (s *fakeServer) heartbeatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heartbeats
}
