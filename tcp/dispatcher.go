package tcp

import (
	"fmt"

	"github.com/beka-birhanu/vinom-client/protocol"
	"github.com/pkg/errors"
)

// dispatch reads messages from l in arrival order and routes them to the
// handlers until the link fails.
func (c *ClientSocketManager) dispatch(l *link) {
	for {
		keyword, err := l.readLine()
		if err != nil {
			l.fail(err)
			return
		}
		if l.failed() {
			return
		}

		if err := c.handleMessage(l, keyword); err != nil {
			l.fail(err)
			return
		}
	}
}

// handleMessage reads the payload of one message and invokes its handler.
// Unknown keywords are logged and skipped.
func (c *ClientSocketManager) handleMessage(l *link, keyword string) error {
	switch keyword {
	case protocol.KeywordNode:
		line, err := l.readLine()
		if err != nil {
			return err
		}
		m, err := protocol.DecodeMove(line)
		if err != nil {
			return errors.WithMessage(err, "opponent move")
		}
		if l.failed() {
			return nil
		}
		c.handlers.OnOpponentMove(m.Row, m.Col)

	case protocol.KeywordTurn:
		c.handlers.OnTurnChanged(true)

	case protocol.KeywordNotTurn:
		c.handlers.OnTurnChanged(false)

	case protocol.KeywordScore:
		score, err := c.readInt(l, "score")
		if err != nil {
			return err
		}
		if l.failed() {
			return nil
		}
		c.handlers.OnScoreChanged(score)

	case protocol.KeywordOtherScore:
		score, err := c.readInt(l, "opponent score")
		if err != nil {
			return err
		}
		if l.failed() {
			return nil
		}
		c.handlers.OnOpponentScoreChanged(score)

	case protocol.KeywordGameOver:
		c.handlers.OnGameOver()

	default:
		c.logger.Warning(fmt.Sprintf("ignoring unknown message %q on connection %s", keyword, l.id))
	}
	return nil
}

func (c *ClientSocketManager) readInt(l *link, what string) (int, error) {
	line, err := l.readLine()
	if err != nil {
		return 0, err
	}
	v, err := protocol.DecodeInt(line)
	if err != nil {
		return 0, errors.WithMessage(err, what)
	}
	return v, nil
}
