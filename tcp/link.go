package tcp

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-client/protocol"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// link is one established transport connection. It is never reused: a reconnect
// builds a new link and swaps it in.
type link struct {
	id           uuid.UUID
	conn         net.Conn
	reader       *protocol.Reader
	writer       *protocol.Writer
	writeMu      sync.Mutex // one writer at a time so message lines never interleave
	readTimeout  time.Duration
	writeTimeout time.Duration

	ctx       context.Context // done once the link failed
	cancel    context.CancelFunc
	failOnce  sync.Once
	err       error
	stopWatch func() bool
}

func newLink(id uuid.UUID, conn net.Conn, readTimeout, writeTimeout time.Duration) *link {
	ctx, cancel := context.WithCancel(context.Background())
	return &link{
		id:           id,
		conn:         conn,
		reader:       protocol.NewReader(conn),
		writer:       protocol.NewWriter(conn),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
		stopWatch:    func() bool { return false },
	}
}

// send writes the lines as one message.
func (l *link) send(lines ...string) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if l.writeTimeout > 0 {
		if err := l.conn.SetWriteDeadline(time.Now().Add(l.writeTimeout)); err != nil {
			return transportError("set write deadline", err)
		}
	}
	if err := l.writer.WriteLines(lines...); err != nil {
		if errors.Is(err, protocol.ErrProtocolViolation) {
			return err
		}
		return transportError("write", err)
	}
	return nil
}

// readLine reads the next line, bounded by the read timeout.
func (l *link) readLine() (string, error) {
	if l.readTimeout > 0 {
		if err := l.conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
			return "", transportError("set read deadline", err)
		}
	}

	line, err := l.reader.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrPeerClosed
		}
		if errors.Is(err, protocol.ErrLineTooLong) {
			return "", errors.Wrap(protocol.ErrProtocolViolation, err.Error())
		}
		return "", transportError("read", err)
	}
	return line, nil
}

// request sends a keyword and reads the single response line.
func (l *link) request(keyword string) (string, error) {
	if err := l.send(keyword); err != nil {
		return "", err
	}
	return l.readLine()
}

// fail records the first failure, closes the connection and wakes every worker
// waiting on the link.
func (l *link) fail(err error) {
	l.failOnce.Do(func() {
		l.err = err
		l.cancel()
		_ = l.conn.Close()
	})
}

func (l *link) failed() bool {
	return l.ctx.Err() != nil
}

func (l *link) done() <-chan struct{} {
	return l.ctx.Done()
}

func transportError(op string, err error) error {
	return errors.Wrapf(ErrTransportFailure, "%s: %v", op, err)
}
