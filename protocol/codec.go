/*
Package protocol implements the line oriented text protocol spoken with the game server.

Every message is one UTF-8 keyword line, optionally followed by payload lines. Coordinates
travel as "(row,col)", integers as decimal lines and the maze grid as a single base64 line
(see grid.go).
*/
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Keywords shared by both directions of the protocol.
const (
	KeywordHeartbeat  = "heartbeat"
	KeywordRow        = "row"
	KeywordColumn     = "column"
	KeywordStart      = "start"
	KeywordEnd        = "end"
	KeywordTheme      = "theme"
	KeywordMaze       = "maze"
	KeywordNode       = "node"
	KeywordTurn       = "turn"
	KeywordNotTurn    = "not"
	KeywordScore      = "score"
	KeywordOtherScore = "otherScore"
	KeywordGameOver   = "gameOver"
)

const maxLineLength = 4 << 20 // bytes, the grid line is the largest message

var (
	ErrProtocolViolation = errors.New("protocol violation")
	ErrLineTooLong       = errors.New("line exceeds maximum length")
)

// Move is a (row, column) coordinate, either a local step or a reported remote one.
type Move struct {
	Row int
	Col int
}

// String encodes the move as "(row,col)".
func (m Move) String() string {
	return EncodeMove(m)
}

// EncodeMove encodes a move as "(row,col)".
func EncodeMove(m Move) string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

// DecodeMove parses "(row,col)". Spaces around the numbers are tolerated.
func DecodeMove(line string) (Move, error) {
	s := strings.TrimSpace(line)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return Move{}, errors.Wrapf(ErrProtocolViolation, "malformed coordinate %q", line)
	}

	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return Move{}, errors.Wrapf(ErrProtocolViolation, "malformed coordinate %q", line)
	}

	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Move{}, errors.Wrapf(ErrProtocolViolation, "coordinate row %q", parts[0])
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Move{}, errors.Wrapf(ErrProtocolViolation, "coordinate column %q", parts[1])
	}

	return Move{Row: row, Col: col}, nil
}

// DecodeInt parses a decimal integer line.
func DecodeInt(line string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, errors.Wrapf(ErrProtocolViolation, "integer %q", line)
	}
	return v, nil
}

// DecodeTheme returns the theme with its first character upper-cased.
func DecodeTheme(line string) string {
	r, size := utf8.DecodeRuneInString(line)
	if r == utf8.RuneError {
		return line
	}
	return string(unicode.ToUpper(r)) + line[size:]
}

// Reader reads protocol lines from a stream.
type Reader struct {
	r   *bufio.Reader
	max int
}

// NewReader wraps r in a buffered line reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), max: maxLineLength}
}

// ReadLine returns the next line without its terminator. A final line without a
// terminator is returned as is; io.EOF is only returned when nothing was read.
// A line longer than the limit fails with ErrLineTooLong as soon as the limit is
// crossed, and the reader must not be used afterwards.
func (r *Reader) ReadLine() (string, error) {
	var line []byte
	for {
		frag, err := r.r.ReadSlice('\n')
		if len(line)+len(frag) > r.max {
			return "", ErrLineTooLong
		}
		line = append(line, frag...)

		switch {
		case err == nil:
			return strings.TrimRight(string(line), "\r\n"), nil
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF && len(line) > 0:
			return strings.TrimRight(string(line), "\r\n"), nil
		default:
			return "", err
		}
	}
}

// ReadMove reads one coordinate line.
func (r *Reader) ReadMove() (Move, error) {
	line, err := r.ReadLine()
	if err != nil {
		return Move{}, err
	}
	return DecodeMove(line)
}

// ReadInt reads one integer line.
func (r *Reader) ReadInt() (int, error) {
	line, err := r.ReadLine()
	if err != nil {
		return 0, err
	}
	return DecodeInt(line)
}

// Writer writes protocol lines to a stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in a buffered line writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteLines writes each line followed by a newline and flushes once, so a
// keyword and its payload leave together.
func (w *Writer) WriteLines(lines ...string) error {
	for _, l := range lines {
		if strings.ContainsAny(l, "\r\n") {
			return errors.Wrapf(ErrProtocolViolation, "line %q contains a line break", l)
		}
		if _, err := w.w.WriteString(l); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// WriteMove writes the "node" keyword followed by the encoded move.
func (w *Writer) WriteMove(m Move) error {
	return w.WriteLines(KeywordNode, EncodeMove(m))
}
