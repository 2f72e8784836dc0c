// Package proto implements the framing of the log stream: plain text, one
// record per line, no length prefix and no encoding negotiation.
package proto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrTruncatedLine is returned when the stream ends in the middle of a line.
// It wraps io.ErrUnexpectedEOF.
var ErrTruncatedLine = fmt.Errorf("truncated line: %w", io.ErrUnexpectedEOF)

// LineReader reads newline-delimited lines.
type LineReader struct {
	rd *bufio.Reader
	// Pending holds the bytes of an unterminated tail after ErrTruncatedLine.
	Pending int
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{rd: bufio.NewReader(r)}
}

// ReadLine returns the next line with its "\n" or "\r\n" terminator removed.
// An unterminated fragment at end of stream is dropped and reported as
// ErrTruncatedLine; io.EOF is returned only on a clean line boundary.
func (l *LineReader) ReadLine() (string, error) {
	line, err := l.rd.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			l.Pending = len(line)
			return "", ErrTruncatedLine
		}
		return "", err
	}
	return trimEOL(line), nil
}

func trimEOL(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		n--
		if n > 0 && s[n-1] == '\r' {
			n--
		}
	}
	return s[:n]
}
