package proto

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, lr *LineReader) ([]string, error) {
	t.Helper()
	var out []string
	for {
		line, err := lr.ReadLine()
		if err != nil {
			return out, err
		}
		out = append(out, line)
	}
}

func TestReadLineStripsTerminators(t *testing.T) {
	lr := NewLineReader(strings.NewReader("hello\nwith cr\r\n\nlast\n"))
	lines, err := readAll(t, lr)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"hello", "with cr", "", "last"}, lines)
}

func TestReadLineKeepsInnerCarriageReturn(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a\rb\n"))
	line, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "a\rb", line)
}

func TestReadLineDropsUnterminatedTail(t *testing.T) {
	lr := NewLineReader(strings.NewReader("one\ntwo\npartial"))
	lines, err := readAll(t, lr)
	assert.Equal(t, []string{"one", "two"}, lines)
	require.ErrorIs(t, err, ErrTruncatedLine)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, len("partial"), lr.Pending)
}

func TestReadLineEmptyStream(t *testing.T) {
	lr := NewLineReader(strings.NewReader(""))
	_, err := lr.ReadLine()
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, lr.Pending)
}

func TestReadLineLongLine(t *testing.T) {
	long := strings.Repeat("x", 64*1024)
	lr := NewLineReader(strings.NewReader(long + "\n"))
	line, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Len(t, line, len(long))
}
