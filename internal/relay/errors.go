package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Reason labels a recoverable connection error. Every reason triggers the
// same reconnect; the label only feeds metrics and debug logs.
type Reason string

const (
	ReasonEOF     Reason = "eof"
	ReasonTimeout Reason = "timeout"
	ReasonRefused Reason = "refused"
	ReasonReset   Reason = "reset"
	ReasonClosed  Reason = "closed"
	ReasonOther   Reason = "other"
)

// Classify maps a dial or read error onto its reason label.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonOther
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ReasonEOF
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return ReasonRefused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNABORTED), errors.Is(err, syscall.EPIPE):
		return ReasonReset
	case errors.Is(err, net.ErrClosed):
		return ReasonClosed
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonOther
}

// SinkError reports that a line could not be written to the output. It is the
// only failure that ends Run.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return fmt.Sprintf("write output: %v", e.Err) }
func (e *SinkError) Unwrap() error { return e.Err }
