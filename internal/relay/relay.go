// Package relay keeps a best-effort text stream flowing from a TCP log source
// to an output writer. Any transport failure closes the connection, waits a
// fixed delay and reconnects; only a failing output ends the loop.
package relay

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/matst80/logrelay/internal/obs"
	"github.com/matst80/logrelay/internal/proto"
	"github.com/matst80/logrelay/internal/ratelimit"
)

const (
	DefaultPort        = 4567
	DefaultRetryDelay  = 200 * time.Millisecond
	DefaultDialTimeout = 5 * time.Second
)

// ReasonSink marks a connection dropped because the output failed.
const ReasonSink Reason = "sink"

// Mirror receives every line after it has been written to the output.
type Mirror interface {
	MirrorLine(ctx context.Context, line string) error
}

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type Options struct {
	Addr        string
	RetryDelay  time.Duration
	ReadTimeout time.Duration // 0 waits for the next line forever
	DialTimeout time.Duration
	Out         io.Writer
	Mirror      Mirror
	Clock       clock.Clock
	Sampler     *ratelimit.Sampler
	Dial        DialFunc
}

type Relay struct {
	opts   Options
	clock  clock.Clock
	status status
}

func New(opts Options) *Relay {
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Sampler == nil {
		opts.Sampler = ratelimit.NewSampler(opts.Clock, 1, 1)
	}
	if opts.Dial == nil {
		d := &net.Dialer{}
		opts.Dial = d.DialContext
	}
	r := &Relay{opts: opts, clock: opts.Clock}
	r.status.addr = opts.Addr
	return r
}

// Status returns a snapshot of the loop's counters.
func (r *Relay) Status() Stats {
	return r.status.snapshot(r.clock.Now())
}

// Run relays lines until ctx is cancelled, reconnecting after every transport
// failure. It returns nil on cancellation and a *SinkError if the output
// cannot be written.
func (r *Relay) Run(ctx context.Context) error {
	obs.Info("relay.start", obs.Fields{"addr": r.opts.Addr, "retry_delay": r.opts.RetryDelay.String(), "read_timeout": r.opts.ReadTimeout.String()})
	defer r.status.setClosing()
	for {
		if ctx.Err() != nil {
			return nil
		}
		err := r.runOnce(ctx)
		var sinkErr *SinkError
		if errors.As(err, &sinkErr) {
			obs.Error("relay.output", obs.Fields{"err": sinkErr.Err.Error()})
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if !r.wait(ctx) {
			return nil
		}
	}
}

// runOnce dials, then relays lines until the connection fails. The returned
// error is always non-nil.
func (r *Relay) runOnce(ctx context.Context) error {
	r.status.attempt()
	dctx, cancel := context.WithTimeout(ctx, r.opts.DialTimeout)
	c, err := r.opts.Dial(dctx, "tcp", r.opts.Addr)
	cancel()
	if err != nil {
		reason := Classify(err)
		r.status.disconnect(reason, r.clock.Now())
		if ok, skipped := r.opts.Sampler.Allow("dial"); ok {
			obs.Debug("relay.dial", obs.Fields{"addr": r.opts.Addr, "reason": string(reason), "err": err.Error(), "suppressed": skipped})
		}
		return err
	}
	r.opts.Sampler.Reset("dial")
	defer c.Close()
	// Unblocks a pending read on shutdown.
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	session := uuid.NewString()
	r.status.connect(session, r.clock.Now())
	obs.Info("relay.connected", obs.Fields{"addr": r.opts.Addr, "session": session, "remote": c.RemoteAddr().String()})

	lr := proto.NewLineReader(c)
	for {
		if r.opts.ReadTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(r.opts.ReadTimeout))
		}
		line, err := lr.ReadLine()
		if err != nil {
			reason := Classify(err)
			up := r.status.disconnect(reason, r.clock.Now())
			obs.ConnectionDurationSeconds.Observe(up.Seconds())
			f := obs.Fields{"session": session, "reason": string(reason), "err": err.Error(), "uptime": up.String()}
			if errors.Is(err, proto.ErrTruncatedLine) {
				f["dropped_bytes"] = lr.Pending
			}
			obs.Debug("relay.disconnected", f)
			return err
		}
		if err := r.emit(ctx, line); err != nil {
			r.status.disconnect(ReasonSink, r.clock.Now())
			return err
		}
	}
}

func (r *Relay) emit(ctx context.Context, line string) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	if _, err := r.opts.Out.Write(buf); err != nil {
		return &SinkError{Err: err}
	}
	r.status.line(len(line))
	if r.opts.Mirror == nil {
		return nil
	}
	if err := r.opts.Mirror.MirrorLine(ctx, line); err != nil {
		obs.MirrorErrorsTotal.Inc()
		if ok, skipped := r.opts.Sampler.Allow("mirror"); ok {
			obs.Warn("relay.mirror", obs.Fields{"err": err.Error(), "suppressed": skipped})
		}
	}
	return nil
}

// wait sleeps for the retry delay; false means ctx ended first.
func (r *Relay) wait(ctx context.Context) bool {
	t := r.clock.Timer(r.opts.RetryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
