package echotest

import (
	"context"
	"time"

	"go.brendoncarroll.net/stdctx/logctx"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
)

// Event is emitted after every exchange which did not end the run.
type Event struct {
	Bytes int
	At    time.Time
	Err   error
}

// Sink receives telemetry from Run.
type Sink interface {
	OnExchange(Event)
	OnMismatch(linkcheck.MismatchReport)
}

type RunOptions struct {
	// Delay is waited between exchanges.
	Delay time.Duration
	// Count limits the number of exchanges. Zero means no limit.
	Count int
	Now   func() time.Time
}

// Summary is what a run accomplished before it stopped.
type Summary struct {
	Exchanges int
	// Failures counts exchanges with a non fatal error.
	Failures  int
	Bytes     int64
	Cancelled bool
}

// Run performs exchanges until ctx is cancelled, opts.Count is reached, or
// the verifier returns a fatal error.
// ctx is only checked between exchanges, never while one is in flight.
// The summary is valid even when an error is returned.
func Run(ctx context.Context, tr linkcheck.Transport, v Verifier, sink Sink, opts RunOptions) (Summary, error) {
	var sum Summary
	if tr == nil {
		return sum, linkcheck.ErrNoTransport
	}
	if sink == nil {
		sink = nopSink{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	for i := 0; opts.Count <= 0 || i < opts.Count; i++ {
		if i > 0 && opts.Delay > 0 {
			timer := time.NewTimer(opts.Delay)
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
			timer.Stop()
		}
		if ctx.Err() != nil {
			sum.Cancelled = true
			return sum, nil
		}
		out, err := v.RunOnce(tr)
		if out.Report != nil {
			sink.OnMismatch(*out.Report)
			logctx.Warnf(ctx, "exchange %d: %v", i, out.Report)
		}
		if err != nil {
			logctx.Errorf(ctx, "exchange %d failed after %d bytes: %v", i, sum.Bytes, err)
			return sum, err
		}
		sum.Exchanges++
		sum.Bytes += int64(out.Transferred())
		if out.Err != nil {
			sum.Failures++
			logctx.Warnf(ctx, "exchange %d: %v", i, out.Err)
		}
		sink.OnExchange(Event{Bytes: out.Transferred(), At: now(), Err: out.Err})
	}
	return sum, nil
}

type nopSink struct{}

func (nopSink) OnExchange(Event)                    {}
func (nopSink) OnMismatch(linkcheck.MismatchReport) {}
