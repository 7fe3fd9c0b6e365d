// Package echotest drives echo exchanges over a linkcheck.Transport and
// checks that the peer returns what was sent.
package echotest

import (
	"time"

	"github.com/pkg/errors"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
	"go.linkcheck.dev/linkcheck/pkg/payload"
	"go.linkcheck.dev/linkcheck/pkg/streamrx"
)

// Outcome is the result of one exchange.
type Outcome struct {
	Sent, Received int
	// Err is a problem with this exchange which does not stop the run.
	Err error
	// Report is set when the echo did not match.
	Report *linkcheck.MismatchReport
}

// Transferred is the number of bytes moved in both directions.
func (o Outcome) Transferred() int {
	return o.Sent + o.Received
}

// Verifier performs a single exchange.
// A returned error is fatal for the run.
type Verifier interface {
	RunOnce(tr linkcheck.Transport) (Outcome, error)
}

// ExactVerifier sends raw payloads and expects byte for byte identical echoes
// of the same length. Any mismatch is fatal.
type ExactVerifier struct {
	Generator   payload.Generator
	Receiver    *streamrx.Receiver
	IdleTimeout time.Duration
}

func (v *ExactVerifier) RunOnce(tr linkcheck.Transport) (Outcome, error) {
	if tr == nil {
		return Outcome{}, linkcheck.ErrNoTransport
	}
	msg := v.Generator.Generate()
	if err := writeFull(tr, msg); err != nil {
		return Outcome{}, err
	}
	out := Outcome{Sent: len(msg)}
	resp, err := v.Receiver.ReceiveExact(tr, len(msg), v.IdleTimeout)
	if err != nil {
		return out, err
	}
	out.Received = len(resp)
	if rep, ok := Compare(msg, resp); !ok {
		out.Report = &rep
		return out, linkcheck.ErrEchoMismatch{Report: rep}
	}
	return out, nil
}

// FrameVerifier sends '#' + s + '_' + s frames followed by a terminator and
// checks that the response is a well formed frame with identical halves.
// Problems are recorded in the Outcome and the run continues.
type FrameVerifier struct {
	Generator  payload.Generator
	Receiver   *streamrx.Receiver
	Terminator byte
	ChunkMax   int
	Timeout    time.Duration
}

func (v *FrameVerifier) RunOnce(tr linkcheck.Transport) (Outcome, error) {
	if tr == nil {
		return Outcome{}, linkcheck.ErrNoTransport
	}
	frame := v.Generator.Generate()
	msg := make([]byte, 0, len(frame)+1)
	msg = append(msg, frame...)
	msg = append(msg, v.Terminator)
	if err := writeFull(tr, msg); err != nil {
		return Outcome{}, err
	}
	res, err := v.Receiver.ReceiveUntil(tr, v.Terminator, v.ChunkMax, v.Timeout)
	out := Outcome{Sent: len(msg), Received: len(res.Data)}
	if err != nil {
		return out, err
	}
	if err := res.Err(); err != nil {
		out.Err = err
		return out, nil
	}
	resp := res.Data[:len(res.Data)-1]
	if payload.CheckFrame(resp) == nil {
		return out, nil
	}
	a, b, err := payload.SplitFrame(resp)
	if err != nil {
		// without a usable structure, the sent frame is the only reference left
		rep, _ := Compare(frame, resp)
		out.Report = &rep
		out.Err = errors.Wrapf(linkcheck.ErrEchoMismatch{Report: rep}, "malformed frame: %v", err)
		return out, nil
	}
	if rep, ok := Compare(a, b); !ok {
		out.Report = &rep
		out.Err = linkcheck.ErrEchoMismatch{Report: rep}
	}
	return out, nil
}

func writeFull(tr linkcheck.Transport, p []byte) error {
	n, err := tr.Write(p)
	if err != nil {
		return errors.Wrapf(err, "writing %d bytes", len(p))
	}
	if n != len(p) {
		return linkcheck.ErrShortWrite{Wrote: n, Want: len(p)}
	}
	return nil
}
