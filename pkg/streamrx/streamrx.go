// Package streamrx accumulates complete responses from a Transport that delivers
// data in arbitrary sized chunks.
//
// Two disciplines are provided. ReceiveExact knows the expected length and
// times out after a period of silence. ReceiveUntil knows only a terminator
// byte and gives up at an absolute deadline.
package streamrx

import (
	"bytes"
	"time"

	"github.com/pkg/errors"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
)

// DefaultPollInterval is the sleep between reads which returned no data.
const DefaultPollInterval = time.Millisecond

// Receiver holds the polling policy shared by receive calls.
// The zero value polls every DefaultPollInterval using the wall clock.
type Receiver struct {
	// PollInterval is slept after a read returns no data.
	// A negative value disables sleeping, for transports whose reads already block for a short slice.
	PollInterval time.Duration

	// Now and Sleep default to time.Now and time.Sleep.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// New returns a Receiver using the wall clock.
func New(pollInterval time.Duration) *Receiver {
	return &Receiver{PollInterval: pollInterval}
}

// ReceiveExact reads exactly n bytes from tr.
//
// The timeout is an idle timeout: it is armed by the first empty read and
// cleared whenever data arrives, so a slow but steady transfer never times
// out. If idleTimeout of silence elapses, ErrReceiveTimeout is returned
// carrying the number of bytes which did arrive.
func (r *Receiver) ReceiveExact(tr linkcheck.Transport, n int, idleTimeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	var got int
	var deadline time.Time
	for got < n {
		k, err := tr.Read(buf[got:])
		got += k
		if err != nil {
			return nil, errors.Wrapf(err, "receiving %d bytes (got %d)", n, got)
		}
		if k > 0 {
			deadline = time.Time{}
			continue
		}
		now := r.now()
		if deadline.IsZero() {
			deadline = now.Add(idleTimeout)
		} else if now.After(deadline) {
			return nil, linkcheck.ErrReceiveTimeout{Got: got, Want: n}
		}
		r.sleep()
	}
	return buf, nil
}

// Result is the outcome of ReceiveUntil.
type Result struct {
	Data   []byte
	Status linkcheck.Status
}

// Err returns ErrReceiveIncomplete if the receive timed out, nil otherwise.
func (r Result) Err() error {
	if r.Status == linkcheck.TimedOut {
		return linkcheck.ErrReceiveIncomplete{Got: len(r.Data)}
	}
	return nil
}

// ReceiveUntil reads chunks of at most chunkMax bytes until term is seen or
// timeout has elapsed since the call started.
//
// On Complete, Data ends with the first occurrence of term and anything the
// transport delivered after it is dropped. On TimedOut, Data holds whatever
// arrived, possibly nothing. Only transport failures are returned as errors.
func (r *Receiver) ReceiveUntil(tr linkcheck.Transport, term byte, chunkMax int, timeout time.Duration) (Result, error) {
	if chunkMax < 1 {
		return Result{}, errors.Errorf("chunkMax must be positive, have %d", chunkMax)
	}
	deadline := r.now().Add(timeout)
	chunk := make([]byte, chunkMax)
	var buf []byte
	for {
		k, err := tr.Read(chunk)
		if k > 0 {
			start := len(buf)
			buf = append(buf, chunk[:k]...)
			if i := bytes.IndexByte(buf[start:], term); i >= 0 {
				return Result{Data: buf[:start+i+1], Status: linkcheck.Complete}, nil
			}
		}
		if err != nil {
			return Result{Data: buf, Status: linkcheck.TimedOut}, errors.Wrapf(err, "receiving until %q (got %d)", term, len(buf))
		}
		if k > 0 {
			continue
		}
		if r.now().After(deadline) {
			return Result{Data: buf, Status: linkcheck.TimedOut}, nil
		}
		r.sleep()
	}
}

func (r *Receiver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Receiver) sleep() {
	d := r.PollInterval
	if d == 0 {
		d = DefaultPollInterval
	}
	if d < 0 {
		return
	}
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}
