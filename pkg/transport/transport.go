// Package transport opens byte streams to echo peers and adapts them to the
// polling semantics of linkcheck.Transport.
package transport

import (
	"errors"
	"io"
	"os"
	"time"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
)

// DefaultPollSlice is how long a single Read waits for data before reporting none.
const DefaultPollSlice = 100 * time.Millisecond

// Conn is a Transport which must be closed by its owner.
type Conn interface {
	linkcheck.Transport
	io.Closer
}

// DeadlineConn is a stream with read deadlines, such as a net.Conn or a pollable os.File.
type DeadlineConn interface {
	io.ReadWriteCloser
	SetReadDeadline(time.Time) error
}

// Polled turns blocking reads into short polls: each Read waits at most one
// slice, and a read which hits the slice deadline returns (0, nil).
type Polled struct {
	x     DeadlineConn
	slice time.Duration
}

func NewPolled(x DeadlineConn, slice time.Duration) *Polled {
	if slice <= 0 {
		slice = DefaultPollSlice
	}
	return &Polled{x: x, slice: slice}
}

var _ Conn = &Polled{}

func (p *Polled) Read(buf []byte) (int, error) {
	if err := p.x.SetReadDeadline(time.Now().Add(p.slice)); err != nil {
		return 0, err
	}
	n, err := p.x.Read(buf)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		err = nil
	}
	return n, err
}

func (p *Polled) Write(buf []byte) (int, error) {
	return p.x.Write(buf)
}

func (p *Polled) Close() error {
	return p.x.Close()
}
