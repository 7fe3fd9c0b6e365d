package linkcheck

import (
	"errors"
	"fmt"
)

var ErrNoTransport = errors.New("no transport available")

func IsErrNoTransport(err error) bool {
	return errors.Is(err, ErrNoTransport)
}

// ErrShortWrite is returned when a transport accepts fewer bytes than requested.
type ErrShortWrite struct {
	Wrote, Want int
}

func (e ErrShortWrite) Error() string {
	return fmt.Sprintf("short write: %d out of %d bytes written", e.Wrote, e.Want)
}

func IsErrShortWrite(err error) bool {
	return errors.As(err, &ErrShortWrite{})
}

// ErrReceiveTimeout is returned by a fixed length receive when the stream stays idle
// for longer than the idle timeout.
type ErrReceiveTimeout struct {
	Got, Want int
}

func (e ErrReceiveTimeout) Error() string {
	return fmt.Sprintf("receive timeout, %d out of %d bytes received", e.Got, e.Want)
}

func IsErrReceiveTimeout(err error) bool {
	return errors.As(err, &ErrReceiveTimeout{})
}

// ErrReceiveIncomplete means a delimited receive hit its deadline before the terminator.
type ErrReceiveIncomplete struct {
	Got int
}

func (e ErrReceiveIncomplete) Error() string {
	return fmt.Sprintf("receive incomplete, no terminator after %d bytes", e.Got)
}

func IsErrReceiveIncomplete(err error) bool {
	return errors.As(err, &ErrReceiveIncomplete{})
}

// ErrEchoMismatch is returned when the echoed data differs from what was sent.
type ErrEchoMismatch struct {
	Report MismatchReport
}

func (e ErrEchoMismatch) Error() string {
	return fmt.Sprintf("echo mismatch: %d of %d bytes differ", e.Report.Count(), e.Report.Length)
}

func IsErrEchoMismatch(err error) bool {
	return errors.As(err, &ErrEchoMismatch{})
}
