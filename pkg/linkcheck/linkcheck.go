// Package linkcheck defines the types shared by the echo test components:
// the Transport capability, payloads, receive status and mismatch reports.
package linkcheck

import (
	"fmt"
	"strings"
)

// Transport is a byte stream to an echo peer.
//
// Read reads up to len(p) bytes. A return of (0, nil) means no data is
// currently available; it does not mean the stream is closed.
// Write must either accept all of p or return an error.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Payload is an immutable byte sequence sent to the echo peer.
// Callers must not modify the slice.
type Payload []byte

// Status is the final state of a receive session.
type Status int

const (
	Complete = Status(iota)
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Mismatch is a single differing position between sent and received data.
// Missing is set when the received data was too short to contain Index,
// Extra when the sent data was.
type Mismatch struct {
	Index    int
	Sent     byte
	Received byte
	Missing  bool
	Extra    bool
}

func (m Mismatch) String() string {
	switch {
	case m.Missing:
		return fmt.Sprintf("[%d] sent %02x, recv --", m.Index, m.Sent)
	case m.Extra:
		return fmt.Sprintf("[%d] sent --, recv %02x", m.Index, m.Received)
	}
	return fmt.Sprintf("[%d] sent %02x, recv %02x", m.Index, m.Sent, m.Received)
}

// MismatchReport enumerates every position where the echo differed from what was sent.
type MismatchReport struct {
	Mismatches []Mismatch
	// Length is the number of bytes that were compared.
	Length int
}

func (r MismatchReport) Count() int {
	return len(r.Mismatches)
}

func (r MismatchReport) String() string {
	sb := strings.Builder{}
	sb.WriteString("bad response:\n")
	for _, m := range r.Mismatches {
		sb.WriteString(m.String())
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d of %d bytes mismatched", r.Count(), r.Length)
	return sb.String()
}
