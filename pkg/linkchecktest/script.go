package linkchecktest

import (
	"bytes"
	"time"
)

// Step is one element of a Script.
// A step either delivers Data, stays silent for Gap, or fails with Err.
type Step struct {
	Data []byte
	Gap  time.Duration
	Err  error
}

func Chunk(data string) Step {
	return Step{Data: []byte(data)}
}

func Gap(d time.Duration) Step {
	return Step{Gap: d}
}

func Fail(err error) Step {
	return Step{Err: err}
}

// Script is a Transport which plays back a fixed sequence of reads.
// A Data step is delivered by one or more reads, depending on the size of
// the caller's buffer. A Gap step makes reads return (0, nil) until the
// clock has advanced by the gap. After the last step reads return (0, nil).
type Script struct {
	Clock *Clock
	Steps []Step

	// Written collects everything passed to Write.
	Written bytes.Buffer
	// Reads counts calls to Read.
	Reads int

	gapStart time.Time
	inGap    bool
	pending  []byte
}

func NewScript(clock *Clock, steps ...Step) *Script {
	return &Script{Clock: clock, Steps: steps}
}

func (s *Script) Read(p []byte) (int, error) {
	s.Reads++
	for {
		if len(s.pending) > 0 {
			n := copy(p, s.pending)
			s.pending = s.pending[n:]
			return n, nil
		}
		if len(s.Steps) == 0 {
			return 0, nil
		}
		step := s.Steps[0]
		switch {
		case step.Err != nil:
			return 0, step.Err
		case step.Gap > 0:
			now := s.Clock.Now()
			if !s.inGap {
				s.inGap = true
				s.gapStart = now
			}
			if now.Sub(s.gapStart) < step.Gap {
				return 0, nil
			}
			s.inGap = false
			s.Steps = s.Steps[1:]
		default:
			s.pending = step.Data
			s.Steps = s.Steps[1:]
		}
	}
}

func (s *Script) Write(p []byte) (int, error) {
	return s.Written.Write(p)
}
