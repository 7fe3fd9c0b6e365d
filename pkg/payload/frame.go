package payload

import (
	"bytes"
	"math/rand"

	"github.com/pkg/errors"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
)

const (
	FrameStart  = '#'
	FrameCenter = '_'
)

// FrameGenerator produces self describing frames of the form '#' + s + '_' + s,
// where s is a random string of uppercase ASCII letters.
type FrameGenerator struct {
	rng    *rand.Rand
	maxLen int
}

// NewFrameGenerator returns a generator for frames with len(s) in [1, maxLen].
func NewFrameGenerator(rng *rand.Rand, maxLen int) *FrameGenerator {
	if maxLen < 1 {
		panic("payload: frame maxLen must be at least 1")
	}
	return &FrameGenerator{rng: rng, maxLen: maxLen}
}

func (g *FrameGenerator) Generate() linkcheck.Payload {
	n := 1 + g.rng.Intn(g.maxLen)
	s := make([]byte, n)
	for i := range s {
		s[i] = byte('A' + g.rng.Intn(26))
	}
	return MakeFrame(s)
}

// MakeFrame builds '#' + s + '_' + s.
func MakeFrame(s []byte) linkcheck.Payload {
	frame := make([]byte, 0, 2*len(s)+2)
	frame = append(frame, FrameStart)
	frame = append(frame, s...)
	frame = append(frame, FrameCenter)
	frame = append(frame, s...)
	return frame
}

// IsFrameByte reports whether b can appear in a frame built by MakeFrame from
// a FrameGenerator string.
func IsFrameByte(b byte) bool {
	return b == FrameStart || b == FrameCenter || ('A' <= b && b <= 'Z')
}

// SplitFrame checks the structure of a '#' + a + '_' + b frame and returns both halves.
// It does not compare a and b.
func SplitFrame(frame []byte) (a, b []byte, err error) {
	if len(frame)%2 != 0 {
		return nil, nil, errors.Errorf("invalid frame length %d", len(frame))
	}
	if len(frame) < 2 || frame[0] != FrameStart {
		return nil, nil, errors.Errorf("frame does not start with %q", FrameStart)
	}
	mid := len(frame) / 2
	if frame[mid] != FrameCenter {
		return nil, nil, errors.Errorf("frame has %q at center, want %q", frame[mid], FrameCenter)
	}
	return frame[1:mid], frame[mid+1:], nil
}

// CheckFrame returns nil if frame has the form '#' + s + '_' + s.
func CheckFrame(frame []byte) error {
	a, b, err := SplitFrame(frame)
	if err != nil {
		return err
	}
	if !bytes.Equal(a, b) {
		return errors.New("corrupt frame: halves differ")
	}
	return nil
}
