package echotest

import (
	"context"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
	"go.linkcheck.dev/linkcheck/pkg/linkchecktest"
	"go.linkcheck.dev/linkcheck/pkg/payload"
	"go.linkcheck.dev/linkcheck/pkg/streamrx"
)

func TestCompare(t *testing.T) {
	rep, ok := Compare([]byte("ABCDE"), []byte("ABXDY"))
	require.False(t, ok)
	require.Equal(t, linkcheck.MismatchReport{
		Mismatches: []linkcheck.Mismatch{
			{Index: 2, Sent: 'C', Received: 'X'},
			{Index: 4, Sent: 'E', Received: 'Y'},
		},
		Length: 5,
	}, rep)
	require.Equal(t, 2, rep.Count())
	require.Contains(t, rep.String(), "2 of 5 bytes mismatched")

	rep, ok = Compare([]byte("ABCDE"), []byte("ABCDE"))
	require.True(t, ok)
	require.Equal(t, 0, rep.Count())

	rep, ok = Compare(nil, nil)
	require.True(t, ok)
	require.Equal(t, 0, rep.Length)

	rep, ok = Compare([]byte("ABC"), []byte("AB"))
	require.False(t, ok)
	require.Equal(t, []linkcheck.Mismatch{{Index: 2, Sent: 'C', Missing: true}}, rep.Mismatches)

	rep, ok = Compare([]byte("AB"), []byte("ABC"))
	require.False(t, ok)
	require.Equal(t, []linkcheck.Mismatch{{Index: 2, Received: 'C', Extra: true}}, rep.Mismatches)
}

type fixedGenerator []linkcheck.Payload

func (g *fixedGenerator) Generate() linkcheck.Payload {
	p := (*g)[0]
	*g = (*g)[1:]
	return p
}

func newExactVerifier(gen payload.Generator) *ExactVerifier {
	return &ExactVerifier{
		Generator:   gen,
		Receiver:    &streamrx.Receiver{PollInterval: -1},
		IdleTimeout: time.Second,
	}
}

func TestExactRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	pool := payload.NewRandomPool(rng, 64, 1024)
	v := newExactVerifier(payload.NewWindowGenerator(rng, pool))
	for _, chunkSize := range []int{0, 1, 7, 100} {
		tr := &linkchecktest.Echo{ChunkSize: chunkSize}
		for i := 0; i < 50; i++ {
			out, err := v.RunOnce(tr)
			require.NoError(t, err)
			require.Nil(t, out.Report)
			require.Equal(t, out.Sent, out.Received)
			require.Equal(t, 2*out.Sent, out.Transferred())
			require.Equal(t, 0, tr.Buffered())
		}
	}
}

func TestExactZeroLength(t *testing.T) {
	gen := fixedGenerator{linkcheck.Payload{}}
	v := newExactVerifier(&gen)
	out, err := v.RunOnce(&linkchecktest.Echo{})
	require.NoError(t, err)
	require.Equal(t, 0, out.Transferred())
	require.Nil(t, out.Report)
}

func TestExactMismatch(t *testing.T) {
	gen := fixedGenerator{linkcheck.Payload("ABCDE")}
	v := newExactVerifier(&gen)
	tr := &linkchecktest.Echo{Corrupt: func(x []byte) []byte {
		x[2], x[4] = 'X', 'Y'
		return x
	}}
	out, err := v.RunOnce(tr)
	require.True(t, linkcheck.IsErrEchoMismatch(err))
	require.NotNil(t, out.Report)
	require.Equal(t, 2, out.Report.Count())
	require.Equal(t, 5, out.Report.Length)
}

func TestExactShortWrite(t *testing.T) {
	gen := fixedGenerator{linkcheck.Payload("ABCDE")}
	v := newExactVerifier(&gen)
	_, err := v.RunOnce(&linkchecktest.Echo{ShortBy: 1})
	require.True(t, linkcheck.IsErrShortWrite(err))
	require.Equal(t, linkcheck.ErrShortWrite{Wrote: 4, Want: 5}, err)
}

func TestExactTimeout(t *testing.T) {
	clock := linkchecktest.NewClock()
	gen := fixedGenerator{linkcheck.Payload("ABCDE")}
	v := &ExactVerifier{
		Generator:   &gen,
		Receiver:    &streamrx.Receiver{Now: clock.Now, Sleep: clock.Sleep},
		IdleTimeout: 50 * time.Millisecond,
	}
	tr := linkchecktest.NewScript(clock, linkchecktest.Chunk("AB"))
	_, err := v.RunOnce(tr)
	require.Equal(t, linkcheck.ErrReceiveTimeout{Got: 2, Want: 5}, err)
	require.Equal(t, "ABCDE", tr.Written.String())
}

func TestNoTransport(t *testing.T) {
	gen := fixedGenerator{linkcheck.Payload("A")}
	_, err := newExactVerifier(&gen).RunOnce(nil)
	require.True(t, linkcheck.IsErrNoTransport(err))
	// the generator was not consulted
	require.Len(t, gen, 1)

	_, err = Run(context.Background(), nil, newExactVerifier(&gen), nil, RunOptions{})
	require.True(t, linkcheck.IsErrNoTransport(err))
}

func newFrameVerifier(gen payload.Generator) *FrameVerifier {
	return &FrameVerifier{
		Generator:  gen,
		Receiver:   &streamrx.Receiver{PollInterval: -1},
		Terminator: '\n',
		ChunkMax:   16,
		Timeout:    time.Second,
	}
}

func TestFrameRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v := newFrameVerifier(payload.NewFrameGenerator(rng, 100))
	tr := &linkchecktest.Echo{ChunkSize: 5}
	for i := 0; i < 50; i++ {
		out, err := v.RunOnce(tr)
		require.NoError(t, err)
		require.NoError(t, out.Err)
		require.Equal(t, out.Sent, out.Received)
	}
	require.Equal(t, 50, tr.Writes)
	require.Zero(t, tr.Buffered())
}

func TestFrameSelfCheck(t *testing.T) {
	tcs := []struct {
		Name     string
		Response string
		Ok       bool
	}{
		{Name: "Valid", Response: "#HELLO_HELLO\n", Ok: true},
		{Name: "CorruptHalf", Response: "#HELLO_HELXO\n"},
		{Name: "MissingCenter", Response: "#HELLOXHELLO\n"},
		{Name: "OddLength", Response: "#HELLO_HELL\n"},
	}
	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			gen := fixedGenerator{payload.MakeFrame([]byte("HELLO"))}
			clock := linkchecktest.NewClock()
			tr := linkchecktest.NewScript(clock, linkchecktest.Chunk(tc.Response))
			v := newFrameVerifier(&gen)
			out, err := v.RunOnce(tr)
			require.NoError(t, err)
			require.Equal(t, "#HELLO_HELLO\n", tr.Written.String())
			require.Equal(t, len(tc.Response), out.Received)
			if tc.Ok {
				require.NoError(t, out.Err)
				require.Nil(t, out.Report)
			} else {
				require.True(t, linkcheck.IsErrEchoMismatch(out.Err))
				require.NotNil(t, out.Report)
			}
		})
	}
}

func TestFrameMismatchReportsHalves(t *testing.T) {
	gen := fixedGenerator{payload.MakeFrame([]byte("HELLO"))}
	tr := linkchecktest.NewScript(linkchecktest.NewClock(), linkchecktest.Chunk("#HELLO_HELXO\n"))
	out, err := newFrameVerifier(&gen).RunOnce(tr)
	require.NoError(t, err)
	require.Equal(t, []linkcheck.Mismatch{{Index: 3, Sent: 'L', Received: 'X'}}, out.Report.Mismatches)
}

func TestFrameIncomplete(t *testing.T) {
	clock := linkchecktest.NewClock()
	gen := fixedGenerator{payload.MakeFrame([]byte("HELLO"))}
	v := newFrameVerifier(&gen)
	v.Receiver = &streamrx.Receiver{Now: clock.Now, Sleep: clock.Sleep}
	tr := linkchecktest.NewScript(clock, linkchecktest.Chunk("#HEL"))
	out, err := v.RunOnce(tr)
	require.NoError(t, err)
	require.Equal(t, linkcheck.ErrReceiveIncomplete{Got: 4}, out.Err)
	require.Equal(t, 13+4, out.Transferred())
}

func TestFrameTransportError(t *testing.T) {
	gen := fixedGenerator{payload.MakeFrame([]byte("HELLO"))}
	tr := linkchecktest.NewScript(linkchecktest.NewClock(), linkchecktest.Fail(io.ErrClosedPipe))
	_, err := newFrameVerifier(&gen).RunOnce(tr)
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestFrameMalformedKeepsCause(t *testing.T) {
	gen := fixedGenerator{payload.MakeFrame([]byte("HELLO"))}
	tr := linkchecktest.NewScript(linkchecktest.NewClock(), linkchecktest.Chunk("#HELLOXHELLO\n"))
	out, err := newFrameVerifier(&gen).RunOnce(tr)
	require.NoError(t, err)
	require.True(t, linkcheck.IsErrEchoMismatch(out.Err))
	require.Contains(t, out.Err.Error(), "malformed frame: frame has 'X' at center")
	require.Equal(t, []linkcheck.Mismatch{{Index: 6, Sent: '_', Received: 'X'}}, out.Report.Mismatches)
}
