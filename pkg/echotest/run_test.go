package echotest

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
	"go.linkcheck.dev/linkcheck/pkg/linkchecktest"
	"go.linkcheck.dev/linkcheck/pkg/payload"
)

type recordingSink struct {
	events  []Event
	reports []linkcheck.MismatchReport
}

func (s *recordingSink) OnExchange(ev Event) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) OnMismatch(rep linkcheck.MismatchReport) {
	s.reports = append(s.reports, rep)
}

func TestRunCount(t *testing.T) {
	ctx := linkchecktest.Context(t)
	rng := rand.New(rand.NewSource(0))
	v := newExactVerifier(payload.NewWindowGenerator(rng, payload.NewRandomPool(rng, 16, 256)))
	sink := &recordingSink{}
	sum, err := Run(ctx, &linkchecktest.Echo{ChunkSize: 3}, v, sink, RunOptions{Count: 20})
	require.NoError(t, err)
	require.Equal(t, 20, sum.Exchanges)
	require.False(t, sum.Cancelled)
	require.Len(t, sink.events, 20)
	var total int64
	for _, ev := range sink.events {
		total += int64(ev.Bytes)
	}
	require.Equal(t, total, sum.Bytes)
	require.Equal(t, int64(0), sum.Bytes%2)
}

func TestRunStopsOnMismatch(t *testing.T) {
	ctx := linkchecktest.Context(t)
	gen := fixedGenerator{linkcheck.Payload("AAAA"), linkcheck.Payload("BBBB"), linkcheck.Payload("CCCC")}
	writes := 0
	tr := &linkchecktest.Echo{Corrupt: func(x []byte) []byte {
		writes++
		if writes == 2 {
			x[0] = 'Z'
		}
		return x
	}}
	sink := &recordingSink{}
	sum, err := Run(ctx, tr, newExactVerifier(&gen), sink, RunOptions{})
	require.True(t, linkcheck.IsErrEchoMismatch(err))
	require.Equal(t, Summary{Exchanges: 1, Bytes: 8}, sum)
	require.Len(t, sink.reports, 1)
	require.Len(t, sink.events, 1)
	// the third payload was never sent
	require.Len(t, gen, 1)
}

func TestRunContinuesOnBadFrame(t *testing.T) {
	ctx := linkchecktest.Context(t)
	gen := fixedGenerator{
		payload.MakeFrame([]byte("AB")),
		payload.MakeFrame([]byte("CD")),
		payload.MakeFrame([]byte("EF")),
	}
	writes := 0
	tr := &linkchecktest.Echo{Corrupt: func(x []byte) []byte {
		writes++
		if writes == 2 {
			x[1] = 'X'
		}
		return x
	}}
	sink := &recordingSink{}
	sum, err := Run(ctx, tr, newFrameVerifier(&gen), sink, RunOptions{Count: 3})
	require.NoError(t, err)
	require.Equal(t, 3, sum.Exchanges)
	require.Equal(t, 1, sum.Failures)
	require.Equal(t, int64(3*2*7), sum.Bytes)
	require.Len(t, sink.reports, 1)
	require.True(t, linkcheck.IsErrEchoMismatch(sink.events[1].Err))
}

type cancellingVerifier struct {
	Verifier
	cancel context.CancelFunc
	after  int
	calls  int
}

func (v *cancellingVerifier) RunOnce(tr linkcheck.Transport) (Outcome, error) {
	v.calls++
	out, err := v.Verifier.RunOnce(tr)
	if v.calls == v.after {
		v.cancel()
	}
	return out, err
}

func TestRunCancel(t *testing.T) {
	ctx, cf := context.WithCancel(linkchecktest.Context(t))
	defer cf()
	rng := rand.New(rand.NewSource(0))
	inner := newExactVerifier(payload.NewWindowGenerator(rng, payload.NewRandomPool(rng, 16, 256)))
	v := &cancellingVerifier{Verifier: inner, cancel: cf, after: 3}
	sink := &recordingSink{}
	sum, err := Run(ctx, &linkchecktest.Echo{}, v, sink, RunOptions{})
	require.NoError(t, err)
	require.True(t, sum.Cancelled)
	// the exchange in flight when cancel was called completed and was counted
	require.Equal(t, 3, sum.Exchanges)
	require.Equal(t, 3, v.calls)
	require.Len(t, sink.events, 3)
}
