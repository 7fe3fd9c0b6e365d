// Package tally accumulates transfer counts from an echo test run and turns them into rates.
package tally

import (
	"fmt"
	"sync"
	"time"

	"go.linkcheck.dev/linkcheck/pkg/echotest"
	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
)

// Rate is the throughput over a window.
type Rate struct {
	Bytes   int64
	Elapsed time.Duration
}

func (r Rate) BitsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) * 8 / r.Elapsed.Seconds()
}

func (r Rate) BytesPerSecond() float64 {
	return r.BitsPerSecond() / 8
}

func (r Rate) String() string {
	return fmt.Sprintf("%d bytes in %v (%d bits/sec)", r.Bytes, r.Elapsed.Round(time.Millisecond), int64(r.BitsPerSecond()))
}

// Tally implements echotest.Sink.
// It keeps a running window which is reported to OnRate and reset each time
// it grows past Threshold bytes, and totals for the whole run.
type Tally struct {
	threshold int64
	onRate    func(Rate)
	metrics   *Metrics

	mu          sync.Mutex
	start       time.Time
	windowStart time.Time
	windowBytes int64
	total       int64
	exchanges   int64
	failures    int64
	mismatches  int64
}

type Option func(*Tally)

// WithThreshold reports a Rate to fn every time the window exceeds n bytes.
func WithThreshold(n int64, fn func(Rate)) Option {
	return func(t *Tally) {
		t.threshold = n
		t.onRate = fn
	}
}

func WithMetrics(m *Metrics) Option {
	return func(t *Tally) {
		t.metrics = m
	}
}

func New(start time.Time, opts ...Option) *Tally {
	t := &Tally{
		start:       start,
		windowStart: start,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ echotest.Sink = &Tally{}

func (t *Tally) OnExchange(ev echotest.Event) {
	t.mu.Lock()
	t.exchanges++
	if ev.Err != nil {
		t.failures++
	}
	t.total += int64(ev.Bytes)
	t.windowBytes += int64(ev.Bytes)
	var rate *Rate
	if t.threshold > 0 && t.windowBytes > t.threshold {
		rate = &Rate{Bytes: t.windowBytes, Elapsed: ev.At.Sub(t.windowStart)}
		t.windowBytes = 0
		t.windowStart = ev.At
	}
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.observeExchange(ev)
		if rate != nil {
			t.metrics.observeRate(*rate)
		}
	}
	if rate != nil && t.onRate != nil {
		t.onRate(*rate)
	}
}

func (t *Tally) OnMismatch(rep linkcheck.MismatchReport) {
	t.mu.Lock()
	t.mismatches++
	t.mu.Unlock()
	if t.metrics != nil {
		t.metrics.observeMismatch(rep)
	}
}

// Totals is the state of a Tally at the end of a run.
type Totals struct {
	Rate
	Exchanges  int64
	Failures   int64
	Mismatches int64
}

// Final returns the totals for the whole run, measured up to now.
func (t *Tally) Final(now time.Time) Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Totals{
		Rate:       Rate{Bytes: t.total, Elapsed: now.Sub(t.start)},
		Exchanges:  t.exchanges,
		Failures:   t.failures,
		Mismatches: t.mismatches,
	}
}
