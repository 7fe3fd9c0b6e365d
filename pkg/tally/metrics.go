package tally

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"go.linkcheck.dev/linkcheck/pkg/echotest"
	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
)

const namespace = "linkcheck"

type Metrics struct {
	bytes         prometheus.Counter
	exchanges     prometheus.Counter
	failures      *prometheus.CounterVec
	mismatchBytes prometheus.Counter
	sizes         prometheus.Histogram
	rate          prometheus.Gauge
}

// NewMetrics creates the collectors for a run in the given mode and registers them with reg.
func NewMetrics(reg prometheus.Registerer, mode string) (*Metrics, error) {
	labels := prometheus.Labels{"mode": mode}
	m := &Metrics{
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "transferred_bytes_total",
			Help:        "Bytes sent and received by completed exchanges.",
			ConstLabels: labels,
		}),
		exchanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "exchanges_total",
			Help:        "Completed echo exchanges.",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "exchange_failures_total",
			Help:        "Exchanges which completed with a non fatal error.",
			ConstLabels: labels,
		}, []string{"kind"}),
		mismatchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "mismatched_bytes_total",
			Help:        "Bytes which differed between what was sent and what was echoed.",
			ConstLabels: labels,
		}),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "exchange_bytes",
			Help:        "Bytes transferred per exchange.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(16, 4, 7),
		}),
		rate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "throughput_bits_per_second",
			Help:        "Throughput over the last reporting window.",
			ConstLabels: labels,
		}),
	}
	for _, c := range []prometheus.Collector{m.bytes, m.exchanges, m.failures, m.mismatchBytes, m.sizes, m.rate} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeExchange(ev echotest.Event) {
	m.exchanges.Inc()
	m.bytes.Add(float64(ev.Bytes))
	m.sizes.Observe(float64(ev.Bytes))
	if ev.Err != nil {
		m.failures.WithLabelValues(failureKind(ev.Err)).Inc()
	}
}

func (m *Metrics) observeMismatch(rep linkcheck.MismatchReport) {
	m.mismatchBytes.Add(float64(rep.Count()))
}

func (m *Metrics) observeRate(r Rate) {
	m.rate.Set(r.BitsPerSecond())
}

func failureKind(err error) string {
	switch {
	case linkcheck.IsErrEchoMismatch(err):
		return "mismatch"
	case linkcheck.IsErrReceiveIncomplete(err):
		return "incomplete"
	case errors.Is(err, linkcheck.ErrNoTransport):
		return "no_transport"
	default:
		return "other"
	}
}
