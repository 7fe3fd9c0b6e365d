package linkcheckcmd

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.brendoncarroll.net/stdctx/logctx"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// newMetricsHandler serves the prometheus metrics in pgath and a health check.
func newMetricsHandler(pgath prometheus.Gatherer) http.Handler {
	mux := chi.NewMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("linkcheck\n"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(pgath, promhttp.HandlerOpts{}))
	return h2c.NewHandler(mux, &http2.Server{})
}

// runMetricsServer serves metrics at endpoint until ctx is cancelled.
func runMetricsServer(ctx context.Context, endpoint string, pgath prometheus.Gatherer) error {
	l, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	defer l.Close()
	hSrv := http.Server{
		Handler:     newMetricsHandler(pgath),
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		logctx.Infof(ctx, "metrics listening on: %v", l.Addr())
		if err := hSrv.Serve(l); err != nil && err != http.ErrServerClosed {
			logctx.Errorf(ctx, "error serving http: %v", err)
		}
	}()
	<-ctx.Done()
	return hSrv.Shutdown(context.Background())
}
