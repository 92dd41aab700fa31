package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/ociclaim/internal/provisioning"
)

// metricsRegistry is the registry served on /metrics.
var metricsRegistry = prometheus.NewRegistry()

// startMetricsServer serves the engine metrics on addr until the returned
// stop function is called. It returns the bound address.
func startMetricsServer(addr string, logger provisioning.Logger) (net.Addr, func(), error) {
	if err := provisioning.RegisterMetrics(metricsRegistry); err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server stopped: %v", err)
		}
	}()
	logger.Printf("serving metrics on http://%s/metrics", ln.Addr())

	return ln.Addr(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
