// Package metrics provides centralized Prometheus metrics registry for the
// Jira Agile client. All metrics are defined in their respective packages
// (client, pagination, cache, webhook) to maintain modularity and avoid
// circular dependencies.
//
// This package documents the available metrics and serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/jira-agile-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the Jira client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - jira_requests_total{endpoint, method, status} (Counter): Requests by endpoint, method and HTTP status
//   - jira_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - jira_errors_total{class} (Counter): Errors by class (client, server, unexpected, network)
//
// Pagination Metrics (pkg/pagination):
//   - jira_pages_fetched_total{endpoint} (Counter): List pages fetched by endpoint
//
// Operation Cache Metrics (pkg/cache):
//   - jira_operation_cache_hits_total{kind} (Counter): Lookups served from the operation cache
//   - jira_operation_cache_misses_total{kind} (Counter): Lookups that went to Jira
//   - jira_operation_cache_records_total{kind} (Counter): Records appended to the operation cache
//   - jira_operation_cache_errors_total{operation} (Counter): Store failures by operation (load, append)
//
// Webhook Metrics (pkg/webhook):
//   - jira_webhook_registrations_total{result} (Counter): Ensure outcomes (existing, created)
//
// Example Prometheus Queries:
//
//   # Operation cache hit rate
//   sum(rate(jira_operation_cache_hits_total[5m])) /
//   (sum(rate(jira_operation_cache_hits_total[5m])) + sum(rate(jira_operation_cache_misses_total[5m])))
//
//   # Request error rate by class
//   sum by (class) (rate(jira_errors_total[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(jira_request_duration_seconds_bucket[5m]))
//
//   # Pages per board issue sync
//   sum by (endpoint) (increase(jira_pages_fetched_total[1h]))

// Handler returns a mux serving /metrics from the default gatherer and a
// plain /health probe.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Serve runs the metrics listener on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	logger := logging.NewLogger("metrics")

	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics listener: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
