// Package metrics provides the centralized Prometheus registry for the
// cBioPortal MCP server. All metrics are defined in their respective
// packages (client, fanout) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the server.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - cbioportal_requests_total{endpoint, status} (Counter): Total API requests by endpoint and HTTP status
//   - cbioportal_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - cbioportal_errors_total{kind} (Counter): Errors by kind (api, network, timeout, parse)
//
// Fan-out Metrics (pkg/fanout):
//   - cbioportal_fanout_tasks_total{outcome} (Counter): Concurrent fetch tasks by outcome (success, error)
//   - cbioportal_fanout_duration_seconds (Histogram): Wall-clock duration of whole fan-out calls
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(cbioportal_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(cbioportal_request_duration_seconds_bucket[5m]))
//
//   # Fan-out Failure Share
//   sum(rate(cbioportal_fanout_tasks_total{outcome="error"}[5m])) /
//   sum(rate(cbioportal_fanout_tasks_total[5m]))
