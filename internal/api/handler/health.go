package handler

import (
	"context"
	"net/http"

	"github.com/careerlens/careerlens/internal/api/response"
	"github.com/careerlens/careerlens/internal/health"
)

// HealthReporter aggregates dependency probes.
type HealthReporter interface {
	Report(ctx context.Context) health.Report
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health.
// A degraded (warning) system still answers 200; only hard failures
// flip the status code so load balancers don't evict a usable instance.
func NewHealthHandler(svc HealthReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := svc.Report(r.Context())

		status := http.StatusOK
		if report.Status == health.StatusError {
			status = http.StatusServiceUnavailable
		}
		response.Plain(w, status, report)
	}
}
