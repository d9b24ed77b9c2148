package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/internal/api/handler"
	"github.com/careerlens/careerlens/internal/health"
)

type fakeReporter struct {
	report health.Report
}

func (f *fakeReporter) Report(_ context.Context) health.Report {
	return f.report
}

func healthReport(status health.Status, checks ...health.Check) health.Report {
	return health.Report{Status: status, Checks: checks, CheckedAt: time.Now().UTC()}
}

func TestHealth_AllOK(t *testing.T) {
	h := handler.NewHealthHandler(&fakeReporter{report: healthReport(health.StatusOK,
		health.Check{Name: "postgres", Status: health.StatusOK, Message: "postgres is reachable"},
	)})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, health.StatusOK, report.Status)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, "postgres", report.Checks[0].Name)
}

func TestHealth_WarningStaysUp(t *testing.T) {
	h := handler.NewHealthHandler(&fakeReporter{report: healthReport(health.StatusWarning,
		health.Check{
			Name:    "ollama",
			Status:  health.StatusWarning,
			Message: `model "tinyllama" is not pulled`,
			Hint:    "run `ollama pull tinyllama`",
		},
	)})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ollama pull tinyllama")
}

func TestHealth_ErrorIs503(t *testing.T) {
	h := handler.NewHealthHandler(&fakeReporter{report: healthReport(health.StatusError,
		health.Check{Name: "redis", Status: health.StatusError, Message: "redis is unreachable"},
	)})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
