// Package health aggregates dependency probes into a single report with
// per-dependency status and remediation hints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/careerlens/careerlens/internal/cache"
)

// Status is the health level of a dependency or the whole report.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Check is the outcome of probing a single dependency.
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report is the aggregated health of all dependencies. Status rolls up to
// the worst individual check.
type Report struct {
	Status    Status    `json:"status"`
	Checks    []Check   `json:"checks"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker probes one dependency.
type Checker interface {
	Check(ctx context.Context) Check
}

const (
	checkTimeout = 3 * time.Second
	snapshotTTL  = 10 * time.Second
)

// Service runs all configured checkers and caches the resulting report
// briefly so a polling dashboard does not hammer the dependencies.
type Service struct {
	checkers []Checker
	cache    cache.Cache
}

// NewService aggregates dependency checkers. The cache is optional; with
// a nil cache every Report call probes live.
func NewService(c cache.Cache, checkers ...Checker) *Service {
	return &Service{checkers: checkers, cache: c}
}

// Report returns the current health report, serving a cached snapshot
// when one is fresh.
func (s *Service) Report(ctx context.Context) Report {
	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, cache.HealthSnapshotKey); err == nil && found {
			var cached Report
			if json.Unmarshal(raw, &cached) == nil {
				return cached
			}
		}
	}

	report := s.probe(ctx)

	if s.cache != nil {
		if raw, err := json.Marshal(report); err == nil {
			_ = s.cache.Set(ctx, cache.HealthSnapshotKey, raw, snapshotTTL)
		}
	}
	return report
}

func (s *Service) probe(ctx context.Context) Report {
	report := Report{
		Status:    StatusOK,
		CheckedAt: time.Now().UTC(),
	}
	for _, checker := range s.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		check := checker.Check(checkCtx)
		cancel()

		report.Checks = append(report.Checks, check)
		if worse(check.Status, report.Status) {
			report.Status = check.Status
		}
	}
	return report
}

func worse(a, b Status) bool {
	return rank(a) > rank(b)
}

func rank(s Status) int {
	switch s {
	case StatusError:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// --- Checkers ---

// Pinger covers the store and cache connectivity probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker wraps any Pinger as a named health check.
type PingChecker struct {
	name   string
	hint   string
	pinger Pinger
}

func NewPingChecker(name, hint string, p Pinger) *PingChecker {
	return &PingChecker{name: name, hint: hint, pinger: p}
}

func (c *PingChecker) Check(ctx context.Context) Check {
	if err := c.pinger.Ping(ctx); err != nil {
		return Check{
			Name:    c.name,
			Status:  StatusError,
			Message: fmt.Sprintf("%s is unreachable", c.name),
			Hint:    c.hint,
		}
	}
	return Check{Name: c.name, Status: StatusOK, Message: fmt.Sprintf("%s is reachable", c.name)}
}

// ModelLister is implemented by the local inference client. It reports
// the models currently pulled on the server.
type ModelLister interface {
	Models(ctx context.Context) ([]string, error)
	Model() string
}

// InferenceChecker verifies the local inference server is reachable and
// has the configured model pulled. A reachable server without the model
// is a warning, not an error, since cloud fallback may still serve.
type InferenceChecker struct {
	client ModelLister
}

func NewInferenceChecker(client ModelLister) *InferenceChecker {
	return &InferenceChecker{client: client}
}

func (c *InferenceChecker) Check(ctx context.Context) Check {
	models, err := c.client.Models(ctx)
	if err != nil {
		return Check{
			Name:    "ollama",
			Status:  StatusError,
			Message: "local inference server is unreachable",
			Hint:    "start the server with `ollama serve`",
		}
	}

	want := c.client.Model()
	for _, m := range models {
		if m == want {
			return Check{
				Name:    "ollama",
				Status:  StatusOK,
				Message: fmt.Sprintf("model %q is available", want),
			}
		}
	}
	return Check{
		Name:    "ollama",
		Status:  StatusWarning,
		Message: fmt.Sprintf("model %q is not pulled", want),
		Hint:    fmt.Sprintf("run `ollama pull %s`", want),
	}
}
