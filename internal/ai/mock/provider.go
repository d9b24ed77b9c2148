// Package mock provides a configurable models.Provider for testing.
package mock

import (
	"context"

	"github.com/careerlens/careerlens/internal/ai"
	"github.com/careerlens/careerlens/pkg/models"
)

// Provider satisfies models.Provider for testing. Calls records invocation
// count; Cancelled is set when a blocking call observes context cancellation.
type Provider struct {
	Name_        string
	Variant_     string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (string, error)

	Calls     int
	Cancelled bool
}

func (m *Provider) Name() string { return m.Name_ }

func (m *Provider) Variant() string {
	if m.Variant_ == "" {
		return models.VariantFull
	}
	return m.Variant_
}

func (m *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	m.Calls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "{}", nil
}

// NewProvider returns a mock that echoes a fixed completion.
func NewProvider(content string) *Provider {
	return &Provider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return content, nil
		},
	}
}

// NewFailingProvider returns a mock that always fails with err.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return "", err
		},
	}
}

// NewBlockingProvider returns a mock that never resolves: it blocks until
// the context is cancelled, records the cancellation, and reports a timeout.
func NewBlockingProvider() *Provider {
	p := &Provider{Name_: "mock-blocking"}
	p.CompleteFunc = func(ctx context.Context, _ models.CompletionRequest) (string, error) {
		<-ctx.Done()
		p.Cancelled = true
		return "", ai.ErrInferenceTimeout
	}
	return p
}

var _ models.Provider = (*Provider)(nil)
