package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/careerlens/careerlens/pkg/models"
)

// ErrEmptyResume rejects blank input before any provider is touched.
var ErrEmptyResume = errors.New("resume text is required")

// Completion is the orchestrator's terminal success state: the raw model
// output plus which provider produced it.
type Completion struct {
	Content  string
	Provider string
	Retried  bool
}

// Options tunes the analysis service.
type Options struct {
	// CloudFallback permits falling back to the cloud provider when the
	// local provider fails. Without it a local failure is terminal.
	CloudFallback bool
	// LocalTimeout bounds one local inference call.
	LocalTimeout time.Duration
	// CloudTimeout bounds one hosted inference call.
	CloudTimeout time.Duration
	// MaxResumeChars truncates résumé text before prompting the local
	// provider. 0 disables truncation. Hosted providers always receive
	// the full text.
	MaxResumeChars int
}

// Service orchestrates the analysis pipeline: prompt construction, provider
// selection with sequential fallback, the single transient retry, and JSON
// recovery into a typed result. Stateless between calls.
type Service struct {
	local models.Provider // nil unless local inference is enabled
	cloud models.Provider // nil unless a cloud credential is configured
	opts  Options
}

// NewService creates a Service. Either provider may be nil; a request with
// both nil resolves to ErrNoProviderConfigured.
func NewService(local, cloud models.Provider, opts Options) *Service {
	if opts.LocalTimeout <= 0 {
		opts.LocalTimeout = 2 * time.Minute
	}
	if opts.CloudTimeout <= 0 {
		opts.CloudTimeout = 60 * time.Second
	}
	return &Service{local: local, cloud: cloud, opts: opts}
}

// Analyze runs the full pipeline for one résumé and returns a normalized
// result: every top-level key present even when the model omitted sections.
func (s *Service) Analyze(ctx context.Context, resumeText string) (*models.AnalysisResult, error) {
	completion, err := s.Complete(ctx, resumeText)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(completion.Content)
	if err != nil {
		slog.Debug("unparseable model output", "provider", completion.Provider, "raw", completion.Content)
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// Structurally valid JSON that doesn't fit the schema at all
		// (wrong types) counts as malformed.
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	result.Normalize()
	return &result, nil
}

// Complete drives the provider chain and returns the raw completion.
// Exactly one retry is permitted, only for transient-shaped failures, and
// it re-runs the whole chain from the start.
func (s *Service) Complete(ctx context.Context, resumeText string) (Completion, error) {
	if strings.TrimSpace(resumeText) == "" {
		return Completion{}, ErrEmptyResume
	}

	completion, err := s.completeOnce(ctx, resumeText)
	if err == nil || !Retryable(err) {
		return completion, err
	}

	// Visible retry: logged so the wait is never silent.
	slog.Warn("transient inference failure, retrying analysis", "error", err)
	completion, err = s.completeOnce(ctx, resumeText)
	completion.Retried = true
	return completion, err
}

// completeOnce is one pass of the fallback state machine.
func (s *Service) completeOnce(ctx context.Context, resumeText string) (Completion, error) {
	if s.local == nil && s.cloud == nil {
		return Completion{}, ErrNoProviderConfigured
	}

	if s.local != nil {
		content, err := s.invoke(ctx, s.local, s.opts.LocalTimeout, resumeText, s.opts.MaxResumeChars)
		if err == nil {
			return Completion{Content: content, Provider: s.local.Name()}, nil
		}
		if s.cloud == nil || !s.opts.CloudFallback {
			return Completion{Provider: s.local.Name()}, err
		}
		// The local error is superseded by whatever the cloud attempt
		// produces; keep it in the log so it is not lost.
		slog.Warn("local inference failed, falling back to cloud",
			"local_provider", s.local.Name(),
			"cloud_provider", s.cloud.Name(),
			"error", err)
	}

	content, err := s.invoke(ctx, s.cloud, s.opts.CloudTimeout, resumeText, 0)
	if err != nil {
		return Completion{Provider: s.cloud.Name()}, err
	}
	return Completion{Content: content, Provider: s.cloud.Name()}, nil
}

// invoke performs a single bounded provider call.
func (s *Service) invoke(ctx context.Context, p models.Provider, timeout time.Duration, resumeText string, maxChars int) (string, error) {
	req := BuildPrompt(p.Variant(), resumeText, maxChars)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	content, err := p.Complete(callCtx, req)
	if err != nil {
		return "", classify(err)
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// classify guarantees that no raw transport error escapes the orchestrator:
// anything a provider returns outside the taxonomy is mapped into it here.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrProviderUnreachable),
		errors.Is(err, ErrInferenceTimeout),
		errors.Is(err, ErrAuthRejected),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrQuotaExhausted),
		errors.Is(err, ErrBackend),
		errors.Is(err, ErrEmptyResponse):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrBackend, err)
}
