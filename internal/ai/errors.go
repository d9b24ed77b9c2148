package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy for the analysis pipeline. Provider clients produce the
// transport-level kinds; the orchestrator and handler branch on these with
// errors.Is instead of inspecting message text.
var (
	// ErrProviderUnreachable: network/connection failure reaching a backend.
	ErrProviderUnreachable = errors.New("inference provider unreachable")
	// ErrInferenceTimeout: the configured deadline elapsed mid-call.
	ErrInferenceTimeout = errors.New("inference timeout")
	// ErrAuthRejected: the backend refused the configured credential.
	ErrAuthRejected = errors.New("inference provider rejected credentials")
	// ErrRateLimited: quota pressure (HTTP 429). Never retried automatically.
	ErrRateLimited = errors.New("inference provider rate limited")
	// ErrQuotaExhausted: billing/credit exhaustion (HTTP 402). Terminal.
	ErrQuotaExhausted = errors.New("inference credits exhausted")
	// ErrBackend: any other non-2xx or malformed transport response.
	ErrBackend = errors.New("inference provider error")
	// ErrEmptyResponse: 2xx but no usable completion text.
	ErrEmptyResponse = errors.New("empty response from inference provider")
	// ErrMalformedResponse: no JSON object could be recovered from the completion.
	ErrMalformedResponse = errors.New("model response was not valid JSON")
	// ErrNoProviderConfigured: neither local inference nor a cloud credential
	// is configured. Fatal until the operator fixes configuration.
	ErrNoProviderConfigured = errors.New("no inference provider configured")
)

// StatusError maps an HTTP response status from a hosted provider to the
// taxonomy. Returns nil for 2xx.
func StatusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, status)
	case status == http.StatusPaymentRequired:
		return fmt.Errorf("%w: status %d", ErrQuotaExhausted, status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthRejected, status)
	default:
		return fmt.Errorf("%w: status %d", ErrBackend, status)
	}
}

// Retryable reports whether an error is transient-shaped and eligible for
// the single automatic retry. The set is deliberately narrow: rate limit,
// quota, auth, backend and extraction failures are excluded.
func Retryable(err error) bool {
	return errors.Is(err, ErrProviderUnreachable) || errors.Is(err, ErrInferenceTimeout)
}
