// Package gemini implements the direct-hosted provider against the
// Gemini generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/careerlens/careerlens/internal/ai"
	"github.com/careerlens/careerlens/internal/config"
	"github.com/careerlens/careerlens/pkg/models"
)

const maxOutputTokens = 2000

// Provider implements models.Provider using the generateContent endpoint.
// Structurally the same as the gateway client apart from the request
// envelope and key-in-query authentication.
type Provider struct {
	cfg    config.GeminiConfig
	client *http.Client
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string    { return "gemini" }
func (p *Provider) Variant() string { return models.VariantFull }

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: gemini credential is empty", ai.ErrAuthRejected)
	}

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: req.SystemPrompt}, {Text: req.UserPrompt}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.4,
			MaxOutputTokens: maxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ai.ErrBackend, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ai.ErrEmptyResponse
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// statusError maps a non-2xx response to the error taxonomy. Gemini
// reports billing exhaustion as 403 with a RESOURCE_EXHAUSTED status in
// the error body, which must surface as quota rather than a credential
// failure; a 429 stays a rate limit either way.
func statusError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)

	if apiErr.Error.Status == "RESOURCE_EXHAUSTED" && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d (RESOURCE_EXHAUSTED)", ai.ErrQuotaExhausted, resp.StatusCode)
	}
	return ai.StatusError(resp.StatusCode)
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", ai.ErrProviderUnreachable, err)
}

var _ models.Provider = (*Provider)(nil)
