// Package gateway implements the hosted provider behind an OpenAI-compatible
// chat-completions gateway.
package gateway

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

// Provider implements models.Provider against a chat-completions endpoint.
// 429 and 402 are mapped to distinct error kinds because the orchestrator
// must not retry or fall back on quota conditions.
type Provider struct {
	cfg    config.GatewayConfig
	client *http.Client
}

func NewProvider(cfg config.GatewayConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string    { return "gateway" }
func (p *Provider) Variant() string { return models.VariantFull }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: gateway credential is empty", ai.ErrAuthRejected)
	}

	body, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	u := p.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if err := ai.StatusError(resp.StatusCode); err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ai.ErrBackend, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ai.ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
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
