// Package ollama implements the local-inference provider against an
// Ollama server's HTTP API.
package ollama

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

// Provider implements models.Provider using Ollama's /api/generate endpoint.
// Local generation latency is the dominant operational risk, so every call
// is bounded by the configured timeout and the num_predict response cap.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{
		cfg: cfg,
		// No client-level timeout: the per-call context deadline owns
		// cancellation so aborted generations release the connection.
		client: &http.Client{},
	}
}

func (p *Provider) Name() string    { return "ollama" }
func (p *Provider) Variant() string { return models.VariantCompact }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends one generation request. Ollama takes a single prompt, so
// the system prompt and résumé block are concatenated.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{
		Model:  p.cfg.Model,
		Prompt: req.SystemPrompt + "\n\n" + req.UserPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.3,
			NumPredict:  p.cfg.NumPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	u := p.cfg.BaseURL + "/api/generate"
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

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ai.ErrBackend, resp.StatusCode)
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ai.ErrBackend, err)
	}
	if gen.Response == "" {
		return "", ai.ErrEmptyResponse
	}
	return gen.Response, nil
}

// Models lists the model names the Ollama server has pulled. Used by the
// diagnostics probe to warn when the configured model is absent.
func (p *Provider) Models(ctx context.Context) ([]string, error) {
	u := p.cfg.BaseURL + "/api/tags"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ai.ErrBackend, resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decoding tags: %v", ai.ErrBackend, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Model returns the configured model identifier.
func (p *Provider) Model() string { return p.cfg.Model }

// classifyError maps transport-level errors to the pipeline taxonomy.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
		}
		return fmt.Errorf("%w: %v", ai.ErrProviderUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ai.ErrProviderUnreachable, err)
}

var _ models.Provider = (*Provider)(nil)
