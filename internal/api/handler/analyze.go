package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/careerlens/careerlens/internal/ai"
	"github.com/careerlens/careerlens/internal/api/response"
	"github.com/careerlens/careerlens/pkg/models"
)

// Analyzer runs the resume analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText string) (*models.AnalysisResult, error)
}

// analyzeError is the error body for the analysis endpoint. Unlike the
// rest of the API it is flat, with an optional remediation suggestion.
type analyzeError struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// The endpoint serves anonymous callers; the result is ephemeral unless
// the caller saves it through the history endpoint. On success it
// responds with the analysis result at the top level.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ResumeText string `json:"resumeText"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Plain(w, http.StatusBadRequest, analyzeError{
				Error: "Invalid JSON body",
			})
			return
		}

		result, err := svc.Analyze(r.Context(), req.ResumeText)
		if err != nil {
			status, body := mapAnalyzeError(err)
			response.Plain(w, status, body)
			return
		}

		response.Plain(w, http.StatusOK, result)
	}
}

func mapAnalyzeError(err error) (int, analyzeError) {
	switch {
	case errors.Is(err, ai.ErrEmptyResume):
		return http.StatusBadRequest, analyzeError{
			Error: "Resume text is required",
		}
	case errors.Is(err, ai.ErrNoProviderConfigured):
		return http.StatusInternalServerError, analyzeError{
			Error:      "No AI provider is configured",
			Suggestion: "Enable the local model with USE_LOCAL_OLLAMA=true or set a cloud API key.",
		}
	case errors.Is(err, ai.ErrRateLimited):
		return http.StatusTooManyRequests, analyzeError{
			Error:      "AI rate limit exceeded",
			Suggestion: "Wait a minute and try again.",
		}
	case errors.Is(err, ai.ErrQuotaExhausted):
		return http.StatusPaymentRequired, analyzeError{
			Error:      "AI credits exhausted",
			Suggestion: "Add credits to the AI workspace or switch to the local model.",
		}
	case errors.Is(err, ai.ErrInferenceTimeout):
		return http.StatusGatewayTimeout, analyzeError{
			Error:      "Analysis timed out",
			Suggestion: "Try a shorter resume, or check that the local model server is responsive.",
		}
	case errors.Is(err, ai.ErrProviderUnreachable):
		return http.StatusGatewayTimeout, analyzeError{
			Error:      "Could not reach the AI provider",
			Suggestion: "Start the local model server with `ollama serve`, or enable cloud fallback.",
		}
	case errors.Is(err, ai.ErrAuthRejected):
		return http.StatusInternalServerError, analyzeError{
			Error:      "The AI provider rejected the configured credentials",
			Suggestion: "Verify the cloud API key configuration.",
		}
	case errors.Is(err, ai.ErrEmptyResponse), errors.Is(err, ai.ErrMalformedResponse):
		return http.StatusInternalServerError, analyzeError{
			Error:      "The AI model returned an unusable response",
			Suggestion: "Try again; if it persists, try a different model.",
		}
	default:
		return http.StatusInternalServerError, analyzeError{
			Error: "Analysis failed unexpectedly",
		}
	}
}
