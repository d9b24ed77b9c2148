// Package models contains shared data models used across the CareerLens codebase.
package models

import "context"

// Prompt variants. Local models get the compact prompt to keep generation
// fast; hosted models get the full prompt with behavioral rules.
const (
	VariantCompact = "compact"
	VariantFull    = "full"
)

// CompletionRequest carries the prompt pair for one inference call.
// SystemPrompt holds the instruction and schema; UserPrompt holds the
// résumé block. Providers that take a single prompt concatenate them.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// Provider is the core interface every inference backend implements.
// Never call concrete backends directly — always inject this interface.
type Provider interface {
	// Complete performs exactly one request/response cycle and returns the
	// raw completion text, which is not guaranteed to be valid JSON.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "ollama", "gateway").
	Name() string
	// Variant returns the prompt variant this backend should receive.
	Variant() string
}
