package port

import "context"

// LLM represents a hosted language model for answer generation.
type LLM interface {
	// Complete sends a single-turn prompt and returns the response text.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
