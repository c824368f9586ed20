package llm

import (
	"context"
)

// LLMClient is the text-completion capability the pipeline depends on.
// Providers, the rate gate and the response cache all implement it, so the
// pieces stack by wrapping.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
