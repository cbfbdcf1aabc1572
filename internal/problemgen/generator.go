package problemgen

import (
	"context"
	"fmt"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/question"
)

// ServiceName identifies the generation role in errors and events.
const ServiceName = "generation"

// Client requests question batches from a generation model. It makes one
// call per Generate and never retries.
type Client struct {
	provider llm.Provider
	cfg      Config
}

// New creates a generation Client.
func New(provider llm.Provider, cfg Config) *Client {
	return &Client{provider: provider, cfg: cfg}
}

// Generate returns exactly spec.Count questions or an error. Transport
// failures are *llm.ErrService, blank output is *llm.ErrEmptyResponse and
// malformed output is *ErrSchema. Context errors are returned unchanged.
func (c *Client) Generate(ctx context.Context, spec question.Spec) ([]question.Question, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	userMsg, err := buildUserMessage(spec, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("build generation prompt: %w", err)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeGeneration)
	resp, err := c.provider.Generate(ctx, llm.UserPrompt(systemPrompt, userMsg, c.cfg.MaxTokens, c.cfg.Temperature))
	if err != nil {
		return nil, llm.AsServiceError(ctx, ServiceName, err)
	}

	qs, err := Parse(resp.Content, spec.Difficulty)
	if err != nil {
		if resp.Truncated() {
			return nil, &ErrSchema{Index: -1, Err: &llm.ErrMaxTokensExceeded{Content: resp.Content}}
		}
		return nil, err
	}
	if len(qs) != spec.Count {
		return nil, &ErrSchema{
			Index: -1,
			Err:   fmt.Errorf("expected %d questions, got %d", spec.Count, len(qs)),
		}
	}
	return qs, nil
}

// Ping checks that the generation service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return llm.AsServiceError(ctx, ServiceName, llm.Ping(ctx, c.provider))
}

// ModelID returns the underlying model identifier.
func (c *Client) ModelID() string {
	return c.provider.ModelID()
}
