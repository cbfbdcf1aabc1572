package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one prompt to a model and returns its reply.
type Provider interface {
	// Generate performs a single completion. When req.Schema is set and the
	// backend supports native structured output, Content is JSON that has
	// already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider is configured for.
	ModelID() string
}

// Request is a single-turn completion request. Generation and audit calls
// both send one system prompt and one user message.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for native structured output. Leave it nil for
	// backends that only honour JSON mode; Content is then raw model text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// UserPrompt builds the common system+user request.
func UserPrompt(system, user string, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the validation cache key
// and the OpenAI json_schema name, so keep it unique and kebab-case.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopError     = "error"
)

type Response struct {
	// Content is validated JSON when the request carried a Schema, and the
	// model's raw text (possibly fenced) otherwise.
	Content json.RawMessage

	// Reasoning is the thinking trace for models that expose one.
	Reasoning string

	Usage      Usage
	Model      string
	StopReason string
}

func (r *Response) Text() string {
	return string(r.Content)
}

// Truncated reports whether the model ran out of output tokens.
func (r *Response) Truncated() bool {
	return r.StopReason == StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
