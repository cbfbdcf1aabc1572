package llm

import "context"

// Purpose labels recorded on every LLM event.
const (
	PurposeGeneration = "question-gen"
	PurposeAudit      = "question-audit"
	PurposePing       = "ping"
	purposeUnknown    = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx with the reason for an LLM call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return purposeUnknown
}
