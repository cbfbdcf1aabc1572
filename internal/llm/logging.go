package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/qgen/internal/store"
)

// LoggingProvider writes one llm_request event per Generate call, successful
// or not. Recording failures are logged and never surface to the caller.
type LoggingProvider struct {
	inner Provider
	name  string
	repo  store.EventRepo
}

// WithLogging records calls made through p under the configured provider
// name ("kimi", "deepseek", ...). With a nil repo p is returned as is.
func WithLogging(p Provider, name string, repo store.EventRepo) Provider {
	if repo == nil {
		return p
	}
	return &LoggingProvider{inner: p, name: name, repo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = resp.Text()
		ev.Reasoning = resp.Reasoning
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// Cancelled calls are still recorded.
	if werr := l.repo.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
		slog.WarnContext(ctx, "recording LLM event failed", "purpose", ev.Purpose, "error", werr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// transcript renders req as the human-readable request body stored on the
// event and shown by "qgen llm view".
func transcript(req Request) string {
	var b strings.Builder
	section := func(label, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", label, body)
	}
	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return b.String()
}
