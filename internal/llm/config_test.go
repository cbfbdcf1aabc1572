package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"
)

func TestDefaultConfigFor(t *testing.T) {
	gen := DefaultConfigFor(GeneratorRole)
	if gen.Provider != "kimi" || gen.Timeout != 30*time.Second {
		t.Fatalf("unexpected generator defaults: %s %s", gen.Provider, gen.Timeout)
	}
	if gen.Model() != "moonshot-v1-8k" {
		t.Fatalf("unexpected generator model %q", gen.Model())
	}

	aud := DefaultConfigFor(AuditorRole)
	if aud.Provider != "deepseek" || aud.Timeout != 45*time.Second {
		t.Fatalf("unexpected auditor defaults: %s %s", aud.Provider, aud.Timeout)
	}
	if aud.Model() != "deepseek-chat" {
		t.Fatalf("unexpected auditor model %q", aud.Model())
	}
	if aud.Retry.MaxAttempts != 1 {
		t.Fatalf("transport retry must default off, got %d attempts", aud.Retry.MaxAttempts)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QGEN_AUDITOR_PROVIDER", "openai")
	t.Setenv("QGEN_AUDITOR_MODEL", "gpt-4o")
	t.Setenv("QGEN_AUDITOR_TIMEOUT", "10s")
	t.Setenv("QGEN_OPENAI_API_KEY", "sk-test")
	t.Setenv("QGEN_KIMI_API_KEY", "")
	t.Setenv("KIMI_API_KEY", "legacy-kimi")
	t.Setenv("DEEPSEEK_BASE_URL", "https://proxy.example/ds")

	aud := ConfigFromEnv(AuditorRole)
	if aud.Provider != "openai" || aud.OpenAI.Model != "gpt-4o" || aud.OpenAI.APIKey != "sk-test" {
		t.Fatalf("role overrides not applied: %+v", aud.OpenAI)
	}
	if aud.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", aud.Timeout)
	}
	// The role model override must not leak into other providers.
	if aud.DeepSeek.Model != "deepseek-chat" {
		t.Fatalf("deepseek model changed: %q", aud.DeepSeek.Model)
	}

	gen := ConfigFromEnv(GeneratorRole)
	if gen.Provider != "kimi" || gen.Kimi.APIKey != "legacy-kimi" {
		t.Fatalf("fallback kimi key not applied: %+v", gen.Kimi)
	}
	if gen.DeepSeek.BaseURL != "https://proxy.example/ds" {
		t.Fatalf("fallback base URL not applied: %q", gen.DeepSeek.BaseURL)
	}
}

func TestConfig_SetModelAndBaseURL(t *testing.T) {
	cfg := DefaultConfigFor(AuditorRole)
	cfg.SetModel(DeepSeekReasonerModel)
	cfg.SetBaseURL("http://localhost:9999")
	if cfg.DeepSeek.Model != DeepSeekReasonerModel || cfg.DeepSeek.BaseURL != "http://localhost:9999" {
		t.Fatalf("setters did not target the selected provider: %+v", cfg.DeepSeek)
	}
	if cfg.Kimi.BaseURL != "" {
		t.Fatal("setters touched an unselected provider")
	}
}

func TestConfig_ValidateCompat(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"kimi without key", Config{Provider: "kimi"}, true},
		{"kimi with key", Config{Provider: "kimi", Kimi: CompatConfig{APIKey: "k"}}, false},
		{"deepseek without key", Config{Provider: "deepseek"}, true},
		{"deepseek with key", Config{Provider: "deepseek", DeepSeek: CompatConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "qwen"}, true},
		{"negative timeout", Config{Provider: "mock", Timeout: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAsServiceError(t *testing.T) {
	live := context.Background()
	if AsServiceError(live, "generation", nil) != nil {
		t.Fatal("nil must stay nil")
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for _, ctxErr := range []error{context.Canceled, context.DeadlineExceeded} {
		if got := AsServiceError(cancelled, "audit", ctxErr); got != ctxErr {
			t.Fatalf("context error rewrapped on a done ctx: %v", got)
		}
	}

	// A transport deadline while the caller is still waiting is the
	// service's failure, not the caller's.
	transport := &url.Error{Op: "Post", URL: "https://api.example.com", Err: fmt.Errorf("read: %w", context.DeadlineExceeded)}
	got := AsServiceError(live, "audit", transport)
	if !IsInfrastructure(got) {
		t.Fatalf("transport deadline on a live ctx must be infrastructure, got %v", got)
	}
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Fatal("ErrService must still unwrap to the deadline")
	}
	if got := AsServiceError(live, "audit", context.Canceled); !IsInfrastructure(got) {
		t.Fatalf("bare cancel on a live ctx must be infrastructure, got %v", got)
	}

	base := &ErrRateLimit{Err: errors.New("429")}
	err := AsServiceError(live, "generation", base)
	var svc *ErrService
	if !errors.As(err, &svc) || svc.Service != "generation" {
		t.Fatalf("expected ErrService for generation, got %v", err)
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatal("ErrService must unwrap to the provider error")
	}
	if again := AsServiceError(live, "audit", err); again != err {
		t.Fatal("existing ErrService must not be wrapped twice")
	}

	timeoutErr := AsServiceError(live, "audit", &ErrTimeout{After: time.Second})
	if !errors.As(timeoutErr, &svc) {
		t.Fatalf("per-call timeout must classify as a service error, got %v", timeoutErr)
	}
}

func TestIsInfrastructure(t *testing.T) {
	if !IsInfrastructure(&ErrService{Service: "audit", Err: errors.New("x")}) {
		t.Fatal("ErrService is infrastructure")
	}
	if !IsInfrastructure(&ErrEmptyResponse{Service: "audit"}) {
		t.Fatal("ErrEmptyResponse is infrastructure")
	}
	if IsInfrastructure(errors.New("plain")) || IsInfrastructure(context.Canceled) {
		t.Fatal("plain and context errors are not infrastructure")
	}
}
