package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`[{"question_text":"1+1=?"}]`), Usage: Usage{InputTokens: 120, OutputTokens: 40, TotalTokens: 160}},
		MockResponse{Content: json.RawMessage(`{"isValid":true,"score":90}`), Reasoning: "检查答案", StopReason: "max_tokens"},
	)

	first, err := mock.Generate(context.Background(), Request{System: "出题", Messages: []Message{{Role: RoleUser, Content: "生成1道题"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text() != `[{"question_text":"1+1=?"}]` || first.Usage.TotalTokens != 160 {
		t.Fatalf("unexpected first response: %+v", first)
	}
	if first.StopReason != "end" || first.Model != "mock" {
		t.Fatalf("defaults not applied: stop=%q model=%q", first.StopReason, first.Model)
	}

	second, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Reasoning != "检查答案" || second.StopReason != "max_tokens" {
		t.Fatalf("unexpected second response: %+v", second)
	}

	if mock.CallCount() != 2 || mock.Calls[0].System != "出题" {
		t.Fatalf("calls not recorded: %+v", mock.Calls)
	}
}

func TestMockProvider_Errors(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		_, err := NewMockProvider().Generate(context.Background(), Request{})
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("configured error", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
		_, err := mock.Generate(context.Background(), Request{})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %v", err)
		}
	})

	t.Run("cancelled context keeps the queue", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if _, err := mock.Generate(context.Background(), Request{}); err != nil {
			t.Fatalf("queued response was consumed by the cancelled call: %v", err)
		}
	})
}

func TestMockProvider_ConcurrentUse(t *testing.T) {
	mock := NewMockProvider()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mock.AddResponse(MockResponse{Content: json.RawMessage(`{}`)})
			mock.Generate(context.Background(), Request{})
		}()
	}
	wg.Wait()
	if mock.CallCount() != 8 {
		t.Fatalf("expected 8 calls, got %d", mock.CallCount())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	for _, purpose := range []string{PurposeGeneration, PurposeAudit, PurposePing} {
		if p := PurposeFrom(WithPurpose(ctx, purpose)); p != purpose {
			t.Fatalf("expected %q, got %q", purpose, p)
		}
	}
}
