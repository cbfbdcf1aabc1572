package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// slowProvider blocks until its context is done or delay elapses.
type slowProvider struct {
	delay time.Duration
}

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return &Response{Content: json.RawMessage(`"late"`)}, nil
	}
}

func (s *slowProvider) ModelID() string { return "slow" }

func TestTimeout_ExpiresAsErrTimeout(t *testing.T) {
	p := WithTimeout(&slowProvider{delay: time.Second}, 20*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	var to *ErrTimeout
	if !errors.As(err, &to) {
		t.Fatalf("expected ErrTimeout, got %T (%v)", err, err)
	}
	if to.After != 20*time.Millisecond {
		t.Fatalf("unexpected timeout duration %s", to.After)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("per-call timeout must not look like caller cancellation")
	}
}

func TestTimeout_CallerCancellationWins(t *testing.T) {
	p := WithTimeout(&slowProvider{delay: time.Second}, 500*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTimeout_FastCallPasses(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p := WithTimeout(mock, time.Second)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"ok":true}` {
		t.Fatalf("unexpected content %s", resp.Content)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected ModelID to delegate, got %q", p.ModelID())
	}
}

func TestTimeout_NonPositiveIsNoop(t *testing.T) {
	mock := NewMockProvider()
	if p := WithTimeout(mock, 0); p != Provider(mock) {
		t.Fatal("expected zero timeout to return the provider unchanged")
	}
}
