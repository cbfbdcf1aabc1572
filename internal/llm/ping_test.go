package llm

import (
	"context"
	"testing"
)

func TestPing(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: []byte(`"ok"`)})
	if err := Ping(context.Background(), mock); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if got := mock.Calls[0].MaxTokens; got != 10 {
		t.Errorf("ping max tokens = %d, want 10", got)
	}

	if err := Ping(context.Background(), mock); err == nil {
		t.Fatal("expected error from exhausted mock")
	}
}
