package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// chatCompletion writes a minimal chat.completion body.
func chatCompletion(w http.ResponseWriter, model, content, reasoning string) {
	msg := map[string]any{
		"role":    "assistant",
		"content": content,
	}
	if reasoning != "" {
		msg["reasoning_content"] = reasoning
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   model,
		"choices": []map[string]any{
			{"index": 0, "message": msg, "finish_reason": "stop"},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 8,
			"total_tokens":      20,
		},
	})
}

func TestKimiProvider_RequestShape(t *testing.T) {
	var body map[string]any
	var path, auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&body)
		chatCompletion(w, "moonshot-v1-8k", "[]", "")
	}))
	t.Cleanup(server.Close)

	p, err := NewKimiProvider(CompatConfig{APIKey: "kimi-key", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "moonshot-v1-8k" {
		t.Fatalf("expected default model moonshot-v1-8k, got %q", p.ModelID())
	}

	resp, err := p.Generate(context.Background(), Request{
		System:      "sys",
		Messages:    []Message{{Role: RoleUser, Content: "make questions"}},
		MaxTokens:   4000,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "[]" {
		t.Fatalf("unexpected content %q", resp.Text())
	}
	if path != "/v1/chat/completions" {
		t.Fatalf("unexpected path %q", path)
	}
	if auth != "Bearer kimi-key" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if got, ok := body["max_tokens"].(float64); !ok || got != 4000 {
		t.Fatalf("expected max_tokens 4000, got %v", body["max_tokens"])
	}
	if _, ok := body["max_completion_tokens"]; ok {
		t.Fatal("compatible vendors must not receive max_completion_tokens")
	}
	if _, ok := body["response_format"]; ok {
		t.Fatal("no response_format expected without a schema")
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %v", body["messages"])
	}
}

func TestDeepSeekProvider_JSONObjectFormatAndReasoning(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		chatCompletion(w, DeepSeekReasonerModel, `{"isValid":true,"score":90}`, "step 1: check the arithmetic")
	}))
	t.Cleanup(server.Close)

	p, err := NewDeepSeekProvider(CompatConfig{APIKey: "ds-key", Model: "reasoner", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != DeepSeekReasonerModel {
		t.Fatalf("expected alias to resolve to %q, got %q", DeepSeekReasonerModel, p.ModelID())
	}

	schema := &Schema{
		Name: "compat-test-verdict",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"isValid", "score"},
		},
	}
	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "audit"}},
		Schema:   schema,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reasoning != "step 1: check the arithmetic" {
		t.Fatalf("expected reasoning trace, got %q", resp.Reasoning)
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
}

func TestCompatProviders_RequireKey(t *testing.T) {
	if _, err := NewKimiProvider(CompatConfig{}); err == nil {
		t.Fatal("expected error for missing kimi key")
	}
	if _, err := NewDeepSeekProvider(CompatConfig{}); err == nil {
		t.Fatal("expected error for missing deepseek key")
	}
}

func TestCompatProviders_ModelPassThrough(t *testing.T) {
	p, err := NewKimiProvider(CompatConfig{APIKey: "k", Model: "moonshot-v1-32k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "moonshot-v1-32k" {
		t.Fatalf("expected model pass-through, got %q", p.ModelID())
	}
}
