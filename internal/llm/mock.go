package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply. A non-nil Err is returned instead of
// a Response. StopReason defaults to StopEnd.
type MockResponse struct {
	Content    json.RawMessage
	Reasoning  string
	Usage      Usage
	StopReason string
	Err        error
}

// MockProvider replays scripted replies in order and records every request
// it sees. It is safe for concurrent use; with concurrent callers the
// pairing of request to reply follows arrival order.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

// Generate pops the next reply. An exhausted script reports the provider as
// unavailable. A done context is returned without consuming a reply.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{}
	}

	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	resp := &Response{
		Content:    next.Content,
		Reasoning:  next.Reasoning,
		Usage:      next.Usage,
		Model:      m.ModelID(),
		StopReason: next.StopReason,
	}
	if resp.StopReason == "" {
		resp.StopReason = StopEnd
	}
	return resp, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse queues another reply.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, r)
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
