package llm

import "context"

// Ping sends a minimal request to check that p is reachable and the
// credentials are accepted.
func Ping(ctx context.Context, p Provider) error {
	ctx = WithPurpose(ctx, PurposePing)
	_, err := p.Generate(ctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: "你好，这是一个API测试请求。"}},
		MaxTokens: 10,
	})
	return err
}
