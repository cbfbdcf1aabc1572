package llm

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
)

// TimeoutProvider is a decorator that bounds each Generate call.
type TimeoutProvider struct {
	inner Provider
	after time.Duration
}

// WithTimeout wraps a Provider so every call is cancelled after d.
// A non-positive d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, after: d}
}

func (p *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	t := timeout.New[*Response](timeout.Config{DefaultTimeout: p.after})
	resp, err := t.Execute(ctx, p.after, func(ctx context.Context) (*Response, error) {
		return p.inner.Generate(ctx, req)
	})
	if err == nil {
		return resp, nil
	}
	// The caller's own cancellation wins over the per-call deadline.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) || time.Since(start) >= p.after {
		return nil, &ErrTimeout{After: p.after}
	}
	return nil, err
}

func (p *TimeoutProvider) ModelID() string {
	return p.inner.ModelID()
}
