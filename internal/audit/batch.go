package audit

import (
	"context"
	"time"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/question"
)

// Auditor evaluates a single question.
type Auditor interface {
	Audit(ctx context.Context, q question.Question) (Verdict, error)
}

// RunBatch audits qs strictly in order, sleeping delay between calls but
// not after the last one. Service and empty-response failures degrade to a
// rejection for that item only. observe, when non-nil, is called after
// each item with its index and verdict.
//
// RunBatch stops early only when ctx is done or the auditor returns an
// error that is not a service failure; it then returns the verdicts
// gathered so far with that error.
func RunBatch(ctx context.Context, a Auditor, qs []question.Question, delay time.Duration, observe func(i int, v Verdict)) ([]Verdict, error) {
	verdicts := make([]Verdict, 0, len(qs))
	for i, q := range qs {
		if i > 0 && delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return verdicts, err
			}
		}

		v, err := a.Audit(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return verdicts, ctxErr
			}
			if !llm.IsInfrastructure(err) {
				return verdicts, err
			}
			v = ServiceFailure(err)
		}

		verdicts = append(verdicts, v)
		if observe != nil {
			observe(i, v)
		}
	}
	return verdicts, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
