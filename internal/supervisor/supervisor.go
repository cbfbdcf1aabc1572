// Package supervisor drives the generate, audit and retry loop that turns
// a question spec into a set of audited questions.
package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/qgen/internal/audit"
	"github.com/abhisek/qgen/internal/question"
)

// Generator produces exactly spec.Count questions or fails.
type Generator interface {
	Generate(ctx context.Context, spec question.Spec) ([]question.Question, error)
}

// Config holds the retry budget and acceptance policy.
type Config struct {
	// MaxRetries is the number of rounds allowed after the first.
	MaxRetries int

	// PassScore is the minimum audit score for acceptance. The auditor's
	// own validity flag must also be set.
	PassScore int

	// AuditDelay is the pause between consecutive audit calls.
	AuditDelay time.Duration
}

// DefaultConfig returns the standard policy.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 2,
		PassScore:  80,
		AuditDelay: time.Second,
	}
}

// ErrRoundsExhausted is returned when the final allowed round failed to
// generate. It unwraps to that round's error.
type ErrRoundsExhausted struct {
	Attempts int
	Err      error
}

func (e *ErrRoundsExhausted) Error() string {
	return fmt.Sprintf("generation failed after %d rounds: %v", e.Attempts, e.Err)
}

func (e *ErrRoundsExhausted) Unwrap() error { return e.Err }

// Supervisor holds immutable configuration; Run may be called
// concurrently.
type Supervisor struct {
	gen  Generator
	aud  audit.Auditor
	cfg  Config
	hook Hook
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithHook installs an observability hook.
func WithHook(h Hook) Option {
	return func(s *Supervisor) {
		if h != nil {
			s.hook = h
		}
	}
}

// New creates a Supervisor.
func New(gen Generator, aud audit.Auditor, cfg Config, opts ...Option) *Supervisor {
	s := &Supervisor{gen: gen, aud: aud, cfg: cfg, hook: NopHook{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accepts reports whether v passes the acceptance policy.
func (s *Supervisor) Accepts(v audit.Verdict) bool {
	return v.IsValid && v.Score >= s.cfg.PassScore
}

// Disagrees reports whether the auditor's validity flag contradicts the
// pass score, in either direction.
func (s *Supervisor) Disagrees(v audit.Verdict) bool {
	return v.IsValid != (v.Score >= s.cfg.PassScore)
}

// Run generates and audits questions until spec.Count are accepted or the
// round budget is spent. Falling short is not an error; the result's
// Status is then StatusPartialSuccess.
//
// If the last allowed round fails to generate, Run returns the result so
// far together with *ErrRoundsExhausted. If ctx is cancelled, Run returns a
// nil result and the context error.
func (s *Supervisor) Run(ctx context.Context, spec question.Spec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	pm, err := newPhaseMachine()
	if err != nil {
		return nil, err
	}
	step := func(event string) error {
		if err := pm.fire(event); err != nil {
			return fmt.Errorf("supervisor: %w", err)
		}
		return nil
	}

	var (
		accepted []question.Question
		log      []Outcome
		rounds   []RoundReport
		attempts int
	)
	finish := func() *Result {
		res := Aggregate(spec.Count, accepted, log, attempts)
		res.Rounds = rounds
		return res
	}

	for len(accepted) < spec.Count && attempts <= s.cfg.MaxRetries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempts++
		shortfall := spec.Count - len(accepted)
		round := RoundReport{Number: attempts, Requested: shortfall}
		s.hook.RoundStarted(ctx, round)

		roundSpec := spec.WithCount(shortfall).WithExclusions(texts(accepted))
		candidates, genErr := s.gen.Generate(ctx, roundSpec)
		if genErr != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			round.Err = genErr.Error()
			rounds = append(rounds, round)
			s.hook.RoundEnded(ctx, round)

			if err := step(evGenerationFailed); err != nil {
				return nil, err
			}
			if attempts > s.cfg.MaxRetries {
				if err := step(evAbort); err != nil {
					return nil, err
				}
				return finish(), &ErrRoundsExhausted{Attempts: attempts, Err: genErr}
			}
			if err := step(evRetry); err != nil {
				return nil, err
			}
			continue
		}

		if err := step(evGenerated); err != nil {
			return nil, err
		}
		if len(candidates) > shortfall {
			candidates = candidates[:shortfall]
		}
		round.Generated = len(candidates)

		_, err := audit.RunBatch(ctx, s.aud, candidates, s.cfg.AuditDelay, func(i int, v audit.Verdict) {
			o := Outcome{
				Round:    attempts,
				Index:    i,
				Question: candidates[i],
				Verdict:  v,
				Accepted: s.Accepts(v),
			}
			o.Disagreement = s.Disagrees(v)
			log = append(log, o)
			if o.Accepted {
				accepted = append(accepted, o.Question)
				round.Accepted++
			}
			s.hook.CandidateAudited(ctx, o)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("audit round %d: %w", attempts, err)
		}
		rounds = append(rounds, round)
		s.hook.RoundEnded(ctx, round)

		if len(accepted) >= spec.Count {
			if err := step(evSatisfied); err != nil {
				return nil, err
			}
			if err := step(evFinish); err != nil {
				return nil, err
			}
			break
		}
		if err := step(evShort); err != nil {
			return nil, err
		}
		if attempts > s.cfg.MaxRetries {
			if err := step(evExhausted); err != nil {
				return nil, err
			}
			break
		}
		if err := step(evRetry); err != nil {
			return nil, err
		}
	}

	return finish(), nil
}

func texts(qs []question.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Text()
	}
	return out
}
