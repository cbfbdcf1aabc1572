package supervisor

import (
	"context"
	"log/slog"
)

// Hook observes a run at well-defined points. Calls happen on the run's
// goroutine, in order.
type Hook interface {
	RoundStarted(ctx context.Context, r RoundReport)
	CandidateAudited(ctx context.Context, o Outcome)
	RoundEnded(ctx context.Context, r RoundReport)
}

// NopHook ignores every event.
type NopHook struct{}

func (NopHook) RoundStarted(context.Context, RoundReport) {}
func (NopHook) CandidateAudited(context.Context, Outcome) {}
func (NopHook) RoundEnded(context.Context, RoundReport) {}

// HookFuncs adapts plain functions to Hook. Nil fields are skipped.
type HookFuncs struct {
	OnRoundStarted     func(ctx context.Context, r RoundReport)
	OnCandidateAudited func(ctx context.Context, o Outcome)
	OnRoundEnded       func(ctx context.Context, r RoundReport)
}

func (h HookFuncs) RoundStarted(ctx context.Context, r RoundReport) {
	if h.OnRoundStarted != nil {
		h.OnRoundStarted(ctx, r)
	}
}

func (h HookFuncs) CandidateAudited(ctx context.Context, o Outcome) {
	if h.OnCandidateAudited != nil {
		h.OnCandidateAudited(ctx, o)
	}
}

func (h HookFuncs) RoundEnded(ctx context.Context, r RoundReport) {
	if h.OnRoundEnded != nil {
		h.OnRoundEnded(ctx, r)
	}
}

type multiHook []Hook

// MultiHook fans each event out to hooks in order. Nil hooks are dropped.
func MultiHook(hooks ...Hook) Hook {
	var m multiHook
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multiHook) RoundStarted(ctx context.Context, r RoundReport) {
	for _, h := range m {
		h.RoundStarted(ctx, r)
	}
}

func (m multiHook) CandidateAudited(ctx context.Context, o Outcome) {
	for _, h := range m {
		h.CandidateAudited(ctx, o)
	}
}

func (m multiHook) RoundEnded(ctx context.Context, r RoundReport) {
	for _, h := range m {
		h.RoundEnded(ctx, r)
	}
}

// LogHook writes pipeline milestones to a structured logger.
type LogHook struct {
	Logger *slog.Logger
}

// NewLogHook returns a LogHook writing to logger, or to slog.Default when
// logger is nil.
func NewLogHook(logger *slog.Logger) LogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return LogHook{Logger: logger}
}

func (h LogHook) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h LogHook) RoundStarted(ctx context.Context, r RoundReport) {
	h.logger().InfoContext(ctx, "generation round started", "round", r.Number, "requested", r.Requested)
}

func (h LogHook) CandidateAudited(ctx context.Context, o Outcome) {
	attrs := []any{
		"round", o.Round,
		"index", o.Index,
		"accepted", o.Accepted,
		"valid", o.Verdict.IsValid,
		"score", o.Verdict.Score,
	}
	switch {
	case o.Verdict.Degraded:
		h.logger().WarnContext(ctx, "degraded audit verdict", append(attrs, "issues", o.Verdict.Issues)...)
	case o.Disagreement && o.Verdict.IsValid:
		h.logger().WarnContext(ctx, "auditor marked question valid below pass score", attrs...)
	case o.Disagreement:
		h.logger().WarnContext(ctx, "auditor marked question invalid at pass score", attrs...)
	default:
		h.logger().DebugContext(ctx, "candidate audited", attrs...)
	}
}

func (h LogHook) RoundEnded(ctx context.Context, r RoundReport) {
	if r.Err != "" {
		h.logger().WarnContext(ctx, "generation round failed", "round", r.Number, "error", r.Err)
		return
	}
	h.logger().InfoContext(ctx, "generation round ended",
		"round", r.Number, "generated", r.Generated, "accepted", r.Accepted)
}
