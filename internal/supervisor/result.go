package supervisor

import (
	"github.com/abhisek/qgen/internal/audit"
	"github.com/abhisek/qgen/internal/question"
)

// Status is the terminal outcome of a run.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
)

// Outcome is the audit log entry for one candidate.
type Outcome struct {
	Round    int               `json:"round"`
	Index    int               `json:"index"`
	Question question.Question `json:"-"`
	Verdict  audit.Verdict     `json:"verdict"`
	Accepted bool              `json:"accepted"`

	// Disagreement is set when the auditor's isValid flag and the pass
	// threshold disagree: valid below the pass score, or invalid at or
	// above it.
	Disagreement bool `json:"disagreement,omitempty"`
}

// RoundReport records what happened in one generation round.
type RoundReport struct {
	Number    int    `json:"number"`
	Requested int    `json:"requested"`
	Generated int    `json:"generated"`
	Accepted  int    `json:"accepted"`
	Err       string `json:"error,omitempty"`
}

// Summary holds the counts over the whole audit log.
type Summary struct {
	Total         int `json:"total"`
	Accepted      int `json:"accepted"`
	Rejected      int `json:"rejected"`
	Disagreements int `json:"disagreements"`
	Degraded      int `json:"degraded"`
}

// Result is the output of a supervision run.
type Result struct {
	Requested          int                 `json:"requested"`
	Accepted           []question.Question `json:"-"`
	GenerationAttempts int                 `json:"generationAttempts"`
	AuditResults       []Outcome           `json:"auditResults"`
	Summary            Summary             `json:"supervisionSummary"`
	Status             Status              `json:"outcome"`
	Rounds             []RoundReport       `json:"rounds"`
}

// Aggregate packages a run's accepted questions and audit log. It has no
// side effects; the slices are stored as given.
func Aggregate(requested int, accepted []question.Question, auditResults []Outcome, attempts int) *Result {
	res := &Result{
		Requested:          requested,
		Accepted:           accepted,
		GenerationAttempts: attempts,
		AuditResults:       auditResults,
		Summary: Summary{
			Total:    len(auditResults),
			Accepted: len(accepted),
			Rejected: len(auditResults) - len(accepted),
		},
		Status: StatusPartialSuccess,
	}
	for _, o := range auditResults {
		if o.Disagreement {
			res.Summary.Disagreements++
		}
		if o.Verdict.Degraded {
			res.Summary.Degraded++
		}
	}
	if len(accepted) >= requested {
		res.Status = StatusSuccess
	}
	return res
}
