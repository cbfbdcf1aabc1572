package report

import (
	"encoding/json"
	"io"

	"github.com/abhisek/qgen/internal/audit"
	"github.com/abhisek/qgen/internal/question"
	"github.com/abhisek/qgen/internal/supervisor"
)

// Document is the JSON form of a supervision result.
type Document struct {
	Requested          int                      `json:"requested"`
	Outcome            supervisor.Status        `json:"outcome"`
	GenerationAttempts int                      `json:"generationAttempts"`
	Summary            supervisor.Summary       `json:"supervisionSummary"`
	Questions          []question.Record        `json:"questions"`
	AuditResults       []AuditEntry             `json:"auditResults"`
	Rounds             []supervisor.RoundReport `json:"rounds"`
	RunID              string                   `json:"runId,omitempty"`
}

// AuditEntry is one audit log line with the question text inlined.
type AuditEntry struct {
	Round        int           `json:"round"`
	Index        int           `json:"index"`
	Question     string        `json:"question"`
	Accepted     bool          `json:"accepted"`
	Disagreement bool          `json:"disagreement,omitempty"`
	Verdict      audit.Verdict `json:"verdict"`
}

// NewDocument converts res. runID may be empty.
func NewDocument(res *supervisor.Result, runID string) Document {
	doc := Document{
		Requested:          res.Requested,
		Outcome:            res.Status,
		GenerationAttempts: res.GenerationAttempts,
		Summary:            res.Summary,
		Questions:          make([]question.Record, 0, len(res.Accepted)),
		AuditResults:       make([]AuditEntry, 0, len(res.AuditResults)),
		Rounds:             res.Rounds,
		RunID:              runID,
	}
	for _, q := range res.Accepted {
		doc.Questions = append(doc.Questions, q.Record())
	}
	for _, o := range res.AuditResults {
		doc.AuditResults = append(doc.AuditResults, AuditEntry{
			Round:        o.Round,
			Index:        o.Index,
			Question:     o.Question.Text(),
			Accepted:     o.Accepted,
			Disagreement: o.Disagreement,
			Verdict:      o.Verdict,
		})
	}
	return doc
}

// WriteJSON writes res as an indented Document.
func WriteJSON(w io.Writer, res *supervisor.Result, runID string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(res, runID))
}
