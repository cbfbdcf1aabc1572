package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/qgen/internal/llm"
)

// ParseFailureIssue is the issue recorded when the audit response itself
// could not be parsed.
const ParseFailureIssue = "audit response parse failure"

// Verdict is the auditor's judgment of one question. Whether it is
// accepted is decided by the caller's threshold, not by IsValid alone.
type Verdict struct {
	IsValid           bool     `json:"isValid"`
	Score             int      `json:"score"`
	Issues            []string `json:"issues"`
	Suggestions       []string `json:"suggestions"`
	CorrectedSolution string   `json:"correctedSolution,omitempty"`
	Summary           string   `json:"summary"`

	// Reasoning is the reasoning trace of a reasoning model, or the raw
	// response text for a degraded verdict.
	Reasoning string `json:"reasoning,omitempty"`

	// Degraded marks a verdict synthesized after a parse or service
	// failure rather than returned by the auditor.
	Degraded bool `json:"degraded,omitempty"`
}

// ParseFailure returns the degraded rejection used when the audit
// response could not be parsed.
func ParseFailure(err error, raw string) Verdict {
	return Verdict{
		IsValid:     false,
		Score:       0,
		Issues:      []string{ParseFailureIssue},
		Suggestions: []string{},
		Summary:     fmt.Sprintf("audit failed: %v", err),
		Reasoning:   raw,
		Degraded:    true,
	}
}

// ServiceFailure returns the degraded rejection used when the audit call
// itself failed.
func ServiceFailure(err error) Verdict {
	return Verdict{
		IsValid:     false,
		Score:       0,
		Issues:      []string{fmt.Sprintf("audit service failure: %v", err)},
		Suggestions: []string{},
		Summary:     "audit could not be completed",
		Degraded:    true,
	}
}

// VerdictSchema is the JSON object the auditor must return.
var VerdictSchema = &llm.Schema{
	Name:        "audit-verdict",
	Description: "Correctness and quality verdict for one question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isValid": map[string]any{
				"type":        "boolean",
				"description": "true only if score >= 80 and there are no serious errors",
			},
			"score": map[string]any{
				"type":        "number",
				"description": "Overall quality, 0-100",
			},
			"issues": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"suggestions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"correctedSolution": map[string]any{
				"type":        []any{"string", "null"},
				"description": "Corrected worked solution, only when the original is wrong",
			},
			"auditSummary": map[string]any{
				"type":        "string",
				"description": "Overall assessment",
			},
		},
		"required": []any{"isValid", "score"},
	},
}

// verdictOutput is the raw auditor output. Summary is accepted under both
// names.
type verdictOutput struct {
	IsValid           bool     `json:"isValid"`
	Score             float64  `json:"score"`
	Issues            []string `json:"issues"`
	Suggestions       []string `json:"suggestions"`
	CorrectedSolution *string  `json:"correctedSolution"`
	Summary           string   `json:"summary"`
	AuditSummary      string   `json:"auditSummary"`
}

// ParseVerdict decodes an audit response. Fences are stripped, the body is
// checked against VerdictSchema, and optional fields take lenient
// defaults. The score is rounded and clamped to 0-100.
func ParseVerdict(raw string) (Verdict, error) {
	body := llm.StripFences(raw)
	if body == "" {
		return Verdict{}, errors.New("empty verdict")
	}
	if err := llm.ValidateJSON(VerdictSchema, []byte(body)); err != nil {
		return Verdict{}, err
	}

	var out verdictOutput
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}

	v := Verdict{
		IsValid:     out.IsValid,
		Score:       clampScore(out.Score),
		Issues:      nonNil(out.Issues),
		Suggestions: nonNil(out.Suggestions),
		Summary:     strings.TrimSpace(out.Summary),
	}
	if v.Summary == "" {
		v.Summary = strings.TrimSpace(out.AuditSummary)
	}
	if v.Summary == "" {
		v.Summary = "audit complete"
	}
	if out.CorrectedSolution != nil {
		v.CorrectedSolution = strings.TrimSpace(*out.CorrectedSolution)
	}
	return v, nil
}

func clampScore(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(max(0, min(100, math.Round(f))))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
