// Package report presents supervision results as terminal text, JSON and
// xlsx workbooks.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/qgen/internal/question"
	"github.com/abhisek/qgen/internal/supervisor"
)

// Render writes a human-readable summary of res: the counts, every
// accepted question, and the rejected candidates with their issues.
func Render(w io.Writer, res *supervisor.Result) error {
	var b strings.Builder

	status := okStyle.Render(string(res.Status))
	if res.Status != supervisor.StatusSuccess {
		status = warnStyle.Render(string(res.Status))
	}
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render("qgen"), status)
	fmt.Fprintln(&b, dimStyle.Render(summaryLine(res)))

	for i, q := range res.Accepted {
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(questionCard(i+1, q)))
		b.WriteString("\n")
	}

	var rejected []supervisor.Outcome
	for _, o := range res.AuditResults {
		if !o.Accepted {
			rejected = append(rejected, o)
		}
	}
	if len(rejected) > 0 {
		fmt.Fprintf(&b, "\n%s\n", titleStyle.Render("Rejected"))
		for _, o := range rejected {
			fmt.Fprintf(&b, "%s %s\n", failStyle.Render("✗"), bodyStyle.Render(rejectionLine(o)))
		}
	}

	for _, r := range res.Rounds {
		if r.Err != "" {
			fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("round %d failed: %s", r.Number, r.Err)))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func summaryLine(res *supervisor.Result) string {
	s := res.Summary
	line := fmt.Sprintf("accepted %d/%d · rounds %d · audited %d · rejected %d",
		s.Accepted, res.Requested, res.GenerationAttempts, s.Total, s.Rejected)
	if s.Degraded > 0 {
		line += fmt.Sprintf(" · degraded %d", s.Degraded)
	}
	if s.Disagreements > 0 {
		line += fmt.Sprintf(" · disagreements %d", s.Disagreements)
	}
	return line
}

func questionCard(n int, q question.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(fmt.Sprintf("%d.", n)),
		dimStyle.Render(fmt.Sprintf("[%s · %s]", q.Type().Label(), q.Difficulty().Label())))
	b.WriteString(bodyStyle.Render(q.Text()))
	for _, o := range q.Options() {
		fmt.Fprintf(&b, "\n  %s", o)
	}
	fmt.Fprintf(&b, "\n%s %s", okStyle.Render("Answer:"), q.CorrectAnswer())
	fmt.Fprintf(&b, "\n%s", dimStyle.Render(strings.Join(q.KnowledgePoints(), "、")))
	return b.String()
}

func rejectionLine(o supervisor.Outcome) string {
	v := o.Verdict
	line := fmt.Sprintf("round %d #%d  score %d  %s", o.Round, o.Index+1, v.Score, truncate(o.Question.Text(), 40))
	if len(v.Issues) > 0 {
		line += "  (" + strings.Join(v.Issues, "; ") + ")"
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
