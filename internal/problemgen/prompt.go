package problemgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/qgen/internal/question"
)

const systemPrompt = `你是一个专业的高中数学题目生成专家。你生成的每道题都必须数学上严谨、答案唯一且正确，并附带完整的解题过程。

Rules:
- Return only a JSON array that matches the schema given by the user. No commentary.
- Use exactly the requested number of questions and the requested type counts.
- 单选 questions have exactly 4 options labelled "A. ", "B. ", "C. ", "D. " and exactly one correct option; correct_answer is the letter only.
- 填空 and 解答 questions have no options; correct_answer is the final answer.
- Distractors should reflect common mistakes, not random values.
- Write math in LaTeX inside $...$.
- Do not repeat or paraphrase any question from the excluded list.`

type tally struct {
	Label string
	N     int
}

type promptData struct {
	Spec       question.Spec
	Topics     string
	Difficulty string
	Tiers      []tally
	Types      []tally
	Excluded   string
	Schema     string
}

var userTemplate = template.Must(template.New("generate").Parse(`Topic: {{.Spec.Topic}}
{{- with .Spec.Chapter}}
Chapter: {{.}}{{end}}
{{- with .Spec.Grade}}
Grade: {{.}}{{end}}
{{- with .Topics}}
Related knowledge points: {{.}}{{end}}
Number of questions: {{.Spec.Count}}
{{- if .Tiers}}
Difficulty mix:
{{- range .Tiers}}
- {{.Label}}: {{.N}}{{end}}
{{- else}}
Difficulty: {{.Difficulty}}{{end}}
Question types:
{{- range .Types}}
- {{.Label}}: {{.N}}{{end}}

Already accepted, do not repeat:
{{.Excluded}}

Output JSON schema:
{{.Schema}}
`))

// buildUserMessage renders the generation prompt for spec.
func buildUserMessage(spec question.Spec, cfg Config) (string, error) {
	schema, err := json.MarshalIndent(QuestionBatchSchema.Definition, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal question schema: %w", err)
	}

	data := promptData{
		Spec:       spec,
		Topics:     strings.Join(spec.Topics, ", "),
		Difficulty: spec.Difficulty.Label(),
		Excluded:   buildDedup(spec.Exclude, cfg.MaxExclusions),
		Schema:     string(schema),
	}

	typeCounts := spec.Distribution.Counts(spec.Count)
	for _, t := range question.Types {
		if n := typeCounts[t]; n > 0 {
			data.Types = append(data.Types, tally{Label: t.Label(), N: n})
		}
	}
	if !spec.DifficultyMix.IsZero() {
		tierCounts := spec.DifficultyMix.Counts(spec.Count)
		for _, d := range question.Difficulties {
			if n := tierCounts[d]; n > 0 {
				data.Tiers = append(data.Tiers, tally{Label: d.Label(), N: n})
			}
		}
	}

	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
