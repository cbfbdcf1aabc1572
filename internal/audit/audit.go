package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/question"
)

// ServiceName identifies the audit role in errors and events.
const ServiceName = "audit"

// Config holds configuration for the audit Client.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Reasoning switches to the step-by-step verification prompt meant for
	// reasoning models. ReasoningMaxTokens replaces MaxTokens in that mode.
	Reasoning          bool
	ReasoningMaxTokens int

	// Delay is the pause between calls in AuditBatch.
	Delay time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:          2000,
		Temperature:        0.1,
		ReasoningMaxTokens: 3000,
		Delay:              time.Second,
	}
}

// Client audits questions with a second, independent model.
type Client struct {
	provider llm.Provider
	cfg      Config
}

// New creates an audit Client.
func New(provider llm.Provider, cfg Config) *Client {
	return &Client{provider: provider, cfg: cfg}
}

// Audit evaluates q. An unparseable response yields a degraded rejection
// and a nil error. Transport failures are *llm.ErrService and blank output
// is *llm.ErrEmptyResponse; context errors are returned unchanged.
func (c *Client) Audit(ctx context.Context, q question.Question) (Verdict, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAudit)

	tmpl, system, maxTokens := standardTemplate, standardSystemPrompt, c.cfg.MaxTokens
	if c.cfg.Reasoning {
		tmpl, system = reasoningTemplate, reasoningSystemPrompt
		if c.cfg.ReasoningMaxTokens > 0 {
			maxTokens = c.cfg.ReasoningMaxTokens
		}
	}

	userMsg, err := buildAuditMessage(tmpl, q)
	if err != nil {
		return Verdict{}, fmt.Errorf("build audit prompt: %w", err)
	}

	resp, err := c.provider.Generate(ctx, llm.UserPrompt(system, userMsg, maxTokens, c.cfg.Temperature))
	if err != nil {
		return Verdict{}, llm.AsServiceError(ctx, ServiceName, err)
	}

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return Verdict{}, &llm.ErrEmptyResponse{Service: ServiceName}
	}

	v, err := ParseVerdict(raw)
	if err != nil {
		trace := resp.Reasoning
		if trace == "" {
			trace = raw
		}
		return ParseFailure(err, trace), nil
	}
	v.Reasoning = resp.Reasoning
	return v, nil
}

// AuditBatch audits qs one at a time with the configured delay between
// calls. See RunBatch.
func (c *Client) AuditBatch(ctx context.Context, qs []question.Question) ([]Verdict, error) {
	return RunBatch(ctx, c, qs, c.cfg.Delay, nil)
}

// Ping checks that the audit service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return llm.AsServiceError(ctx, ServiceName, llm.Ping(ctx, c.provider))
}

// ModelID returns the underlying model identifier.
func (c *Client) ModelID() string {
	return c.provider.ModelID()
}

const standardSystemPrompt = `你是一位严谨的高中数学教师和题目审核专家，专门负责审核数学题目的准确性和质量。请严格按照JSON格式返回审核结果。`

const reasoningSystemPrompt = `你是数学审核专家，使用深度推理来验证数学题目的正确性。请严格按照JSON格式返回审核结果。`

type auditData struct {
	Text            string
	Type            string
	Difficulty      string
	Options         []question.Option
	Answer          string
	Solution        string
	KnowledgePoints string
	Schema          string
}

var standardTemplate = template.Must(template.New("audit").Parse(`作为专业的数学教师，请仔细审核以下高中数学题目和解答：

【题目】
{{.Text}}

【题目类型】{{.Type}}
【难度等级】{{.Difficulty}}
{{- if .Options}}
【选项】
{{- range .Options}}
{{.}}{{end}}{{end}}

【正确答案】{{.Answer}}

【解题步骤】
{{.Solution}}

【涉及知识点】{{.KnowledgePoints}}

Check the statement for clarity and ambiguity, every solution step for
correctness, the final answer (for 单选, that the labelled option matches),
and the notation and arithmetic.

Return one JSON object matching this schema:
{{.Schema}}

- score: 0-100 overall quality
- isValid: true only if score >= 80 and there are no serious errors
- correctedSolution: only when the original solution is wrong, otherwise null
`))

var reasoningTemplate = template.Must(template.New("audit-reasoning").Parse(`请使用深度推理来审核以下高中数学题目：

【题目】{{.Text}}
【类型】{{.Type}}
【难度】{{.Difficulty}}
{{- if .Options}}
【选项】{{range $i, $o := .Options}}{{if $i}} | {{end}}{{$o}}{{end}}{{end}}
【答案】{{.Answer}}
【解答】{{.Solution}}
【知识点】{{.KnowledgePoints}}

请进行逐步推理验证：
1. 分析题目的数学逻辑
2. 验证解题步骤的正确性
3. 检查计算过程
4. 确认最终答案

Return one JSON object matching this schema:
{{.Schema}}
`))

func buildAuditMessage(tmpl *template.Template, q question.Question) (string, error) {
	schema, err := json.MarshalIndent(VerdictSchema.Definition, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal verdict schema: %w", err)
	}

	data := auditData{
		Text:            q.Text(),
		Type:            q.Type().Label(),
		Difficulty:      q.Difficulty().Label(),
		Options:         q.Options(),
		Answer:          q.CorrectAnswer(),
		Solution:        q.Solution(),
		KnowledgePoints: strings.Join(q.KnowledgePoints(), "、"),
		Schema:          string(schema),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
