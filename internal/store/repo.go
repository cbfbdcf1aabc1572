package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Purpose      string `json:"purpose"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	RequestBody  string `json:"request_body,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// LLMRequestEventRecord is a persisted LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events. It is the only
// store surface the llm package depends on.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// LLMEventRepo adds query access on top of EventRepo.
type LLMEventRepo interface {
	EventRepo

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns nil, nil when no event has the given ID.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// RunRecord is a persisted supervision run.
type RunRecord struct {
	ID            string
	Sequence      int64
	Timestamp     time.Time
	Mode          string // "practice" or "assessment"
	Topic         string
	Chapter       string
	Requested     int
	Accepted      int
	Rejected      int
	Disagreements int
	Degraded      int
	Attempts      int
	Outcome       string
	Error         string
	Spec          []byte // JSON-encoded question spec
}

// QuestionRecord is a persisted accepted question.
type QuestionRecord struct {
	ID         string
	RunID      string
	Sequence   int64
	Timestamp  time.Time
	Topic      string
	Type       string
	Difficulty string
	Text       string
	Score      int
	Body       []byte // wire-format JSON of the question
}

// QuestionQuery filters persisted questions.
type QuestionQuery struct {
	RunID string
	Topic string
	Limit int
}

// RunRepo persists supervision runs together with their accepted questions.
type RunRepo interface {
	// SaveRun stores the run and its questions in one transaction. Empty
	// IDs are assigned. The stored run ID is returned.
	SaveRun(ctx context.Context, run RunRecord, questions []QuestionRecord) (string, error)

	ListRuns(ctx context.Context, opts QueryOpts) ([]RunRecord, error)

	// GetRun returns nil, nil when the run does not exist.
	GetRun(ctx context.Context, id string) (*RunRecord, error)

	ListQuestions(ctx context.Context, q QuestionQuery) ([]QuestionRecord, error)
}
