// Package question defines generation requests (Spec) and the validated
// question value produced by generation.
package question

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// OptionLabels are the labels of a single-choice question, in order.
var OptionLabels = []string{"A", "B", "C", "D"}

// Option is one labelled choice of a single-choice question.
type Option struct {
	Label string
	Text  string
}

// String renders the option as "A. text".
func (o Option) String() string {
	return o.Label + ". " + o.Text
}

// labelledOption matches "A. text", "A、text", "A) text", "A：text".
var labelledOption = regexp.MustCompile(`^([A-Da-d])\s*[.．、:：)）]\s*(.*)$`)

// Record is the wire form of a question, as exchanged with the generation
// model and persisted by callers.
type Record struct {
	QuestionText    string   `json:"question_text"`
	QuestionType    string   `json:"question_type"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Options         []string `json:"options,omitempty"`
	CorrectAnswer   string   `json:"correct_answer"`
	Solution        string   `json:"solution"`
	KnowledgePoints []string `json:"knowledge_points"`
}

// FieldError reports the first field of a Record that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Question is a validated candidate question. It can only be obtained from
// Build or the typed constructors, so options exist exactly when the type
// is SingleChoice and the answer always names one of them.
type Question struct {
	text            string
	typ             Type
	difficulty      Difficulty
	options         []Option
	answer          string
	solution        string
	knowledgePoints []string
}

func (q Question) Text() string           { return q.text }
func (q Question) Type() Type             { return q.typ }
func (q Question) Difficulty() Difficulty { return q.difficulty }
func (q Question) CorrectAnswer() string  { return q.answer }
func (q Question) Solution() string       { return q.solution }

// Options returns a copy of the options; nil unless the type is SingleChoice.
func (q Question) Options() []Option { return slices.Clone(q.options) }

// KnowledgePoints returns a copy of the knowledge points.
func (q Question) KnowledgePoints() []string { return slices.Clone(q.knowledgePoints) }

// Record returns the wire form of q.
func (q Question) Record() Record {
	rec := Record{
		QuestionText:    q.text,
		QuestionType:    q.typ.String(),
		Difficulty:      q.difficulty.String(),
		CorrectAnswer:   q.answer,
		Solution:        q.solution,
		KnowledgePoints: slices.Clone(q.knowledgePoints),
	}
	for _, o := range q.options {
		rec.Options = append(rec.Options, o.String())
	}
	return rec
}

// Build validates rec and returns the corresponding Question. The error is
// a *FieldError naming the offending field.
func Build(rec Record) (Question, error) {
	var q Question

	q.text = strings.TrimSpace(rec.QuestionText)
	if q.text == "" {
		return Question{}, &FieldError{Field: "question_text", Reason: "missing or empty"}
	}

	if strings.TrimSpace(rec.QuestionType) == "" {
		return Question{}, &FieldError{Field: "question_type", Reason: "missing or empty"}
	}
	typ, err := ParseType(rec.QuestionType)
	if err != nil {
		return Question{}, &FieldError{Field: "question_type", Reason: err.Error()}
	}
	q.typ = typ

	if strings.TrimSpace(rec.Difficulty) == "" {
		return Question{}, &FieldError{Field: "difficulty", Reason: "missing or empty"}
	}
	d, err := ParseDifficulty(rec.Difficulty)
	if err != nil {
		return Question{}, &FieldError{Field: "difficulty", Reason: err.Error()}
	}
	q.difficulty = d

	if typ == SingleChoice {
		opts, err := parseOptions(rec.Options)
		if err != nil {
			return Question{}, err
		}
		q.options = opts
	} else if len(rec.Options) > 0 {
		return Question{}, &FieldError{Field: "options", Reason: fmt.Sprintf("must be empty for %s questions", typ)}
	}

	answer := strings.TrimSpace(rec.CorrectAnswer)
	if answer == "" {
		return Question{}, &FieldError{Field: "correct_answer", Reason: "missing or empty"}
	}
	if typ == SingleChoice {
		answer = strings.ToUpper(strings.TrimRight(answer, ".．"))
		if !slices.Contains(OptionLabels, answer) {
			return Question{}, &FieldError{Field: "correct_answer", Reason: fmt.Sprintf("%q is not an option label", rec.CorrectAnswer)}
		}
	}
	q.answer = answer

	q.solution = strings.TrimSpace(rec.Solution)
	if q.solution == "" {
		return Question{}, &FieldError{Field: "solution", Reason: "missing or empty"}
	}

	if len(rec.KnowledgePoints) == 0 {
		return Question{}, &FieldError{Field: "knowledge_points", Reason: "missing or empty"}
	}
	for i, kp := range rec.KnowledgePoints {
		kp = strings.TrimSpace(kp)
		if kp == "" {
			return Question{}, &FieldError{Field: "knowledge_points", Reason: fmt.Sprintf("entry %d is blank", i)}
		}
		q.knowledgePoints = append(q.knowledgePoints, kp)
	}

	return q, nil
}

// parseOptions accepts exactly four options, each either labelled in
// position ("A. 3") or bare ("3"). Bare options are labelled in order.
func parseOptions(raw []string) ([]Option, error) {
	if len(raw) == 0 {
		return nil, &FieldError{Field: "options", Reason: "required for single_choice questions"}
	}
	if len(raw) != len(OptionLabels) {
		return nil, &FieldError{Field: "options", Reason: fmt.Sprintf("expected %d options, got %d", len(OptionLabels), len(raw))}
	}

	opts := make([]Option, len(raw))
	for i, s := range raw {
		want := OptionLabels[i]
		text := strings.TrimSpace(s)
		if m := labelledOption.FindStringSubmatch(text); m != nil {
			if got := strings.ToUpper(m[1]); got != want {
				return nil, &FieldError{Field: "options", Reason: fmt.Sprintf("option %d is labelled %s, want %s", i, got, want)}
			}
			text = strings.TrimSpace(m[2])
		}
		if text == "" {
			return nil, &FieldError{Field: "options", Reason: fmt.Sprintf("option %s is empty", want)}
		}
		opts[i] = Option{Label: want, Text: text}
	}
	return opts, nil
}

// NewSingleChoice builds a single-choice question from four option texts
// and the label of the correct one.
func NewSingleChoice(text string, d Difficulty, options [4]string, answer, solution string, knowledgePoints []string) (Question, error) {
	return Build(Record{
		QuestionText:    text,
		QuestionType:    SingleChoice.String(),
		Difficulty:      d.String(),
		Options:         options[:],
		CorrectAnswer:   answer,
		Solution:        solution,
		KnowledgePoints: knowledgePoints,
	})
}

// NewOpenEnded builds a fill-in or free-response question.
func NewOpenEnded(typ Type, text string, d Difficulty, answer, solution string, knowledgePoints []string) (Question, error) {
	if typ == SingleChoice {
		return Question{}, &FieldError{Field: "question_type", Reason: "use NewSingleChoice for single_choice questions"}
	}
	return Build(Record{
		QuestionText:    text,
		QuestionType:    typ.String(),
		Difficulty:      d.String(),
		CorrectAnswer:   answer,
		Solution:        solution,
		KnowledgePoints: knowledgePoints,
	})
}
