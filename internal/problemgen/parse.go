package problemgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/question"
)

// ErrSchema reports a generation response that is not a valid question
// batch. Index is -1 when the response as a whole has the wrong shape;
// otherwise Index is the first offending item and Field names the field.
type ErrSchema struct {
	Index int
	Field string
	Err   error
}

func (e *ErrSchema) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("invalid question batch: %v", e.Err)
	case e.Field != "":
		return fmt.Sprintf("question %d: invalid %s: %v", e.Index, e.Field, e.Err)
	default:
		return fmt.Sprintf("question %d: %v", e.Index, e.Err)
	}
}

func (e *ErrSchema) Unwrap() error { return e.Err }

// Parse decodes a generation response into questions. Markdown fences are
// stripped; nothing else is repaired. Items without a difficulty take
// fallback. Any invalid item fails the whole batch.
func Parse(raw []byte, fallback question.Difficulty) ([]question.Question, error) {
	body := llm.StripFences(string(raw))
	if body == "" {
		return nil, &llm.ErrEmptyResponse{Service: ServiceName}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, &ErrSchema{Index: -1, Err: err}
	}
	if items == nil {
		return nil, &ErrSchema{Index: -1, Err: errors.New("expected a JSON array, got null")}
	}

	questions := make([]question.Question, 0, len(items))
	for i, item := range items {
		var rec question.Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, &ErrSchema{Index: i, Field: typeErrorField(err), Err: err}
		}
		if strings.TrimSpace(rec.Difficulty) == "" && fallback.Valid() {
			rec.Difficulty = fallback.String()
		}

		q, err := question.Build(rec)
		if err != nil {
			se := &ErrSchema{Index: i, Err: err}
			var fe *question.FieldError
			if errors.As(err, &fe) {
				se.Field = fe.Field
			}
			return nil, se
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// typeErrorField returns the top-level field named by a decode type error,
// e.g. "options" for a "options.2" path.
func typeErrorField(err error) string {
	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) {
		return ""
	}
	field, _, _ := strings.Cut(ute.Field, ".")
	return field
}

// Serialize writes questions in the format the generation model is asked
// for: QuestionBatchSchema, with the Chinese type and difficulty labels.
func Serialize(qs []question.Question) ([]byte, error) {
	recs := make([]question.Record, len(qs))
	for i, q := range qs {
		rec := q.Record()
		rec.QuestionType = q.Type().Label()
		rec.Difficulty = q.Difficulty().Label()
		recs[i] = rec
	}
	return json.MarshalIndent(recs, "", "  ")
}
