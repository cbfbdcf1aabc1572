package problemgen

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/question"
)

const singleChoiceItem = `{
  "question_text": "函数 f(x) = x^2 的最小值是？",
  "question_type": "单选",
  "difficulty": "基础",
  "options": ["A. -1", "B. 0", "C. 1", "D. 2"],
  "correct_answer": "B",
  "solution": "x^2 >= 0，当 x = 0 时取等号。",
  "knowledge_points": ["二次函数"]
}`

const fillInItem = `{
  "question_text": "log_2 8 = ____",
  "question_type": "填空",
  "correct_answer": "3",
  "solution": "2^3 = 8",
  "knowledge_points": ["对数"]
}`

func TestParse_ValidBatch(t *testing.T) {
	raw := "[" + singleChoiceItem + "," + fillInItem + "]"

	qs, err := Parse([]byte(raw), question.Intermediate)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[0].Type() != question.SingleChoice || qs[0].CorrectAnswer() != "B" {
		t.Errorf("unexpected first question: %+v", qs[0].Record())
	}
	if qs[1].Type() != question.FillIn {
		t.Errorf("second type = %s, want fill_in", qs[1].Type())
	}
	if qs[1].Difficulty() != question.Intermediate {
		t.Errorf("missing difficulty should fall back to intermediate, got %s", qs[1].Difficulty())
	}
}

func TestParse_StripsFences(t *testing.T) {
	for _, raw := range []string{
		"```json\n[" + fillInItem + "]\n```",
		"```\n[" + fillInItem + "]\n```",
		"\n\n  [" + fillInItem + "]  \n",
	} {
		qs, err := Parse([]byte(raw), question.Basic)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", raw[:10], err)
		}
		if len(qs) != 1 {
			t.Fatalf("got %d questions, want 1", len(qs))
		}
	}
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   \n", "```json\n```"} {
		_, err := Parse([]byte(raw), question.Basic)
		var empty *llm.ErrEmptyResponse
		if !errors.As(err, &empty) {
			t.Fatalf("Parse(%q): expected ErrEmptyResponse, got %v", raw, err)
		}
		if empty.Service != ServiceName {
			t.Errorf("service = %q, want %q", empty.Service, ServiceName)
		}
	}
}

func TestParse_WrongShape(t *testing.T) {
	for _, raw := range []string{
		`{"question_text": "x"}`,
		`null`,
		`not json at all`,
		`[` + fillInItem, // truncated
		`Here are your questions: [` + fillInItem + `]`,
	} {
		_, err := Parse([]byte(raw), question.Basic)
		var se *ErrSchema
		if !errors.As(err, &se) {
			t.Fatalf("Parse(%q): expected ErrSchema, got %v", raw, err)
		}
		if se.Index != -1 {
			t.Errorf("Parse(%q): index = %d, want -1", raw, se.Index)
		}
	}
}

func TestParse_ItemErrorsNameIndexAndField(t *testing.T) {
	noOptions := strings.Replace(singleChoiceItem, `"options": ["A. -1", "B. 0", "C. 1", "D. 2"],`, "", 1)
	badText := strings.Replace(fillInItem, `"log_2 8 = ____"`, `42`, 1)
	noSolution := strings.Replace(fillInItem, `"solution": "2^3 = 8",`, "", 1)
	badDifficulty := strings.Replace(singleChoiceItem, `"基础"`, `"extreme"`, 1)

	tests := []struct {
		name  string
		raw   string
		index int
		field string
	}{
		{"single choice without options", "[" + fillInItem + "," + noOptions + "]", 1, "options"},
		{"wrong field type", "[" + badText + "]", 0, "question_text"},
		{"missing solution", "[" + singleChoiceItem + "," + fillInItem + "," + noSolution + "]", 2, "solution"},
		{"invalid difficulty is not replaced", "[" + badDifficulty + "]", 0, "difficulty"},
		{"fill-in with options", "[" + strings.Replace(singleChoiceItem, `"单选"`, `"填空"`, 1) + "]", 0, "options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := Parse([]byte(tt.raw), question.Basic)
			if qs != nil {
				t.Fatal("failed parse must not return questions")
			}
			var se *ErrSchema
			if !errors.As(err, &se) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
			if se.Index != tt.index || se.Field != tt.field {
				t.Fatalf("got index %d field %q, want %d %q (%v)", se.Index, se.Field, tt.index, tt.field, err)
			}
		})
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	sc, err := question.NewSingleChoice("Which is prime?", question.Hard,
		[4]string{"4", "6", "7", "9"}, "C", "7 has no divisors but 1 and 7.", []string{"primes", "divisibility"})
	if err != nil {
		t.Fatalf("NewSingleChoice: %v", err)
	}
	fr, err := question.NewOpenEnded(question.FreeResponse, "Prove that sqrt(2) is irrational.",
		question.Intermediate, "See solution", "Assume p/q in lowest terms...", []string{"proof by contradiction"})
	if err != nil {
		t.Fatalf("NewOpenEnded: %v", err)
	}
	in := []question.Question{sc, fr}

	raw, err := Serialize(in)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := llm.ValidateJSON(QuestionBatchSchema, raw); err != nil {
		t.Fatalf("serialized batch does not match the prompt schema: %v", err)
	}
	for _, label := range []string{`"单选"`, `"困难"`, `"解答"`, `"中等"`} {
		if !strings.Contains(string(raw), label) {
			t.Errorf("serialized batch missing %s:\n%s", label, raw)
		}
	}
	out, err := Parse(raw, question.Basic)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d questions, want %d", len(out), len(in))
	}
	for i := range in {
		if !reflect.DeepEqual(in[i].Record(), out[i].Record()) {
			t.Errorf("question %d changed:\n in: %+v\nout: %+v", i, in[i].Record(), out[i].Record())
		}
	}
}
