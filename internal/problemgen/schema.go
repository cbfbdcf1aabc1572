package problemgen

import "github.com/abhisek/qgen/internal/llm"

var optionItem = map[string]any{
	"type":        "string",
	"description": `Option text prefixed with its label, e.g. "A. 3"`,
}

// QuestionBatchSchema defines the JSON array the generation model must
// return. It is embedded in the prompt as text; OpenAI-compatible vendors
// cannot be asked for a top-level array natively.
var QuestionBatchSchema = &llm.Schema{
	Name:        "question-batch",
	Description: "A batch of graded questions with answers and worked solutions",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question_text": map[string]any{
					"type":        "string",
					"description": "The full question statement",
				},
				"question_type": map[string]any{
					"type": "string",
					"enum": []any{"单选", "填空", "解答"},
				},
				"difficulty": map[string]any{
					"type": "string",
					"enum": []any{"基础", "中等", "困难"},
				},
				"options": map[string]any{
					"type":        "array",
					"items":       optionItem,
					"minItems":    4,
					"maxItems":    4,
					"description": "Exactly 4 options for 单选 questions; omit for other types",
				},
				"correct_answer": map[string]any{
					"type":        "string",
					"description": "For 单选 the option letter (A-D); otherwise the final answer",
				},
				"solution": map[string]any{
					"type":        "string",
					"description": "Detailed step-by-step solution",
				},
				"knowledge_points": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 1,
				},
			},
			"required": []any{"question_text", "question_type", "difficulty", "correct_answer", "solution", "knowledge_points"},
		},
	},
}
