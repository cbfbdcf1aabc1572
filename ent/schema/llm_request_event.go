package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent records every LLM API call for cost tracking and debugging.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider").
			Default("").
			Comment("Configured provider: kimi, deepseek, openai, ..."),
		field.String("model").
			Default("").
			Comment("Model that served the request"),
		field.String("purpose").
			Default("").
			Comment("question-gen, question-audit or ping"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0),
		field.Bool("success").
			Default(false),
		field.String("error_message").
			Default(""),
		field.Text("request_body").
			Default("").
			Comment("Readable prompt transcript"),
		field.Text("response_body").
			Default(""),
		field.Text("reasoning").
			Default("").
			Comment("Thinking trace of reasoning models"),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose"),
		index.Fields("model"),
	}
}
