package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Run is one supervised generation request and its outcome.
type Run struct {
	ent.Schema
}

func (Run) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (Run) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable().
			Comment("UUID"),
		field.String("mode").
			Default("").
			Comment("practice or assessment"),
		field.String("topic").
			Default(""),
		field.String("chapter").
			Default(""),
		field.Int("requested").
			Default(0),
		field.Int("accepted").
			Default(0),
		field.Int("rejected").
			Default(0),
		field.Int("disagreements").
			Default(0).
			Comment("Verdicts whose isValid contradicted the pass score"),
		field.Int("degraded").
			Default(0).
			Comment("Candidates rejected because the audit itself failed"),
		field.Int("attempts").
			Default(0).
			Comment("Rounds used"),
		field.String("outcome").
			Default(""),
		field.Text("error").
			Default(""),
		field.Text("spec").
			Default("{}").
			Comment("JSON of the generation request"),
	}
}

func (Run) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("topic"),
	}
}
