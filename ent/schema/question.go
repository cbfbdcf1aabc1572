package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is an accepted question and its audit score.
type Question struct {
	ent.Schema
}

func (Question) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable().
			Comment("UUID"),
		field.String("run_id").
			Immutable().
			Comment("Owning run; rows are removed with it"),
		field.String("topic").
			Default(""),
		field.String("type").
			Default(""),
		field.String("difficulty").
			Default(""),
		field.Text("text").
			Default(""),
		field.Int("score").
			Default(0),
		field.Text("body").
			Default("{}").
			Comment("Wire record JSON"),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
		index.Fields("topic"),
	}
}
