package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuestionAttempt records one answered question. Rows are append-only.
type QuestionAttempt struct {
	ent.Schema
}

func (QuestionAttempt) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "question_attempts"},
	}
}

func (QuestionAttempt) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (QuestionAttempt) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Default("").
			Comment("Empty for attempts recorded outside a session"),
		field.String("user_id").
			NotEmpty(),
		field.String("topic_id").
			NotEmpty(),
		field.String("question_id").
			Default("").
			Comment("Empty for legacy attempts matched by question text"),
		field.Text("question_asked"),
		field.Text("learner_answer"),
		field.Text("correct_answer"),
		field.Bool("is_correct"),
		field.Int("points_earned"),
		field.Int("time_spent_seconds").
			Optional().
			Nillable(),
		field.Int("attempt_number").
			Default(1),
	}
}

func (QuestionAttempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "sequence"),
		index.Fields("session_id"),
	}
}
