package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TopicQuestion is a question belonging to a knowledge topic.
type TopicQuestion struct {
	ent.Schema
}

func (TopicQuestion) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "topic_questions"},
	}
}

func (TopicQuestion) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("topic_id").
			NotEmpty(),
		field.Text("question_template").
			NotEmpty().
			Comment("Question text shown to the learner verbatim"),
		field.String("question_type").
			Comment("multiple_choice, open_ended or true_false"),
		field.Text("correct_answer"),
		field.JSON("answer_options", []string{}).
			Optional().
			Comment("Multiple choice options in display order"),
		field.Int("difficulty_level").
			Range(1, 3).
			Default(1),
		field.Int("points").
			Default(10),
		field.Text("explanation").
			Default(""),
		field.Bool("is_active").
			Default(true),
	}
}

func (TopicQuestion) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("topic_id"),
	}
}
