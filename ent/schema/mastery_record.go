package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MasteryRecord is the per-learner, per-topic mastery state.
type MasteryRecord struct {
	ent.Schema
}

func (MasteryRecord) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "mastery_records"},
	}
}

func (MasteryRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").
			NotEmpty(),
		field.String("topic_id").
			NotEmpty(),
		field.Float("mastery_level").
			Min(0).
			Max(1).
			Default(0),
		field.Int("total_attempts").
			Default(0),
		field.Int("correct_attempts").
			Default(0),
		field.Time("last_attempt_at").
			Optional().
			Nillable(),
		field.Time("mastered_at").
			Optional().
			Nillable().
			Comment("Set once when mastery is first reached; never cleared"),
	}
}

func (MasteryRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "topic_id").
			Unique(),
	}
}
