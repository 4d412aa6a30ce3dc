package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AssessmentSession stores session metadata at start and the summary at end.
type AssessmentSession struct {
	ent.Schema
}

func (AssessmentSession) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "assessment_sessions"},
	}
}

func (AssessmentSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID"),
		field.String("user_id").
			NotEmpty(),
		field.String("organization_id").
			NotEmpty(),
		field.String("strategy").
			Comment("Selection strategy that produced the questions"),
		field.JSON("meta", map[string]any{}),
		field.JSON("summary", map[string]any{}).
			Optional(),
		field.Time("started_at"),
		field.Time("ended_at").
			Optional().
			Nillable(),
	}
}

func (AssessmentSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "started_at"),
	}
}
