package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// KnowledgeTopic is a unit of knowledge owned by an organization.
type KnowledgeTopic struct {
	ent.Schema
}

func (KnowledgeTopic) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "knowledge_topics"},
	}
}

func (KnowledgeTopic) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("organization_id").
			NotEmpty(),
		field.String("name").
			NotEmpty(),
		field.String("description").
			Default(""),
		field.String("category").
			Default("general").
			Comment("menu, procedures, policies or general"),
		field.Int("difficulty_level").
			Range(1, 3).
			Default(1),
		field.Bool("is_active").
			Default(true),
	}
}

func (KnowledgeTopic) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id", "is_active"),
	}
}
