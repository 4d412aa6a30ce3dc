package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	topicsTable   = "knowledge_topics"
	questionTable = "topic_questions"
	attemptTable  = "question_attempts"
	masteryTable  = "mastery_records"
	sessionTable  = "assessment_sessions"
)

var (
	// TopicsColumns holds the columns for the "knowledge_topics" table.
	TopicsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "organization_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "category", Type: field.TypeString, Default: "general"},
		{Name: "difficulty_level", Type: field.TypeInt, Default: 1},
		{Name: "is_active", Type: field.TypeBool, Default: true},
	}
	// TopicsTable holds the schema information for the "knowledge_topics" table.
	TopicsTable = &schema.Table{
		Name:       topicsTable,
		Columns:    TopicsColumns,
		PrimaryKey: []*schema.Column{TopicsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "knowledgetopic_organization_id_is_active",
				Unique:  false,
				Columns: []*schema.Column{TopicsColumns[1], TopicsColumns[6]},
			},
		},
	}

	// QuestionsColumns holds the columns for the "topic_questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "topic_id", Type: field.TypeString},
		{Name: "question_template", Type: field.TypeString, Size: 2147483647},
		{Name: "question_type", Type: field.TypeString},
		{Name: "correct_answer", Type: field.TypeString, Size: 2147483647},
		{Name: "answer_options", Type: field.TypeJSON, Nullable: true},
		{Name: "difficulty_level", Type: field.TypeInt, Default: 1},
		{Name: "points", Type: field.TypeInt, Default: 10},
		{Name: "explanation", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "is_active", Type: field.TypeBool, Default: true},
	}
	// QuestionsTable holds the schema information for the "topic_questions" table.
	QuestionsTable = &schema.Table{
		Name:       questionTable,
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "topicquestion_topic_id",
				Unique:  false,
				Columns: []*schema.Column{QuestionsColumns[1]},
			},
		},
	}

	// AttemptsColumns holds the columns for the "question_attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "user_id", Type: field.TypeString},
		{Name: "topic_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString, Default: ""},
		{Name: "question_asked", Type: field.TypeString, Size: 2147483647},
		{Name: "learner_answer", Type: field.TypeString, Size: 2147483647},
		{Name: "correct_answer", Type: field.TypeString, Size: 2147483647},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "points_earned", Type: field.TypeInt},
		{Name: "time_spent_seconds", Type: field.TypeInt, Nullable: true},
		{Name: "attempt_number", Type: field.TypeInt, Default: 1},
		{Name: "created_at", Type: field.TypeTime},
	}
	// AttemptsTable holds the schema information for the "question_attempts" table.
	AttemptsTable = &schema.Table{
		Name:       attemptTable,
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "questionattempt_user_id_sequence",
				Unique:  false,
				Columns: []*schema.Column{AttemptsColumns[3], AttemptsColumns[1]},
			},
			{
				Name:    "questionattempt_session_id",
				Unique:  false,
				Columns: []*schema.Column{AttemptsColumns[2]},
			},
		},
	}

	// MasteryColumns holds the columns for the "mastery_records" table.
	MasteryColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "topic_id", Type: field.TypeString},
		{Name: "mastery_level", Type: field.TypeFloat64, Default: 0},
		{Name: "total_attempts", Type: field.TypeInt, Default: 0},
		{Name: "correct_attempts", Type: field.TypeInt, Default: 0},
		{Name: "last_attempt_at", Type: field.TypeTime, Nullable: true},
		{Name: "mastered_at", Type: field.TypeTime, Nullable: true},
	}
	// MasteryTable holds the schema information for the "mastery_records" table.
	MasteryTable = &schema.Table{
		Name:       masteryTable,
		Columns:    MasteryColumns,
		PrimaryKey: []*schema.Column{MasteryColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "masteryrecord_user_id_topic_id",
				Unique:  true,
				Columns: []*schema.Column{MasteryColumns[1], MasteryColumns[2]},
			},
		},
	}

	// SessionsColumns holds the columns for the "assessment_sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "organization_id", Type: field.TypeString},
		{Name: "strategy", Type: field.TypeString},
		{Name: "meta", Type: field.TypeJSON},
		{Name: "summary", Type: field.TypeJSON, Nullable: true},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "ended_at", Type: field.TypeTime, Nullable: true},
	}
	// SessionsTable holds the schema information for the "assessment_sessions" table.
	SessionsTable = &schema.Table{
		Name:       sessionTable,
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "assessmentsession_user_id_started_at",
				Unique:  false,
				Columns: []*schema.Column{SessionsColumns[1], SessionsColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		TopicsTable,
		QuestionsTable,
		AttemptsTable,
		MasteryTable,
		SessionsTable,
	}
)

// migrate creates missing tables, columns and indexes. It only appends.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
