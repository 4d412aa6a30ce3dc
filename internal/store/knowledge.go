package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/assessor/internal/knowledge"
)

var topicColumns = []string{
	"id", "organization_id", "name", "description", "category",
	"difficulty_level", "is_active",
}

var questionColumns = []string{
	"id", "topic_id", "question_template", "question_type", "correct_answer",
	"answer_options", "difficulty_level", "points", "explanation", "is_active",
}

// UpsertTopic inserts or replaces a topic by id.
func (s *Store) UpsertTopic(ctx context.Context, t knowledge.Topic) error {
	if t.ID == "" {
		return storageErr("upsert topic", fmt.Errorf("topic id is required"))
	}
	if t.Category == "" {
		t.Category = knowledge.CategoryGeneral
	}
	query, args := builder().Insert(topicsTable).
		Columns(topicColumns...).
		Values(t.ID, t.OrganizationID, t.Name, t.Description, string(t.Category), t.DifficultyLevel, t.IsActive).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	return s.exec(ctx, "upsert topic", query, args)
}

// UpsertQuestion inserts or replaces a question by id.
func (s *Store) UpsertQuestion(ctx context.Context, q knowledge.Question) error {
	if q.ID == "" || q.TopicID == "" {
		return storageErr("upsert question", fmt.Errorf("question id and topic id are required"))
	}
	if q.Points == 0 {
		q.Points = knowledge.DefaultPoints
	}

	var options any
	if len(q.AnswerOptions) > 0 {
		b, err := json.Marshal(q.AnswerOptions)
		if err != nil {
			return storageErr("upsert question", fmt.Errorf("marshal answer options: %w", err))
		}
		options = string(b)
	}

	query, args := builder().Insert(questionTable).
		Columns(questionColumns...).
		Values(
			q.ID, q.TopicID, q.QuestionTemplate, string(q.QuestionType), q.CorrectAnswer,
			options, q.DifficultyLevel, q.Points, q.Explanation, q.IsActive,
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	return s.exec(ctx, "upsert question", query, args)
}

// ListActiveTopics returns the organization's active topics ordered by id.
func (s *Store) ListActiveTopics(ctx context.Context, organizationID string) ([]knowledge.Topic, error) {
	query, args := builder().Select(topicColumns...).
		From(entsql.Table(topicsTable)).
		Where(entsql.And(
			entsql.EQ("organization_id", organizationID),
			entsql.EQ("is_active", true),
		)).
		OrderBy("id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list active topics", err)
	}
	defer rows.Close()

	var out []knowledge.Topic
	for rows.Next() {
		var t knowledge.Topic
		if err := rows.Scan(topicDest(&t)...); err != nil {
			return nil, storageErr("list active topics", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list active topics", err)
	}
	return out, nil
}

// ListActiveQuestions returns every active question of the organization's
// active topics, joined with its topic.
func (s *Store) ListActiveQuestions(ctx context.Context, organizationID string) ([]knowledge.TopicQuestion, error) {
	b := builder()
	q := b.Table(questionTable).As("q")
	t := b.Table(topicsTable).As("t")

	cols := make([]string, 0, len(questionColumns)+len(topicColumns))
	cols = append(cols, q.Columns(questionColumns...)...)
	cols = append(cols, t.Columns(topicColumns...)...)

	query, args := b.Select(cols...).
		From(q).
		Join(t).On(q.C("topic_id"), t.C("id")).
		Where(entsql.And(
			entsql.EQ(t.C("organization_id"), organizationID),
			entsql.EQ(t.C("is_active"), true),
			entsql.EQ(q.C("is_active"), true),
		)).
		OrderBy(q.C("id")).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list active questions", err)
	}
	defer rows.Close()

	var out []knowledge.TopicQuestion
	for rows.Next() {
		var (
			tq      knowledge.TopicQuestion
			options sql.NullString
		)
		dest := questionDest(&tq.Question, &options)
		dest = append(dest, topicDest(&tq.Topic)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, storageErr("list active questions", err)
		}
		if err := decodeOptions(&tq.Question, options); err != nil {
			return nil, storageErr("list active questions", err)
		}
		out = append(out, tq)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list active questions", err)
	}
	return out, nil
}

func topicDest(t *knowledge.Topic) []any {
	return []any{
		&t.ID, &t.OrganizationID, &t.Name, &t.Description, (*string)(&t.Category),
		&t.DifficultyLevel, &t.IsActive,
	}
}

func questionDest(q *knowledge.Question, options *sql.NullString) []any {
	return []any{
		&q.ID, &q.TopicID, &q.QuestionTemplate, (*string)(&q.QuestionType), &q.CorrectAnswer,
		options, &q.DifficultyLevel, &q.Points, &q.Explanation, &q.IsActive,
	}
}

func decodeOptions(q *knowledge.Question, options sql.NullString) error {
	if !options.Valid || options.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(options.String), &q.AnswerOptions); err != nil {
		return fmt.Errorf("decode answer options for %s: %w", q.ID, err)
	}
	return nil
}
