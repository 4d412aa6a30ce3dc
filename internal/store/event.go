package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/assessor/internal/knowledge"
)

// sequenceCounter manages the global monotonic sequence number assigned to
// every question attempt. Timestamps can collide, so "most recent attempt"
// is defined by sequence rather than created_at.
//
// Uses raw SQL because the increment has to be atomic at the database
// level. The mutex serializes within the process; the RETURNING clause
// makes the increment atomic across processes sharing the file.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

var attemptColumns = []string{
	"sequence", "session_id", "user_id", "topic_id", "question_id",
	"question_asked", "learner_answer", "correct_answer", "is_correct",
	"points_earned", "time_spent_seconds", "attempt_number", "created_at",
}

// AppendAttempt stores an attempt under the next global sequence number.
// A zero CreatedAt is stamped with the current time.
func (s *Store) AppendAttempt(ctx context.Context, a knowledge.Attempt) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return storageErr("append attempt", err)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.AttemptNumber < 1 {
		a.AttemptNumber = 1
	}

	var spent any
	if a.TimeSpentSeconds != nil {
		spent = *a.TimeSpentSeconds
	}

	query, args := builder().Insert(attemptTable).
		Columns(attemptColumns...).
		Values(
			seq, a.SessionID, a.UserID, a.TopicID, a.QuestionID,
			a.QuestionAsked, a.LearnerAnswer, a.CorrectAnswer, a.IsCorrect,
			a.PointsEarned, spent, a.AttemptNumber, a.CreatedAt,
		).
		Query()
	return s.exec(ctx, "append attempt", query, args)
}

// ListAttempts returns every attempt by the user, oldest first.
func (s *Store) ListAttempts(ctx context.Context, userID string) ([]knowledge.Attempt, error) {
	query, args := builder().Select(attemptColumns...).
		From(entsql.Table(attemptTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("sequence").
		Query()
	return s.queryAttempts(ctx, "list attempts", query, args)
}

// ListSessionAttempts returns the attempts recorded in one session, oldest first.
func (s *Store) ListSessionAttempts(ctx context.Context, sessionID string) ([]knowledge.Attempt, error) {
	query, args := builder().Select(attemptColumns...).
		From(entsql.Table(attemptTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()
	return s.queryAttempts(ctx, "list session attempts", query, args)
}

func (s *Store) queryAttempts(ctx context.Context, op, query string, args []any) ([]knowledge.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []knowledge.Attempt
	for rows.Next() {
		var (
			a     knowledge.Attempt
			spent sql.NullInt64
		)
		if err := rows.Scan(
			&a.Sequence, &a.SessionID, &a.UserID, &a.TopicID, &a.QuestionID,
			&a.QuestionAsked, &a.LearnerAnswer, &a.CorrectAnswer, &a.IsCorrect,
			&a.PointsEarned, &spent, &a.AttemptNumber, &a.CreatedAt,
		); err != nil {
			return nil, storageErr(op, err)
		}
		if spent.Valid {
			v := int(spent.Int64)
			a.TimeSpentSeconds = &v
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}
