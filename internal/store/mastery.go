package store

import (
	"context"
	"database/sql"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/assessor/internal/knowledge"
)

var masteryColumns = []string{
	"user_id", "topic_id", "mastery_level", "total_attempts",
	"correct_attempts", "last_attempt_at", "mastered_at",
}

// UpsertMasteryRecord inserts the record or overwrites the existing row for
// the same user and topic in a single statement.
func (s *Store) UpsertMasteryRecord(ctx context.Context, rec knowledge.MasteryRecord) error {
	query, args := builder().Insert(masteryTable).
		Columns(masteryColumns...).
		Values(
			rec.UserID, rec.TopicID, rec.MasteryLevel, rec.TotalAttempts,
			rec.CorrectAttempts, nullTime(rec.LastAttemptAt), nullTime(rec.MasteredAt),
		).
		OnConflict(
			entsql.ConflictColumns("user_id", "topic_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	return s.exec(ctx, "upsert mastery record", query, args)
}

// GetMasteryRecord returns the record for a user and topic, or nil when
// none exists.
func (s *Store) GetMasteryRecord(ctx context.Context, userID, topicID string) (*knowledge.MasteryRecord, error) {
	recs, err := s.queryMastery(ctx, "get mastery record", entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("topic_id", topicID),
	))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// ListMasteryRecords returns all of a user's records ordered by topic id.
func (s *Store) ListMasteryRecords(ctx context.Context, userID string) ([]knowledge.MasteryRecord, error) {
	return s.queryMastery(ctx, "list mastery records", entsql.EQ("user_id", userID))
}

func (s *Store) queryMastery(ctx context.Context, op string, where *entsql.Predicate) ([]knowledge.MasteryRecord, error) {
	query, args := builder().Select(masteryColumns...).
		From(entsql.Table(masteryTable)).
		Where(where).
		OrderBy("topic_id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []knowledge.MasteryRecord
	for rows.Next() {
		var (
			rec              knowledge.MasteryRecord
			last, masteredAt sql.NullTime
		)
		if err := rows.Scan(
			&rec.UserID, &rec.TopicID, &rec.MasteryLevel, &rec.TotalAttempts,
			&rec.CorrectAttempts, &last, &masteredAt,
		); err != nil {
			return nil, storageErr(op, err)
		}
		rec.LastAttemptAt = timePtr(last)
		rec.MasteredAt = timePtr(masteredAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}
