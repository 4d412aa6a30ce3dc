package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/assessor/internal/knowledge"
)

var sessionColumns = []string{
	"id", "user_id", "organization_id", "strategy", "meta", "summary",
	"started_at", "ended_at",
}

// CreateSession stores the session metadata and returns a new session id.
func (s *Store) CreateSession(ctx context.Context, meta knowledge.SessionMeta) (string, error) {
	if meta.StartedAt.IsZero() {
		meta.StartedAt = time.Now().UTC()
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", storageErr("create session", fmt.Errorf("marshal meta: %w", err))
	}

	id := uuid.New().String()
	query, args := builder().Insert(sessionTable).
		Columns("id", "user_id", "organization_id", "strategy", "meta", "started_at").
		Values(id, meta.UserID, meta.OrganizationID, meta.Strategy, string(data), meta.StartedAt).
		Query()
	if err := s.exec(ctx, "create session", query, args); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateSession attaches the final summary to a session.
func (s *Store) UpdateSession(ctx context.Context, id string, summary knowledge.SessionSummary) error {
	if summary.EndedAt.IsZero() {
		summary.EndedAt = time.Now().UTC()
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return storageErr("update session", fmt.Errorf("marshal summary: %w", err))
	}

	query, args := builder().Update(sessionTable).
		Set("summary", string(data)).
		Set("ended_at", summary.EndedAt).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr("update session", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &knowledge.NotFoundError{What: "session " + id}
	}
	return nil
}

// GetSession returns a stored session, or a NotFoundError.
func (s *Store) GetSession(ctx context.Context, id string) (*knowledge.SessionRecord, error) {
	recs, err := s.querySessions(ctx, "get session", entsql.EQ("id", id), 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &knowledge.NotFoundError{What: "session " + id}
	}
	return &recs[0], nil
}

// ListSessions returns a user's most recent sessions first. A limit of zero
// returns all of them.
func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]knowledge.SessionRecord, error) {
	return s.querySessions(ctx, "list sessions", entsql.EQ("user_id", userID), limit)
}

func (s *Store) querySessions(ctx context.Context, op string, where *entsql.Predicate, limit int) ([]knowledge.SessionRecord, error) {
	sel := builder().Select(sessionColumns...).
		From(entsql.Table(sessionTable)).
		Where(where).
		OrderBy(entsql.Desc("started_at"), "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []knowledge.SessionRecord
	for rows.Next() {
		var (
			rec                     knowledge.SessionRecord
			userID, orgID, strategy string
			meta                    []byte
			summary                 []byte
			startedAt               time.Time
			endedAt                 sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &userID, &orgID, &strategy, &meta, &summary, &startedAt, &endedAt); err != nil {
			return nil, storageErr(op, err)
		}
		if err := json.Unmarshal(meta, &rec.Meta); err != nil {
			return nil, storageErr(op, fmt.Errorf("decode meta for %s: %w", rec.ID, err))
		}
		if len(summary) > 0 {
			rec.Summary = &knowledge.SessionSummary{}
			if err := json.Unmarshal(summary, rec.Summary); err != nil {
				return nil, storageErr(op, fmt.Errorf("decode summary for %s: %w", rec.ID, err))
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
