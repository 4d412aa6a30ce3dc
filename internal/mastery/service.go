package mastery

import (
	"context"
	"time"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/logger"
)

// Repo is the persistence the tracker needs.
type Repo interface {
	// GetMasteryRecord returns nil, nil when no record exists.
	GetMasteryRecord(ctx context.Context, userID, topicID string) (*knowledge.MasteryRecord, error)
	ListMasteryRecords(ctx context.Context, userID string) ([]knowledge.MasteryRecord, error)
	UpsertMasteryRecord(ctx context.Context, rec knowledge.MasteryRecord) error
}

// Service tracks per-learner, per-topic mastery.
type Service struct {
	repo      Repo
	threshold float64
	log       *logger.Logger
	locks     *keyedMutex

	// Now is the clock; tests may replace it.
	Now func() time.Time
}

// NewService creates a mastery service. A threshold outside (0, 1] selects
// DefaultThreshold.
func NewService(repo Repo, threshold float64, log *logger.Logger) *Service {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Service{
		repo:      repo,
		threshold: threshold,
		log:       logger.OrNop(log),
		locks:     newKeyedMutex(),
		Now:       time.Now,
	}
}

// Threshold returns the mastery threshold in use.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// GetProgress returns every mastery record for a learner.
func (s *Service) GetProgress(ctx context.Context, userID string) ([]knowledge.MasteryRecord, error) {
	recs, err := s.repo.ListMasteryRecords(ctx, userID)
	if err != nil {
		return nil, &knowledge.StorageError{Op: "list mastery records", Err: err}
	}
	return recs, nil
}

// ProgressByTopic indexes a learner's records by topic id.
func (s *Service) ProgressByTopic(ctx context.Context, userID string) (map[string]*knowledge.MasteryRecord, error) {
	recs, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*knowledge.MasteryRecord, len(recs))
	for i := range recs {
		out[recs[i].TopicID] = &recs[i]
	}
	return out, nil
}

// RecordAttempt folds an attempt into the matching mastery record, creating
// it on first attempt, and persists the result.
//
// Storage failures are logged and swallowed. The returned record is the
// updated state, or nil when the existing record could not be read.
func (s *Service) RecordAttempt(ctx context.Context, attempt knowledge.Attempt) *knowledge.MasteryRecord {
	log := s.log.With("user_id", attempt.UserID, "topic_id", attempt.TopicID)

	unlock := s.locks.Lock(attempt.UserID + "\x00" + attempt.TopicID)
	defer unlock()

	rec, err := s.repo.GetMasteryRecord(ctx, attempt.UserID, attempt.TopicID)
	if err != nil {
		log.Error("read mastery record failed, attempt not applied", "error", err)
		return nil
	}
	if rec == nil {
		rec = &knowledge.MasteryRecord{
			UserID:  attempt.UserID,
			TopicID: attempt.TopicID,
		}
	}

	tr := Transition{TopicID: rec.TopicID, From: StateOf(rec, s.threshold)}
	if Apply(rec, attempt.IsCorrect, s.Now(), s.threshold) {
		log.Info("topic mastered", "mastery_level", rec.MasteryLevel, "attempts", rec.TotalAttempts)
	}
	tr.To = StateOf(rec, s.threshold)
	if tr.Changed() {
		log.Debug("mastery state changed", "from", string(tr.From), "to", string(tr.To))
	}

	if err := s.repo.UpsertMasteryRecord(ctx, *rec); err != nil {
		log.Warn("persist mastery record failed", "error", err)
	}
	return rec
}
