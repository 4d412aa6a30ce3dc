package selector

import (
	"context"
	"errors"

	"github.com/abhisek/assessor/internal/knowledge"
)

// Name tags which selection path produced a result.
type Name string

const (
	NamePriority    Name = "priority_based"
	NameAdaptive    Name = "adaptive_priority"
	NameAllMastered Name = "all_mastered"
	NameFallback    Name = "fallback"
)

// DefaultMaxQuestions is used when a request does not set a cap.
const DefaultMaxQuestions = 5

// MaxAdaptiveTopics is the number of weakest topics the adaptive strategy draws from.
const MaxAdaptiveTopics = 3

// ErrNoCandidates is returned by a strategy that has nothing to offer for
// the request, signalling the caller to try the next strategy.
var ErrNoCandidates = errors.New("selector: no candidate questions")

// Request describes who is practicing and how many questions they want.
type Request struct {
	OrganizationID string
	UserID         string
	MaxQuestions   int
}

func (r Request) limit() int {
	if r.MaxQuestions <= 0 {
		return DefaultMaxQuestions
	}
	return r.MaxQuestions
}

// Result is the shared output shape of every strategy.
type Result struct {
	Questions []knowledge.QuestionWithStatus
	Topics    []knowledge.Topic
	Strategy  Name
}

// Strategy produces an ordered question set for a request.
type Strategy interface {
	Name() Name
	Select(ctx context.Context, req Request) (*Result, error)
}

// Source is the read side of the Topic/Question Store.
type Source interface {
	ListActiveQuestions(ctx context.Context, organizationID string) ([]knowledge.TopicQuestion, error)
	ListActiveTopics(ctx context.Context, organizationID string) ([]knowledge.Topic, error)
	ListAttempts(ctx context.Context, userID string) ([]knowledge.Attempt, error)
}

// MasterySource exposes current mastery for the adaptive strategy.
type MasterySource interface {
	ProgressByTopic(ctx context.Context, userID string) (map[string]*knowledge.MasteryRecord, error)
	Threshold() float64
}

// topicsOf returns the distinct topics of qs in order of first appearance.
func topicsOf(qs []knowledge.QuestionWithStatus) []knowledge.Topic {
	var topics []knowledge.Topic
	seen := make(map[string]bool)
	for _, q := range qs {
		if !seen[q.Topic.ID] {
			seen[q.Topic.ID] = true
			topics = append(topics, q.Topic)
		}
	}
	return topics
}

func storageErr(op string, err error) error {
	if knowledge.IsStorage(err) {
		return err
	}
	return &knowledge.StorageError{Op: op, Err: err}
}
