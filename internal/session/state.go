package session

import (
	"context"
	"sync"
	"time"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/selector"
)

// State is the lifecycle state of a session.
type State int

const (
	StateUninitialized State = iota // Created, no questions selected
	StateInitialized                // Questions selected and presented
	StateActive                     // Persisted and accepting answers
	StateEnded                      // Summary produced; terminal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// QuestionSelector picks the questions for a session.
type QuestionSelector interface {
	Select(ctx context.Context, req selector.Request) (*selector.Result, error)
}

// MasteryRecorder folds an attempt into the learner's mastery record.
type MasteryRecorder interface {
	RecordAttempt(ctx context.Context, attempt knowledge.Attempt) *knowledge.MasteryRecord
}

// Grader decides whether a response answers a question correctly.
type Grader interface {
	Evaluate(response string, q knowledge.Question) bool
}

// AttemptStore persists answered questions.
type AttemptStore interface {
	AppendAttempt(ctx context.Context, a knowledge.Attempt) error
}

// SessionStore persists session metadata and summaries.
type SessionStore interface {
	CreateSession(ctx context.Context, meta knowledge.SessionMeta) (string, error)
	UpdateSession(ctx context.Context, id string, summary knowledge.SessionSummary) error
}

// Transport presents questions to the learner and receives the session's
// progress and summary.
type Transport interface {
	Present(ctx context.Context, in Instructions) error
	Progress(ctx context.Context, ev ProgressEvent) error
	Complete(ctx context.Context, summary knowledge.SessionSummary) error
}

// Deps are the collaborators of an Orchestrator. Attempts, Sessions and
// Transport are optional.
type Deps struct {
	Selector  QuestionSelector
	Mastery   MasteryRecorder
	Grader    Grader
	Attempts  AttemptStore
	Sessions  SessionStore
	Transport Transport
	Logger    *logger.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Orchestrator runs one assessment session through its lifecycle. All
// operations are serialized; a session never processes two turns at once.
type Orchestrator struct {
	mu sync.Mutex

	req   selector.Request
	deps  Deps
	log   *logger.Logger
	state State

	progress     Progress
	instructions Instructions
	strategy     selector.Name
	topics       []knowledge.Topic
	startedAt    time.Time

	// answeredAt[i] is the question index of progress.QuestionsAnswered[i].
	answeredAt []int

	summary *knowledge.SessionSummary
}
