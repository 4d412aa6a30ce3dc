package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/selector"
)

// New creates an Orchestrator for one learner in one organization.
func New(req selector.Request, deps Deps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := logger.OrNop(deps.Logger).With("user_id", req.UserID, "organization_id", req.OrganizationID)
	return &Orchestrator{req: req, deps: deps, log: log}
}

// Initialize selects the session's questions and presents them to the
// transport. Selection read failures propagate.
func (o *Orchestrator) Initialize(ctx context.Context) (Instructions, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateUninitialized {
		return Instructions{}, o.invalid("initialize")
	}

	res, err := o.deps.Selector.Select(ctx, o.req)
	if err != nil {
		return Instructions{}, fmt.Errorf("select questions: %w", err)
	}

	qs := make([]PendingQuestion, 0, len(res.Questions))
	for _, q := range res.Questions {
		qs = append(qs, PendingQuestion{QuestionWithStatus: q})
	}
	o.progress = Progress{
		Questions:      qs,
		TotalQuestions: len(qs),
	}
	o.strategy = res.Strategy
	o.topics = res.Topics
	o.instructions = BuildInstructions(string(res.Strategy), qs)

	if o.deps.Transport != nil {
		if err := o.deps.Transport.Present(ctx, o.instructions); err != nil {
			return Instructions{}, fmt.Errorf("present instructions: %w", err)
		}
	}

	o.state = StateInitialized
	o.log.Info("session initialized",
		"strategy", string(res.Strategy),
		"questions", len(qs),
		"topics", len(res.Topics),
	)
	return o.instructions, nil
}

// Start persists the session and begins accepting answers. It returns the
// session id. When the session store is unavailable a local id is used and
// the session continues.
func (o *Orchestrator) Start(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateInitialized {
		return "", o.invalid("start")
	}

	o.startedAt = o.deps.Now().UTC()
	topicIDs := make([]string, 0, len(o.topics))
	for _, t := range o.topics {
		topicIDs = append(topicIDs, t.ID)
	}
	meta := knowledge.SessionMeta{
		UserID:         o.req.UserID,
		OrganizationID: o.req.OrganizationID,
		Strategy:       string(o.strategy),
		TopicIDs:       topicIDs,
		TotalQuestions: o.progress.TotalQuestions,
		StartedAt:      o.startedAt,
	}

	var id string
	if o.deps.Sessions != nil {
		created, err := o.deps.Sessions.CreateSession(ctx, meta)
		if err != nil {
			o.log.Warn("failed to persist session start", "error", err)
		} else {
			id = created
		}
	}
	if id == "" {
		id = uuid.New().String()
	}

	o.progress.SessionID = id
	for i := range o.progress.Questions {
		o.progress.Questions[i].SessionID = id
	}
	o.log = o.log.With("session_id", id)
	o.state = StateActive
	o.log.Info("session started", "questions", o.progress.TotalQuestions)
	return id, nil
}

// RecordQuestionAttempt grades the response to the question at index and
// records it. An index outside the session is logged and ignored, returning
// a nil event. timeSpent may be nil.
func (o *Orchestrator) RecordQuestionAttempt(ctx context.Context, index int, response string, timeSpent *int) (*ProgressEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateActive {
		return nil, o.invalid("record attempt")
	}
	if index < 0 || index >= len(o.progress.Questions) {
		o.log.Warn("ignoring attempt outside session bounds",
			"question_index", index,
			"total_questions", len(o.progress.Questions),
		)
		return nil, nil
	}

	pq := o.progress.Questions[index]
	q := pq.Question
	correct := o.deps.Grader.Evaluate(response, q)
	points := 0
	if correct {
		points = q.Points
	}

	attempt := knowledge.Attempt{
		SessionID:        o.progress.SessionID,
		UserID:           o.req.UserID,
		TopicID:          pq.Topic.ID,
		QuestionID:       q.ID,
		QuestionAsked:    q.QuestionTemplate,
		LearnerAnswer:    response,
		CorrectAnswer:    q.CorrectAnswer,
		IsCorrect:        correct,
		PointsEarned:     points,
		TimeSpentSeconds: timeSpent,
		AttemptNumber:    o.progress.attemptNumber(q.ID),
		CreatedAt:        o.deps.Now().UTC(),
	}

	o.progress.QuestionsAnswered = append(o.progress.QuestionsAnswered, attempt)
	o.answeredAt = append(o.answeredAt, index)
	o.progress.SessionScore += points
	o.progress.recordTurn(pq, correct)
	if index+1 > o.progress.CurrentQuestionIndex {
		o.progress.CurrentQuestionIndex = index + 1
	}

	if o.deps.Attempts != nil {
		if err := o.deps.Attempts.AppendAttempt(ctx, attempt); err != nil {
			o.log.Warn("failed to persist attempt",
				"topic_id", attempt.TopicID,
				"question_id", attempt.QuestionID,
				"error", err,
			)
		}
	}
	if o.deps.Mastery != nil {
		o.deps.Mastery.RecordAttempt(ctx, attempt)
	}

	ev := ProgressEvent{
		SessionID:        o.progress.SessionID,
		QuestionIndex:    index,
		IsCorrect:        correct,
		PointsEarned:     points,
		CurrentScore:     o.progress.SessionScore,
		FractionComplete: o.progress.FractionComplete(),
	}
	if o.deps.Transport != nil {
		if err := o.deps.Transport.Progress(ctx, ev); err != nil {
			o.log.Warn("failed to deliver progress", "error", err)
		}
	}

	o.log.Debug("attempt recorded",
		"question_index", index,
		"question_id", q.ID,
		"correct", correct,
		"score", o.progress.SessionScore,
	)
	return &ev, nil
}

// End computes and persists the session summary. A session can end only
// once, and only after it has started.
func (o *Orchestrator) End(ctx context.Context) (*knowledge.SessionSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateActive {
		return nil, o.invalid("end")
	}

	summary := BuildSummary(&o.progress, o.answeredAt, o.deps.Now().UTC())

	if o.deps.Sessions != nil {
		if err := o.deps.Sessions.UpdateSession(ctx, o.progress.SessionID, summary); err != nil {
			o.log.Warn("failed to persist session summary", "error", err)
		}
	}
	if o.deps.Transport != nil {
		if err := o.deps.Transport.Complete(ctx, summary); err != nil {
			o.log.Warn("failed to deliver summary", "error", err)
		}
	}

	o.state = StateEnded
	o.summary = &summary
	o.log.Info("session ended",
		"score", summary.Score,
		"correct", summary.CorrectAnswers,
		"total", summary.TotalQuestions,
		"accuracy", summary.Accuracy,
	)
	return &summary, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress returns a copy of the session progress.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress.clone()
}

// Instructions returns the payload built at initialization.
func (o *Orchestrator) Instructions() Instructions {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.instructions
}

// Strategy returns the selection strategy that produced the questions.
func (o *Orchestrator) Strategy() selector.Name {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.strategy
}

// Summary returns the summary of an ended session, or nil.
func (o *Orchestrator) Summary() *knowledge.SessionSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summary
}

func (o *Orchestrator) invalid(op string) error {
	return &knowledge.InvalidStateError{Op: op, State: o.state.String()}
}
