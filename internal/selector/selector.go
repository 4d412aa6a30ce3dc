package selector

import (
	"context"
	"errors"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/logger"
)

// Selector tries strategies in order and falls back to the built-in
// question set when none can produce questions.
type Selector struct {
	strategies      []Strategy
	disableFallback bool
	log             *logger.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithoutFallback disables the built-in question set. Selection then fails
// with the last storage error, or a NotFoundError.
func WithoutFallback() Option {
	return func(s *Selector) { s.disableFallback = true }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Selector) { s.log = logger.OrNop(l) }
}

// New creates a Selector over the given strategies, tried in order.
func New(strategies []Strategy, opts ...Option) *Selector {
	s := &Selector{strategies: strategies, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefault creates the standard chain: priority-based, then topic-adaptive.
func NewDefault(src Source, m MasterySource, opts ...Option) *Selector {
	return New([]Strategy{
		NewPriorityStrategy(src),
		NewAdaptiveStrategy(src, m),
	}, opts...)
}

// Select returns the first strategy result with questions, or an
// all-mastered result. Storage errors move on to the next strategy; when
// every strategy fails the built-in set is returned unless disabled.
func (s *Selector) Select(ctx context.Context, req Request) (*Result, error) {
	var lastErr error
	for _, st := range s.strategies {
		res, err := st.Select(ctx, req)
		switch {
		case errors.Is(err, ErrNoCandidates):
			s.log.Debug("strategy has no candidates", "strategy", st.Name(), "organization_id", req.OrganizationID)
			continue
		case err != nil:
			if !knowledge.IsStorage(err) {
				return nil, err
			}
			s.log.Warn("strategy unavailable", "strategy", st.Name(), "error", err)
			lastErr = err
			continue
		}
		if res.Strategy == NameAllMastered || len(res.Questions) > 0 {
			return res, nil
		}
	}

	if s.disableFallback {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, &knowledge.NotFoundError{What: "questions for organization " + req.OrganizationID}
	}

	s.log.Info("using built-in question set", "organization_id", req.OrganizationID, "user_id", req.UserID)
	return Fallback(req.limit()), nil
}

// Fallback returns the built-in question set capped at limit.
func Fallback(limit int) *Result {
	qs := knowledge.FallbackQuestions()
	if limit > 0 && len(qs) > limit {
		qs = qs[:limit]
	}
	out := make([]knowledge.QuestionWithStatus, 0, len(qs))
	for _, q := range qs {
		out = append(out, knowledge.QuestionWithStatus{
			TopicQuestion: knowledge.TopicQuestion{Question: q, Topic: knowledge.FallbackTopic},
			Status:        knowledge.StatusUnanswered,
			MatchedBy:     knowledge.MatchNone,
		})
	}
	return &Result{
		Questions: out,
		Topics:    topicsOf(out),
		Strategy:  NameFallback,
	}
}
