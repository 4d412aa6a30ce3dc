package selector

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/assessor/internal/knowledge"
)

// PriorityStrategy orders every active question by the learner's answer
// status, then difficulty, then topic name.
type PriorityStrategy struct {
	Source Source
}

// NewPriorityStrategy creates a priority-based strategy.
func NewPriorityStrategy(src Source) *PriorityStrategy {
	return &PriorityStrategy{Source: src}
}

func (s *PriorityStrategy) Name() Name { return NamePriority }

// Select returns ErrNoCandidates when the organization has no active questions.
func (s *PriorityStrategy) Select(ctx context.Context, req Request) (*Result, error) {
	var (
		pool     []knowledge.TopicQuestion
		attempts []knowledge.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qs, err := s.Source.ListActiveQuestions(gctx, req.OrganizationID)
		if err != nil {
			return storageErr("list active questions", err)
		}
		pool = qs
		return nil
	})
	g.Go(func() error {
		as, err := s.Source.ListAttempts(gctx, req.UserID)
		if err != nil {
			return storageErr("list attempts", err)
		}
		attempts = as
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(pool) == 0 {
		return nil, ErrNoCandidates
	}

	known := make(map[string]bool, len(pool))
	for _, tq := range pool {
		known[tq.Question.ID] = true
	}
	annotated := NewStatusIndex(attempts, known).Annotate(pool)
	SortByPriority(annotated)

	if limit := req.limit(); len(annotated) > limit {
		annotated = annotated[:limit]
	}

	return &Result{
		Questions: annotated,
		Topics:    topicsOf(annotated),
		Strategy:  NamePriority,
	}, nil
}

// SortByPriority sorts ascending by (status rank, difficulty, topic name).
// Topic id and question id break remaining ties so the order is total.
func SortByPriority(qs []knowledge.QuestionWithStatus) {
	sort.SliceStable(qs, func(i, j int) bool {
		a, b := qs[i], qs[j]
		if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
			return ra < rb
		}
		if a.Question.DifficultyLevel != b.Question.DifficultyLevel {
			return a.Question.DifficultyLevel < b.Question.DifficultyLevel
		}
		if a.Topic.Name != b.Topic.Name {
			return a.Topic.Name < b.Topic.Name
		}
		if a.Topic.ID != b.Topic.ID {
			return a.Topic.ID < b.Topic.ID
		}
		return a.Question.ID < b.Question.ID
	})
}
