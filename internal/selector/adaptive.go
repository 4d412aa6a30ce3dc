package selector

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/mastery"
)

// AdaptiveStrategy picks the learner's weakest topics and draws questions
// from each, synthesizing one from a template when a topic has none.
type AdaptiveStrategy struct {
	Source  Source
	Mastery MasterySource
}

// NewAdaptiveStrategy creates the topic-adaptive strategy.
func NewAdaptiveStrategy(src Source, m MasterySource) *AdaptiveStrategy {
	return &AdaptiveStrategy{Source: src, Mastery: m}
}

func (s *AdaptiveStrategy) Name() Name { return NameAdaptive }

type topicPriority struct {
	topic    knowledge.Topic
	level    float64
	attempts int
}

// Select returns an all-mastered result when no topic needs practice and
// ErrNoCandidates when the organization has no active topics.
func (s *AdaptiveStrategy) Select(ctx context.Context, req Request) (*Result, error) {
	var (
		topics   []knowledge.Topic
		pool     []knowledge.TopicQuestion
		attempts []knowledge.Attempt
		progress map[string]*knowledge.MasteryRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ts, err := s.Source.ListActiveTopics(gctx, req.OrganizationID)
		if err != nil {
			return storageErr("list active topics", err)
		}
		topics = ts
		return nil
	})
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
	g.Go(func() error {
		p, err := s.Mastery.ProgressByTopic(gctx, req.UserID)
		if err != nil {
			return storageErr("list mastery records", err)
		}
		progress = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(topics) == 0 {
		return nil, ErrNoCandidates
	}

	weakest := s.weakestTopics(topics, progress)
	if len(weakest) == 0 {
		return &Result{Strategy: NameAllMastered}, nil
	}

	limit := req.limit()
	perTopic := (limit + len(weakest) - 1) / len(weakest)

	byTopic := groupByTopic(pool)
	known := make(map[string]bool, len(pool))
	for _, tq := range pool {
		known[tq.Question.ID] = true
	}
	idx := NewStatusIndex(attempts, known)

	var selected []knowledge.QuestionWithStatus
	for _, tp := range weakest {
		stored := byTopic[tp.topic.ID]
		if len(stored) == 0 {
			q := knowledge.SynthesizeQuestion(tp.topic)
			status, kind := idx.Status(q)
			selected = append(selected, knowledge.QuestionWithStatus{
				TopicQuestion: knowledge.TopicQuestion{Question: q, Topic: tp.topic},
				Status:        status,
				MatchedBy:     kind,
				Synthesized:   true,
			})
			continue
		}
		if len(stored) > perTopic {
			stored = stored[:perTopic]
		}
		selected = append(selected, idx.Annotate(stored)...)
	}

	if len(selected) > limit {
		selected = selected[:limit]
	}

	return &Result{
		Questions: selected,
		Topics:    topicsOf(selected),
		Strategy:  NameAdaptive,
	}, nil
}

// weakestTopics returns up to MaxAdaptiveTopics topics needing practice,
// least mastered, least attempted and easiest first.
func (s *AdaptiveStrategy) weakestTopics(topics []knowledge.Topic, progress map[string]*knowledge.MasteryRecord) []topicPriority {
	threshold := s.Mastery.Threshold()

	var needs []topicPriority
	for _, t := range topics {
		rec := progress[t.ID]
		if !mastery.NeedsPractice(rec, threshold) {
			continue
		}
		tp := topicPriority{topic: t}
		if rec != nil {
			tp.level = rec.MasteryLevel
			tp.attempts = rec.TotalAttempts
		}
		needs = append(needs, tp)
	}

	sort.SliceStable(needs, func(i, j int) bool {
		a, b := needs[i], needs[j]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.attempts != b.attempts {
			return a.attempts < b.attempts
		}
		if a.topic.DifficultyLevel != b.topic.DifficultyLevel {
			return a.topic.DifficultyLevel < b.topic.DifficultyLevel
		}
		if a.topic.Name != b.topic.Name {
			return a.topic.Name < b.topic.Name
		}
		return a.topic.ID < b.topic.ID
	})

	if len(needs) > MaxAdaptiveTopics {
		needs = needs[:MaxAdaptiveTopics]
	}
	return needs
}

// groupByTopic buckets questions by topic id, easiest first within a topic.
func groupByTopic(pool []knowledge.TopicQuestion) map[string][]knowledge.TopicQuestion {
	out := make(map[string][]knowledge.TopicQuestion)
	for _, tq := range pool {
		out[tq.Question.TopicID] = append(out[tq.Question.TopicID], tq)
	}
	for _, qs := range out {
		sort.SliceStable(qs, func(i, j int) bool {
			if qs[i].Question.DifficultyLevel != qs[j].Question.DifficultyLevel {
				return qs[i].Question.DifficultyLevel < qs[j].Question.DifficultyLevel
			}
			return qs[i].Question.ID < qs[j].Question.ID
		})
	}
	return out
}
