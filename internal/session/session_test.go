package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/assessor/internal/evaluator"
	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/mastery"
	"github.com/abhisek/assessor/internal/selector"
	"github.com/abhisek/assessor/internal/store"
)

type fakeSelector struct {
	res *selector.Result
	err error
}

func (f *fakeSelector) Select(_ context.Context, req selector.Request) (*selector.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeMastery struct {
	mu       sync.Mutex
	attempts []knowledge.Attempt
}

func (f *fakeMastery) RecordAttempt(_ context.Context, a knowledge.Attempt) *knowledge.MasteryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, a)
	return nil
}

type fakeAttempts struct {
	mu   sync.Mutex
	got  []knowledge.Attempt
	fail bool
}

func (f *fakeAttempts) AppendAttempt(_ context.Context, a knowledge.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return &knowledge.StorageError{Op: "append attempt", Err: errors.New("disk full")}
	}
	f.got = append(f.got, a)
	return nil
}

type fakeSessions struct {
	createErr error
	updateErr error
	meta      *knowledge.SessionMeta
	updatedID string
	summary   *knowledge.SessionSummary
}

func (f *fakeSessions) CreateSession(_ context.Context, meta knowledge.SessionMeta) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.meta = &meta
	return "sess-1", nil
}

func (f *fakeSessions) UpdateSession(_ context.Context, id string, s knowledge.SessionSummary) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedID = id
	f.summary = &s
	return nil
}

type fakeTransport struct {
	mu           sync.Mutex
	instructions []Instructions
	events       []ProgressEvent
	summaries    []knowledge.SessionSummary
	presentErr   error
}

func (f *fakeTransport) Present(_ context.Context, in Instructions) error {
	if f.presentErr != nil {
		return f.presentErr
	}
	f.instructions = append(f.instructions, in)
	return nil
}

func (f *fakeTransport) Progress(_ context.Context, ev ProgressEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTransport) Complete(_ context.Context, s knowledge.SessionSummary) error {
	f.summaries = append(f.summaries, s)
	return nil
}

func question(id, topicID, topicName string, qt knowledge.QuestionType, answer string, points int) knowledge.QuestionWithStatus {
	return knowledge.QuestionWithStatus{
		TopicQuestion: knowledge.TopicQuestion{
			Question: knowledge.Question{
				ID:               id,
				TopicID:          topicID,
				QuestionTemplate: "Question " + id + "?",
				QuestionType:     qt,
				CorrectAnswer:    answer,
				DifficultyLevel:  1,
				Points:           points,
				IsActive:         true,
			},
			Topic: knowledge.Topic{ID: topicID, Name: topicName, DifficultyLevel: 1, IsActive: true},
		},
		Status: knowledge.StatusUnanswered,
	}
}

func fiveQuestions() *selector.Result {
	qs := []knowledge.QuestionWithStatus{
		question("q1", "t1", "Drinks", knowledge.TypeTrueFalse, "true", 10),
		question("q2", "t1", "Drinks", knowledge.TypeTrueFalse, "false", 10),
		question("q3", "t2", "Closing", knowledge.TypeOpenEnded, "wipe counter, sanitize, restock", 20),
		question("q4", "t2", "Closing", knowledge.TypeTrueFalse, "yes", 5),
		question("q5", "t3", "Policies", knowledge.TypeTrueFalse, "true", 5),
	}
	qs[0].Question.AnswerOptions = nil
	return &selector.Result{
		Questions: qs,
		Topics: []knowledge.Topic{
			qs[0].Topic, qs[2].Topic, qs[4].Topic,
		},
		Strategy: selector.NamePriority,
	}
}

type harness struct {
	o         *Orchestrator
	mastery   *fakeMastery
	attempts  *fakeAttempts
	sessions  *fakeSessions
	transport *fakeTransport
}

func newHarness(res *selector.Result) *harness {
	h := &harness{
		mastery:   &fakeMastery{},
		attempts:  &fakeAttempts{},
		sessions:  &fakeSessions{},
		transport: &fakeTransport{},
	}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h.o = New(selector.Request{OrganizationID: "org", UserID: "u1", MaxQuestions: 5}, Deps{
		Selector:  &fakeSelector{res: res},
		Mastery:   h.mastery,
		Grader:    evaluator.New(evaluator.DefaultKeywordThreshold),
		Attempts:  h.attempts,
		Sessions:  h.sessions,
		Transport: h.transport,
		Now:       func() time.Time { return now },
	})
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := h.o.Initialize(ctx)
	require.NoError(t, err)
	_, err = h.o.Start(ctx)
	require.NoError(t, err)
}

func TestLifecycle_HappyPath(t *testing.T) {
	h := newHarness(fiveQuestions())
	ctx := context.Background()
	assert.Equal(t, StateUninitialized, h.o.State())

	in, err := h.o.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateInitialized, h.o.State())
	require.Len(t, in.Items, 5)
	require.Len(t, h.transport.instructions, 1)

	id, err := h.o.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)
	assert.Equal(t, StateActive, h.o.State())
	require.NotNil(t, h.sessions.meta)
	assert.Equal(t, []string{"t1", "t2", "t3"}, h.sessions.meta.TopicIDs)
	assert.Equal(t, 5, h.sessions.meta.TotalQuestions)
	assert.Equal(t, "priority_based", h.sessions.meta.Strategy)

	for _, pq := range h.o.Progress().Questions {
		assert.Equal(t, "sess-1", pq.SessionID)
	}

	ev, err := h.o.RecordQuestionAttempt(ctx, 0, "True", nil)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.True(t, ev.IsCorrect)
	assert.Equal(t, 10, ev.PointsEarned)
	assert.Equal(t, 10, ev.CurrentScore)
	assert.InDelta(t, 0.2, ev.FractionComplete, 1e-9)

	ev, err = h.o.RecordQuestionAttempt(ctx, 1, "true", nil)
	require.NoError(t, err)
	assert.False(t, ev.IsCorrect)
	assert.Equal(t, 0, ev.PointsEarned)
	assert.Equal(t, 10, ev.CurrentScore)

	p := h.o.Progress()
	require.NotNil(t, p.CurrentTopic)
	assert.Equal(t, "t1", p.CurrentTopic.ID)
	require.Len(t, p.QuestionsAsked, 2)
	assert.Equal(t, "q1", p.QuestionsAsked[0].ID)
	assert.Equal(t, "q2", p.QuestionsAsked[1].ID)
	assert.Equal(t, []string{"Drinks"}, p.ImprovementAreas)

	p.ImprovementAreas[0] = "mutated"
	p.CurrentTopic.Name = "mutated"
	assert.Equal(t, []string{"Drinks"}, h.o.Progress().ImprovementAreas)
	assert.Equal(t, "Drinks", h.o.Progress().CurrentTopic.Name)

	summary, err := h.o.End(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateEnded, h.o.State())
	assert.Equal(t, 10, summary.Score)
	assert.Equal(t, 50, summary.MaxScore)
	assert.Equal(t, 1, summary.CorrectAnswers)
	assert.Equal(t, 5, summary.TotalQuestions)
	assert.InDelta(t, 0.2, summary.Accuracy, 1e-9)
	assert.Equal(t, []string{"Drinks", "Closing", "Policies"}, summary.TopicsCovered)
	assert.Equal(t, []string{"Drinks"}, summary.ImprovementAreas)
	require.Len(t, summary.Transcript, 2)
	assert.Equal(t, 1, summary.Transcript[1].QuestionIndex)

	assert.Equal(t, "sess-1", h.sessions.updatedID)
	require.Len(t, h.transport.summaries, 1)
	assert.Len(t, h.transport.events, 2)
	assert.Len(t, h.attempts.got, 2)
	assert.Len(t, h.mastery.attempts, 2)
	assert.Equal(t, summary, h.o.Summary())
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("end before start", func(t *testing.T) {
		h := newHarness(fiveQuestions())
		_, err := h.o.End(ctx)
		assert.True(t, knowledge.IsInvalidState(err))

		_, err = h.o.Initialize(ctx)
		require.NoError(t, err)
		_, err = h.o.End(ctx)
		assert.True(t, knowledge.IsInvalidState(err))
	})

	t.Run("end twice", func(t *testing.T) {
		h := newHarness(fiveQuestions())
		h.start(t)
		_, err := h.o.End(ctx)
		require.NoError(t, err)
		_, err = h.o.End(ctx)
		require.Error(t, err)
		assert.True(t, knowledge.IsInvalidState(err))
		assert.Contains(t, err.Error(), "ended")
	})

	t.Run("start before initialize", func(t *testing.T) {
		h := newHarness(fiveQuestions())
		_, err := h.o.Start(ctx)
		assert.True(t, knowledge.IsInvalidState(err))
	})

	t.Run("initialize twice", func(t *testing.T) {
		h := newHarness(fiveQuestions())
		_, err := h.o.Initialize(ctx)
		require.NoError(t, err)
		_, err = h.o.Initialize(ctx)
		assert.True(t, knowledge.IsInvalidState(err))
	})

	t.Run("answer before start", func(t *testing.T) {
		h := newHarness(fiveQuestions())
		_, err := h.o.Initialize(ctx)
		require.NoError(t, err)
		_, err = h.o.RecordQuestionAttempt(ctx, 0, "true", nil)
		assert.True(t, knowledge.IsInvalidState(err))
	})

	t.Run("answer after end", func(t *testing.T) {
		h := newHarness(fiveQuestions())
		h.start(t)
		_, err := h.o.End(ctx)
		require.NoError(t, err)
		_, err = h.o.RecordQuestionAttempt(ctx, 0, "true", nil)
		assert.True(t, knowledge.IsInvalidState(err))
	})
}

func TestRecordQuestionAttempt_OutOfRangeIsNoop(t *testing.T) {
	h := newHarness(fiveQuestions())
	h.start(t)
	ctx := context.Background()

	for _, idx := range []int{10, 5, -1} {
		ev, err := h.o.RecordQuestionAttempt(ctx, idx, "true", nil)
		require.NoError(t, err)
		assert.Nil(t, ev)
	}

	p := h.o.Progress()
	assert.Equal(t, 0, p.SessionScore)
	assert.Equal(t, 0, p.CurrentQuestionIndex)
	assert.Empty(t, p.QuestionsAnswered)
	assert.Empty(t, h.transport.events)
	assert.Empty(t, h.attempts.got)
}

func TestRecordQuestionAttempt_AttemptFields(t *testing.T) {
	h := newHarness(fiveQuestions())
	h.start(t)
	ctx := context.Background()

	spent := 42
	_, err := h.o.RecordQuestionAttempt(ctx, 2, "I wiped the counter and restocked", &spent)
	require.NoError(t, err)
	_, err = h.o.RecordQuestionAttempt(ctx, 2, "did some cleaning", nil)
	require.NoError(t, err)

	require.Len(t, h.attempts.got, 2)
	first := h.attempts.got[0]
	assert.Equal(t, "sess-1", first.SessionID)
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, "t2", first.TopicID)
	assert.Equal(t, "q3", first.QuestionID)
	assert.Equal(t, "Question q3?", first.QuestionAsked)
	assert.Equal(t, "wipe counter, sanitize, restock", first.CorrectAnswer)
	assert.True(t, first.IsCorrect)
	assert.Equal(t, 20, first.PointsEarned)
	require.NotNil(t, first.TimeSpentSeconds)
	assert.Equal(t, 42, *first.TimeSpentSeconds)
	assert.Equal(t, 1, first.AttemptNumber)

	second := h.attempts.got[1]
	assert.False(t, second.IsCorrect)
	assert.Equal(t, 2, second.AttemptNumber)

	p := h.o.Progress()
	assert.Equal(t, 3, p.CurrentQuestionIndex)
	assert.Equal(t, 20, p.SessionScore)
}

func TestWriteFailuresAreSwallowed(t *testing.T) {
	h := newHarness(fiveQuestions())
	h.attempts.fail = true
	h.sessions.createErr = &knowledge.StorageError{Op: "create session", Err: errors.New("read-only")}
	h.sessions.updateErr = &knowledge.StorageError{Op: "update session", Err: errors.New("read-only")}
	ctx := context.Background()

	_, err := h.o.Initialize(ctx)
	require.NoError(t, err)
	id, err := h.o.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "sess-1", id)

	ev, err := h.o.RecordQuestionAttempt(ctx, 0, "yes", nil)
	require.NoError(t, err)
	assert.True(t, ev.IsCorrect)
	assert.Equal(t, id, ev.SessionID)

	summary, err := h.o.End(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Score)
	assert.Equal(t, id, summary.SessionID)
}

func TestInitialize_SelectionErrorPropagates(t *testing.T) {
	storageErr := &knowledge.StorageError{Op: "list active questions", Err: errors.New("connection refused")}
	o := New(selector.Request{OrganizationID: "org", UserID: "u1"}, Deps{
		Selector: &fakeSelector{err: storageErr},
		Grader:   evaluator.New(0),
	})

	_, err := o.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, knowledge.IsStorage(err))
	assert.Equal(t, StateUninitialized, o.State())
}

func TestInitialize_PresentErrorPropagates(t *testing.T) {
	h := newHarness(fiveQuestions())
	h.transport.presentErr = errors.New("closed pipe")

	_, err := h.o.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateUninitialized, h.o.State())
}

func TestInstructions_PreserveOrderAndText(t *testing.T) {
	res := fiveQuestions()
	res.Questions[2].Question.AnswerOptions = []string{"a", "b"}
	res.Questions[2].Question.QuestionType = knowledge.TypeMultipleChoice
	res.Questions[2].Question.Explanation = "Closing keeps the counter clean."
	h := newHarness(res)

	in, err := h.o.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "priority_based", in.Strategy)
	for i, it := range in.Items {
		assert.Equal(t, i, it.Index)
		assert.Equal(t, res.Questions[i].Question.ID, it.QuestionID)
		assert.Equal(t, res.Questions[i].Question.QuestionTemplate, it.Text)
		assert.Equal(t, res.Questions[i].Question.CorrectAnswer, it.ExpectedAnswer)
		assert.Equal(t, res.Questions[i].Question.Points, it.Points)
	}
	assert.Equal(t, []string{"a", "b"}, in.Items[2].Options)
	assert.Nil(t, in.Items[0].Options)

	text := in.Render()
	assert.True(t, strings.HasPrefix(text, "Ask the following 5 question(s) in order"))
	for i, it := range in.Items {
		assert.Contains(t, text, fmt.Sprintf("%d. %s\n", i+1, it.Text))
	}
	assert.Contains(t, text, "Options: a | b")
	assert.Contains(t, text, "Explanation: Closing keeps the counter clean.")
	assert.Less(t, strings.Index(text, "1. Question q1?"), strings.Index(text, "2. Question q2?"))

	assert.Equal(t, "No questions to ask.\n", Instructions{}.Render())
}

func TestAllMasteredSession(t *testing.T) {
	h := newHarness(&selector.Result{Strategy: selector.NameAllMastered})
	h.start(t)

	assert.Equal(t, selector.NameAllMastered, h.o.Strategy())
	assert.Empty(t, h.o.Instructions().Items)

	ev, err := h.o.RecordQuestionAttempt(context.Background(), 0, "true", nil)
	require.NoError(t, err)
	assert.Nil(t, ev)

	summary, err := h.o.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalQuestions)
	assert.Equal(t, 0.0, summary.Accuracy)
	assert.Empty(t, summary.ImprovementAreas)
}

func TestConcurrentTurnsAreSerialized(t *testing.T) {
	h := newHarness(fiveQuestions())
	h.start(t)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.o.RecordQuestionAttempt(ctx, i%5, "true", nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	p := h.o.Progress()
	require.Len(t, p.QuestionsAnswered, n)
	score := 0
	for _, a := range p.QuestionsAnswered {
		score += a.PointsEarned
	}
	assert.Equal(t, score, p.SessionScore)

	counts := make(map[string][]int)
	for _, a := range p.QuestionsAnswered {
		counts[a.QuestionID] = append(counts[a.QuestionID], a.AttemptNumber)
	}
	for id, nums := range counts {
		for i, num := range nums {
			assert.Equal(t, i+1, num, "question %s", id)
		}
	}
	assert.Equal(t, 1.0, p.FractionComplete())
}

// TestEndToEnd_FirstSession runs a full session against an in-memory store:
// a new learner, three questions across two topics, one topic answered
// correctly and the other incorrectly.
func TestEndToEnd_FirstSession(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open("file:session-e2e?mode=memory&cache=shared")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.UpsertTopic(ctx, knowledge.Topic{ID: "t1", OrganizationID: "org", Name: "T1", DifficultyLevel: 1, IsActive: true}))
	require.NoError(t, st.UpsertTopic(ctx, knowledge.Topic{ID: "t2", OrganizationID: "org", Name: "T2", DifficultyLevel: 1, IsActive: true}))
	for _, q := range []knowledge.Question{
		{ID: "q1", TopicID: "t1", QuestionTemplate: "Espresso is served in a 60ml cup.", QuestionType: knowledge.TypeTrueFalse, CorrectAnswer: "true", DifficultyLevel: 1, Points: 10, IsActive: true},
		{ID: "q2", TopicID: "t1", QuestionTemplate: "Name our three cup sizes.", QuestionType: knowledge.TypeOpenEnded, CorrectAnswer: "small medium large", DifficultyLevel: 2, Points: 10, IsActive: true},
		{ID: "q3", TopicID: "t2", QuestionTemplate: "The counter is sanitized at closing.", QuestionType: knowledge.TypeTrueFalse, CorrectAnswer: "true", DifficultyLevel: 1, Points: 15, IsActive: true},
	} {
		require.NoError(t, st.UpsertQuestion(ctx, q))
	}

	ms := mastery.NewService(st, mastery.DefaultThreshold, nil)
	sel := selector.NewDefault(st, ms)
	o := New(selector.Request{OrganizationID: "org", UserID: "learner"}, Deps{
		Selector: sel,
		Mastery:  ms,
		Grader:   evaluator.New(evaluator.DefaultKeywordThreshold),
		Attempts: st,
		Sessions: st,
	})

	in, err := o.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(selector.NamePriority), in.Strategy)
	require.Len(t, in.Items, 3)
	assert.Equal(t, []string{"q1", "q3", "q2"}, []string{in.Items[0].QuestionID, in.Items[1].QuestionID, in.Items[2].QuestionID})
	for _, it := range in.Items {
		assert.NotContains(t, it.QuestionID, "synth-")
	}

	id, err := o.Start(ctx)
	require.NoError(t, err)

	_, err = o.RecordQuestionAttempt(ctx, 0, "true", nil)
	require.NoError(t, err)
	_, err = o.RecordQuestionAttempt(ctx, 1, "false", nil)
	require.NoError(t, err)

	p := o.Progress()
	require.NotNil(t, p.CurrentTopic)
	assert.Equal(t, "t2", p.CurrentTopic.ID)
	require.Len(t, p.QuestionsAsked, 2)
	assert.Equal(t, "q1", p.QuestionsAsked[0].ID)
	assert.Equal(t, "q3", p.QuestionsAsked[1].ID)
	assert.Equal(t, []string{"T2"}, p.ImprovementAreas)

	summary, err := o.End(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Score)
	assert.Equal(t, []string{"T2"}, summary.ImprovementAreas)

	rec, err := st.GetMasteryRecord(ctx, "learner", "t2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.TotalAttempts)
	assert.Equal(t, 0, rec.CorrectAttempts)
	assert.Equal(t, 0.0, rec.MasteryLevel)

	rec, err = st.GetMasteryRecord(ctx, "learner", "t1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1.0, rec.MasteryLevel)
	assert.NotNil(t, rec.MasteredAt)

	stored, err := st.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.Summary)
	assert.Equal(t, 10, stored.Summary.Score)

	attempts, err := st.ListSessionAttempts(ctx, id)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)

	// The next session puts the incorrect question ahead of the correct one.
	o2 := New(selector.Request{OrganizationID: "org", UserID: "learner"}, Deps{Selector: sel, Grader: evaluator.New(0)})
	in2, err := o2.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q2", "q3", "q1"}, []string{in2.Items[0].QuestionID, in2.Items[1].QuestionID, in2.Items[2].QuestionID})
}
