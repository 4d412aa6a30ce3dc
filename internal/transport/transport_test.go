package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/session"
)

func sampleInstructions() session.Instructions {
	return session.Instructions{
		Strategy: "priority_based",
		Items: []session.Instruction{
			{
				Index: 0, QuestionID: "q1", TopicName: "Drinks", Text: "Which cup sizes do we sell?",
				Type: knowledge.TypeMultipleChoice, Options: []string{"250ml, 350ml, 450ml", "small, large"},
				ExpectedAnswer: "250ml, 350ml, 450ml", Points: 10,
			},
			{
				Index: 1, QuestionID: "q2", TopicName: "Closing", Text: "The counter is sanitized at closing.",
				Type: knowledge.TypeTrueFalse, ExpectedAnswer: "true", Explanation: "Every night.", Points: 5,
			},
		},
	}
}

func TestTerminal_AskAndFeedback(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("1\nfalse\n"), &out)
	ctx := context.Background()
	in := sampleInstructions()

	require.NoError(t, term.Present(ctx, in))
	assert.Contains(t, out.String(), "2 question(s), selected by priority_based")

	answer, _, err := term.Ask(ctx, in.Items[0])
	require.NoError(t, err)
	assert.Equal(t, "1", answer)
	assert.Contains(t, out.String(), "Q1 Which cup sizes do we sell?")
	assert.Contains(t, out.String(), "  2) small, large")

	answer, _, err = term.Ask(ctx, in.Items[1])
	require.NoError(t, err)
	assert.Equal(t, "false", answer)
	assert.Contains(t, out.String(), "Answer true or false.")

	require.NoError(t, term.Progress(ctx, session.ProgressEvent{QuestionIndex: 1, CurrentScore: 10, FractionComplete: 1}))
	assert.Contains(t, out.String(), "Not quite.")
	assert.Contains(t, out.String(), "Expected: true")
	assert.Contains(t, out.String(), "Every night.")
	assert.Contains(t, out.String(), "Score 10")

	_, _, err = term.Ask(ctx, in.Items[0])
	assert.ErrorIs(t, err, io.EOF)
}

func TestTerminal_AskHonoursCancelledContext(t *testing.T) {
	term := NewTerminal(strings.NewReader("x\n"), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := term.Ask(ctx, sampleInstructions().Items[0])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminal_AskLastLineWithoutNewline(t *testing.T) {
	term := NewTerminal(strings.NewReader("yes"), io.Discard)
	answer, _, err := term.Ask(context.Background(), sampleInstructions().Items[1])
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
}

func TestTerminal_TimesAnswers(t *testing.T) {
	term := NewTerminal(strings.NewReader("true\n"), io.Discard)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	term.Now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 7 * time.Second)
	}

	_, spent, err := term.Ask(context.Background(), sampleInstructions().Items[1])
	require.NoError(t, err)
	assert.Equal(t, 7, spent)
}

func TestTerminal_CompleteAndEmpty(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out)
	ctx := context.Background()

	require.NoError(t, term.Present(ctx, session.Instructions{Strategy: "all_mastered"}))
	assert.Contains(t, out.String(), "Every topic is mastered")

	require.NoError(t, term.Complete(ctx, knowledge.SessionSummary{
		Score: 10, MaxScore: 15, CorrectAnswers: 1, TotalQuestions: 2, Accuracy: 0.5,
		TopicsCovered: []string{"Drinks", "Closing"}, ImprovementAreas: []string{"Closing"},
	}))
	assert.Contains(t, out.String(), "Score: 10 / 15")
	assert.Contains(t, out.String(), "Correct: 1 of 2 (50%)")
	assert.Contains(t, out.String(), "Review: Closing")
}

type fakePublisher struct {
	channel  string
	messages [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd {
	cmd := goredis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.channel = channel
	f.messages = append(f.messages, message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func TestRedis_PublishesEnvelopes(t *testing.T) {
	pub := &fakePublisher{}
	r := newRedis(pub, "assessor:events", "u1", nil)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return at }
	ctx := context.Background()

	require.NoError(t, r.Present(ctx, sampleInstructions()))
	require.NoError(t, r.Progress(ctx, session.ProgressEvent{SessionID: "s1", QuestionIndex: 0, IsCorrect: true, PointsEarned: 10, CurrentScore: 10, FractionComplete: 0.5}))
	require.NoError(t, r.Complete(ctx, knowledge.SessionSummary{SessionID: "s1", Score: 10}))

	assert.Equal(t, "assessor:events", pub.channel)
	require.Len(t, pub.messages, 3)

	kinds := []string{KindInstructions, KindProgress, KindSummary}
	for i, raw := range pub.messages {
		ev, err := DecodeEvent(raw)
		require.NoError(t, err)
		assert.Equal(t, kinds[i], ev.Kind)
		assert.Equal(t, "u1", ev.UserID)
		assert.True(t, at.Equal(ev.At))
	}

	ev, _ := DecodeEvent(pub.messages[1])
	assert.Equal(t, "s1", ev.SessionID)
	var progress session.ProgressEvent
	require.NoError(t, json.Unmarshal(ev.Data, &progress))
	assert.Equal(t, 10, progress.CurrentScore)
	assert.InDelta(t, 0.5, progress.FractionComplete, 1e-9)

	ev, _ = DecodeEvent(pub.messages[0])
	var in session.Instructions
	require.NoError(t, json.Unmarshal(ev.Data, &in))
	assert.Equal(t, sampleInstructions(), in)
}

func TestRedis_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	r := newRedis(pub, "events", "u1", nil)

	err := r.Progress(context.Background(), session.ProgressEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish progress")
	assert.NoError(t, r.Close())
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)
}

type failing struct{ Recorder }

func (f *failing) Progress(context.Context, session.ProgressEvent) error {
	return errors.New("boom")
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	a, b := &Recorder{}, &failing{}
	m := Multi{a, b}
	ctx := context.Background()

	require.NoError(t, m.Present(ctx, sampleInstructions()))
	err := m.Progress(ctx, session.ProgressEvent{QuestionIndex: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	require.NoError(t, m.Complete(ctx, knowledge.SessionSummary{Score: 3}))

	assert.Len(t, a.Instructions(), 1)
	assert.Len(t, b.Instructions(), 1)
	assert.Equal(t, []session.ProgressEvent{{QuestionIndex: 1}}, a.Events())
	assert.Empty(t, b.Events())
	assert.Equal(t, 3, a.Summaries()[0].Score)
	assert.Equal(t, 3, b.Summaries()[0].Score)
}
