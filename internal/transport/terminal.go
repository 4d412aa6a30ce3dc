package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/selector"
	"github.com/abhisek/assessor/internal/session"
	"github.com/abhisek/assessor/internal/ui/theme"
)

const barWidth = 20

// Terminal asks questions over a line-oriented reader and writer, usually
// stdin and stdout.
type Terminal struct {
	mu    sync.Mutex
	in    *bufio.Reader
	out   io.Writer
	items []session.Instruction

	// Now is the clock used to time answers; tests may replace it.
	Now func() time.Time
}

var _ session.Transport = (*Terminal)(nil)

// NewTerminal creates a terminal transport.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, Now: time.Now}
}

func (t *Terminal) Present(_ context.Context, in session.Instructions) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = append([]session.Instruction(nil), in.Items...)
	if len(in.Items) == 0 {
		if in.Strategy == string(selector.NameAllMastered) {
			t.printf("%s\n", theme.Correct.Render("Every topic is mastered. Nothing to practice right now."))
			return nil
		}
		t.printf("%s\n", theme.Hint.Render("No questions available."))
		return nil
	}
	t.printf("%s\n", theme.Title.Render("Knowledge check"))
	t.printf("%s\n\n", theme.Subtitle.Render(fmt.Sprintf("%d question(s), selected by %s", len(in.Items), in.Strategy)))
	return nil
}

// Ask shows the question and reads one line of answer. It returns io.EOF
// when the input is exhausted.
func (t *Terminal) Ask(ctx context.Context, it session.Instruction) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", theme.Label.Render(fmt.Sprintf("Q%d", it.Index+1)), theme.Body.Render(it.Text))
	fmt.Fprintf(&b, "%s\n", theme.Hint.Render(fmt.Sprintf("%s · %s · %d pts", it.TopicName, it.Type, it.Points)))
	for i, opt := range it.Options {
		fmt.Fprintf(&b, "  %d) %s\n", i+1, opt)
	}
	if it.Type == knowledge.TypeTrueFalse {
		fmt.Fprintf(&b, "%s\n", theme.Hint.Render("Answer true or false."))
	}
	t.printf("%s> ", b.String())

	start := t.Now()
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", 0, err
	}
	spent := int(t.Now().Sub(start).Seconds())
	return strings.TrimRight(line, "\r\n"), spent, nil
}

func (t *Terminal) Progress(_ context.Context, ev session.ProgressEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ev.IsCorrect {
		t.printf("%s %s\n", theme.Correct.Render("Correct!"), theme.Hint.Render(fmt.Sprintf("+%d", ev.PointsEarned)))
	} else {
		t.printf("%s\n", theme.Incorrect.Render("Not quite."))
		if ev.QuestionIndex >= 0 && ev.QuestionIndex < len(t.items) {
			it := t.items[ev.QuestionIndex]
			t.printf("%s %s\n", theme.Label.Render("Expected:"), it.ExpectedAnswer)
			if it.Explanation != "" {
				t.printf("%s\n", theme.Hint.Render(it.Explanation))
			}
		}
	}
	t.printf("Score %d  %s\n\n", ev.CurrentScore, theme.ProgressBar(ev.FractionComplete, barWidth))
	return nil
}

func (t *Terminal) Complete(_ context.Context, s knowledge.SessionSummary) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", theme.Title.Render("Session complete"))
	fmt.Fprintf(&b, "Score: %d / %d\n", s.Score, s.MaxScore)
	fmt.Fprintf(&b, "Correct: %d of %d (%.0f%%)\n", s.CorrectAnswers, s.TotalQuestions, s.Accuracy*100)
	if len(s.TopicsCovered) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(s.TopicsCovered, ", "))
	}
	if len(s.ImprovementAreas) > 0 {
		fmt.Fprintf(&b, "%s %s", theme.Warning.Render("Review:"), strings.Join(s.ImprovementAreas, ", "))
	} else {
		fmt.Fprintf(&b, "%s", theme.Correct.Render("No weak spots this time."))
	}
	t.printf("%s\n", theme.Card.Render(b.String()))
	return nil
}

func (t *Terminal) printf(format string, args ...any) {
	lipgloss.Fprintf(t.out, format, args...)
}
