package session

import (
	"fmt"
	"strings"

	"github.com/abhisek/assessor/internal/knowledge"
)

// Instruction is one question as handed to the transport, verbatim.
type Instruction struct {
	Index          int                    `json:"index"`
	QuestionID     string                 `json:"question_id"`
	TopicID        string                 `json:"topic_id"`
	TopicName      string                 `json:"topic_name"`
	Text           string                 `json:"text"`
	Type           knowledge.QuestionType `json:"type"`
	Options        []string               `json:"options,omitempty"`
	ExpectedAnswer string                 `json:"expected_answer"`
	Explanation    string                 `json:"explanation,omitempty"`
	Points         int                    `json:"points"`
}

// Instructions is the ordered question payload produced at initialization.
// The transport must ask the questions in this order.
type Instructions struct {
	Strategy string        `json:"strategy"`
	Items    []Instruction `json:"items"`
}

// BuildInstructions lists the questions in selection order.
func BuildInstructions(strategy string, qs []PendingQuestion) Instructions {
	in := Instructions{Strategy: strategy, Items: make([]Instruction, 0, len(qs))}
	for i, pq := range qs {
		q := pq.Question
		var opts []string
		if len(q.AnswerOptions) > 0 {
			opts = append(opts, q.AnswerOptions...)
		}
		in.Items = append(in.Items, Instruction{
			Index:          i,
			QuestionID:     q.ID,
			TopicID:        pq.Topic.ID,
			TopicName:      pq.Topic.Name,
			Text:           q.QuestionTemplate,
			Type:           q.QuestionType,
			Options:        opts,
			ExpectedAnswer: q.CorrectAnswer,
			Explanation:    q.Explanation,
			Points:         q.Points,
		})
	}
	return in
}

// Render formats the payload as numbered plain text for conversational
// transports.
func (in Instructions) Render() string {
	if len(in.Items) == 0 {
		return "No questions to ask.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ask the following %d question(s) in order, one at a time.\n\n", len(in.Items))
	for i, it := range in.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Text)
		fmt.Fprintf(&b, "   Topic: %s | Type: %s | Points: %d\n", it.TopicName, it.Type, it.Points)
		if len(it.Options) > 0 {
			fmt.Fprintf(&b, "   Options: %s\n", strings.Join(it.Options, " | "))
		}
		fmt.Fprintf(&b, "   Expected answer: %s\n", it.ExpectedAnswer)
		if it.Explanation != "" {
			fmt.Fprintf(&b, "   Explanation: %s\n", it.Explanation)
		}
	}
	return b.String()
}
