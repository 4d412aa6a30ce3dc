package session

import (
	"github.com/abhisek/assessor/internal/knowledge"
)

// PendingQuestion is a selected question waiting to be asked.
type PendingQuestion struct {
	knowledge.QuestionWithStatus

	// SessionID is empty until the session starts.
	SessionID string
}

// Progress is the in-memory state of a running session.
type Progress struct {
	SessionID            string
	Questions            []PendingQuestion
	CurrentQuestionIndex int
	TotalQuestions       int
	QuestionsAnswered    []knowledge.Attempt
	SessionScore         int

	// CurrentTopic is the topic of the most recently answered question.
	CurrentTopic *knowledge.Topic

	// QuestionsAsked holds each answered question in turn order.
	QuestionsAsked []knowledge.Question

	// ImprovementAreas lists topic names with at least one incorrect
	// answer this session, in order of first miss.
	ImprovementAreas []string
}

// recordTurn folds one graded turn into the live session state.
func (p *Progress) recordTurn(pq PendingQuestion, correct bool) {
	topic := pq.Topic
	p.CurrentTopic = &topic
	p.QuestionsAsked = append(p.QuestionsAsked, pq.Question)
	if correct {
		return
	}
	for _, name := range p.ImprovementAreas {
		if name == topic.Name {
			return
		}
	}
	p.ImprovementAreas = append(p.ImprovementAreas, topic.Name)
}

// FractionComplete is the share of questions the session has moved past,
// in [0, 1].
func (p *Progress) FractionComplete() float64 {
	if p.TotalQuestions == 0 {
		return 0
	}
	f := float64(p.CurrentQuestionIndex) / float64(p.TotalQuestions)
	if f > 1 {
		return 1
	}
	return f
}

// attemptNumber is one more than the number of earlier answers to the
// same question in this session.
func (p *Progress) attemptNumber(questionID string) int {
	n := 1
	for _, a := range p.QuestionsAnswered {
		if a.QuestionID == questionID {
			n++
		}
	}
	return n
}

func (p *Progress) clone() Progress {
	out := *p
	out.Questions = append([]PendingQuestion(nil), p.Questions...)
	out.QuestionsAnswered = append([]knowledge.Attempt(nil), p.QuestionsAnswered...)
	out.QuestionsAsked = append([]knowledge.Question(nil), p.QuestionsAsked...)
	out.ImprovementAreas = append([]string(nil), p.ImprovementAreas...)
	if p.CurrentTopic != nil {
		topic := *p.CurrentTopic
		out.CurrentTopic = &topic
	}
	return out
}

// ProgressEvent is emitted after every recorded turn.
type ProgressEvent struct {
	SessionID        string  `json:"session_id"`
	QuestionIndex    int     `json:"question_index"`
	IsCorrect        bool    `json:"is_correct"`
	PointsEarned     int     `json:"points_earned"`
	CurrentScore     int     `json:"current_score"`
	FractionComplete float64 `json:"fraction_complete"`
}
