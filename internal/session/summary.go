package session

import (
	"time"

	"github.com/abhisek/assessor/internal/knowledge"
)

// BuildSummary computes the end-of-session summary. answeredAt holds the
// question index of each answered attempt.
func BuildSummary(p *Progress, answeredAt []int, endedAt time.Time) knowledge.SessionSummary {
	names := make(map[string]string, len(p.Questions))
	maxScore := 0
	var covered []string
	seenCovered := make(map[string]bool)
	for _, pq := range p.Questions {
		names[pq.Topic.ID] = pq.Topic.Name
		maxScore += pq.Question.Points
		if !seenCovered[pq.Topic.Name] {
			seenCovered[pq.Topic.Name] = true
			covered = append(covered, pq.Topic.Name)
		}
	}

	correct := 0
	var improvement []string
	seenWeak := make(map[string]bool)
	transcript := make([]knowledge.TranscriptEntry, 0, len(p.QuestionsAnswered))
	for i, a := range p.QuestionsAnswered {
		name := names[a.TopicID]
		if a.IsCorrect {
			correct++
		} else if !seenWeak[name] {
			seenWeak[name] = true
			improvement = append(improvement, name)
		}
		idx := -1
		if i < len(answeredAt) {
			idx = answeredAt[i]
		}
		transcript = append(transcript, knowledge.TranscriptEntry{
			QuestionIndex: idx,
			QuestionID:    a.QuestionID,
			TopicID:       a.TopicID,
			TopicName:     name,
			Question:      a.QuestionAsked,
			Response:      a.LearnerAnswer,
			Expected:      a.CorrectAnswer,
			IsCorrect:     a.IsCorrect,
			PointsEarned:  a.PointsEarned,
		})
	}

	var accuracy float64
	if p.TotalQuestions > 0 {
		accuracy = float64(correct) / float64(p.TotalQuestions)
		if accuracy > 1 {
			accuracy = 1
		}
	}

	return knowledge.SessionSummary{
		SessionID:        p.SessionID,
		Score:            p.SessionScore,
		MaxScore:         maxScore,
		CorrectAnswers:   correct,
		TotalQuestions:   p.TotalQuestions,
		Accuracy:         accuracy,
		TopicsCovered:    covered,
		ImprovementAreas: improvement,
		Transcript:       transcript,
		EndedAt:          endedAt,
	}
}
