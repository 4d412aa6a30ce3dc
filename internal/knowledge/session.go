package knowledge

import "time"

// SessionMeta is persisted when a session starts.
type SessionMeta struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Strategy       string    `json:"strategy"`
	TopicIDs       []string  `json:"topic_ids"`
	TotalQuestions int       `json:"total_questions"`
	StartedAt      time.Time `json:"started_at"`
}

// TranscriptEntry is one answered question in a session summary.
type TranscriptEntry struct {
	QuestionIndex int    `json:"question_index"`
	QuestionID    string `json:"question_id"`
	TopicID       string `json:"topic_id"`
	TopicName     string `json:"topic_name"`
	Question      string `json:"question"`
	Response      string `json:"response"`
	Expected      string `json:"expected"`
	IsCorrect     bool   `json:"is_correct"`
	PointsEarned  int    `json:"points_earned"`
}

// SessionSummary is the outcome of an ended session.
type SessionSummary struct {
	SessionID        string            `json:"session_id"`
	Score            int               `json:"score"`
	MaxScore         int               `json:"max_score"`
	CorrectAnswers   int               `json:"correct_answers"`
	TotalQuestions   int               `json:"total_questions"`
	Accuracy         float64           `json:"accuracy"`
	TopicsCovered    []string          `json:"topics_covered"`
	ImprovementAreas []string          `json:"improvement_areas"`
	Transcript       []TranscriptEntry `json:"transcript"`
	EndedAt          time.Time         `json:"ended_at"`
}

// SessionRecord is a stored session with its summary, if it has ended.
type SessionRecord struct {
	ID      string
	Meta    SessionMeta
	Summary *SessionSummary
}
