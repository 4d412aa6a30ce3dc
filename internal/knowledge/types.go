package knowledge

import "time"

// Category groups topics by the kind of material they cover.
type Category string

const (
	CategoryMenu       Category = "menu"
	CategoryProcedures Category = "procedures"
	CategoryPolicies   Category = "policies"
	CategoryGeneral    Category = "general"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMenu, CategoryProcedures, CategoryPolicies, CategoryGeneral:
		return true
	}
	return false
}

// QuestionType describes how a learner answers a question and how the
// answer is graded.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeOpenEnded      QuestionType = "open_ended"
	TypeTrueFalse      QuestionType = "true_false"
)

// Difficulty bounds shared by topics and questions.
const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// Topic is a unit of knowledge within an organization. Topics are authored
// elsewhere; the engine only reads them.
type Topic struct {
	ID              string
	OrganizationID  string
	Name            string
	Description     string
	Category        Category
	DifficultyLevel int
	IsActive        bool
}

// Question is a single question owned by a topic.
type Question struct {
	ID               string
	TopicID          string
	QuestionTemplate string
	QuestionType     QuestionType

	// CorrectAnswer is the canonical expected answer text.
	CorrectAnswer string

	// AnswerOptions is populated only for multiple choice, in display order.
	AnswerOptions []string

	DifficultyLevel int
	Points          int
	Explanation     string
	IsActive        bool
}

// TopicQuestion is a question joined with its owning topic.
type TopicQuestion struct {
	Question Question
	Topic    Topic
}

// Attempt is an immutable record of one answered question.
type Attempt struct {
	SessionID     string
	UserID        string
	TopicID       string
	QuestionID    string
	QuestionAsked string
	LearnerAnswer string
	CorrectAnswer string
	IsCorrect     bool
	PointsEarned  int

	// TimeSpentSeconds is nil when the transport did not measure it.
	TimeSpentSeconds *int

	AttemptNumber int

	// Sequence orders attempts globally; higher is more recent.
	Sequence  int64
	CreatedAt time.Time
}

// MasteryRecord is the per-learner, per-topic mastery state.
type MasteryRecord struct {
	UserID          string
	TopicID         string
	MasteryLevel    float64
	TotalAttempts   int
	CorrectAttempts int
	LastAttemptAt   *time.Time

	// MasteredAt is set the first time MasteryLevel reaches the mastery
	// threshold and is never cleared.
	MasteredAt *time.Time
}

// IsMastered reports whether the record has reached threshold.
func (r *MasteryRecord) IsMastered(threshold float64) bool {
	return r.MasteryLevel >= threshold
}
