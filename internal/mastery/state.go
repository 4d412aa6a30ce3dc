package mastery

import "github.com/abhisek/assessor/internal/knowledge"

// State represents a topic's position in the mastery lifecycle.
type State string

const (
	StateNew      State = "new"
	StateLearning State = "learning"
	StateMastered State = "mastered"

	// StateSlipping is a topic that reached mastery once and has since
	// dropped below the threshold. MasteredAt is never cleared.
	StateSlipping State = "slipping"
)

// StateOf derives the lifecycle state of rec, which is nil when the learner
// never attempted the topic.
func StateOf(rec *knowledge.MasteryRecord, threshold float64) State {
	switch {
	case rec == nil || rec.TotalAttempts == 0:
		return StateNew
	case rec.IsMastered(threshold):
		return StateMastered
	case rec.MasteredAt != nil:
		return StateSlipping
	default:
		return StateLearning
	}
}

// Transition records a state change caused by one attempt.
type Transition struct {
	TopicID string
	From    State
	To      State
}

// Changed reports whether the attempt moved the topic to a new state.
func (t Transition) Changed() bool {
	return t.From != t.To
}
