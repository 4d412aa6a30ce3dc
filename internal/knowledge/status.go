package knowledge

// Status is the derived answer state of a question for one learner.
type Status string

const (
	StatusUnanswered Status = "unanswered"
	StatusIncorrect  Status = "incorrect"
	StatusCorrect    Status = "correct"
)

// Rank orders statuses for priority selection: unseen material first,
// then remediation, then review.
func (s Status) Rank() int {
	switch s {
	case StatusUnanswered:
		return 0
	case StatusIncorrect:
		return 1
	case StatusCorrect:
		return 2
	}
	return 3
}

// MatchKind records how a question's status was derived.
type MatchKind string

const (
	MatchNone  MatchKind = "none"
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// QuestionWithStatus is a question annotated with the learner's latest result.
type QuestionWithStatus struct {
	TopicQuestion
	Status Status

	// MatchedBy is MatchFuzzy when the status came from the legacy
	// text-prefix fallback rather than a question id.
	MatchedBy MatchKind

	// Synthesized is true for questions built from a template rather than
	// read from the store.
	Synthesized bool
}
