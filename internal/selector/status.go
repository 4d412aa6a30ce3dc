package selector

import (
	"sort"
	"strings"

	"github.com/abhisek/assessor/internal/knowledge"
)

// fuzzyPrefixLen is the number of leading characters compared when matching
// legacy attempts by question text.
const fuzzyPrefixLen = 20

// StatusIndex derives question statuses from a learner's attempt history.
type StatusIndex struct {
	byQuestion map[string]knowledge.Attempt

	// legacy holds attempts whose question id is unknown, most recent first.
	legacy []knowledge.Attempt
}

// NewStatusIndex indexes attempts. knownIDs are the ids of every question in
// the candidate pool; attempts naming any other id (or none) are eligible
// for the text-prefix fallback.
func NewStatusIndex(attempts []knowledge.Attempt, knownIDs map[string]bool) *StatusIndex {
	sorted := make([]knowledge.Attempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})

	idx := &StatusIndex{byQuestion: make(map[string]knowledge.Attempt)}
	for _, a := range sorted {
		if a.QuestionID != "" && knownIDs[a.QuestionID] {
			idx.byQuestion[a.QuestionID] = a
			continue
		}
		idx.legacy = append(idx.legacy, a)
	}
	// Most recent first.
	for i, j := 0, len(idx.legacy)-1; i < j; i, j = i+1, j-1 {
		idx.legacy[i], idx.legacy[j] = idx.legacy[j], idx.legacy[i]
	}
	return idx
}

// Status returns the status of q and how it was matched.
func (idx *StatusIndex) Status(q knowledge.Question) (knowledge.Status, knowledge.MatchKind) {
	if a, ok := idx.byQuestion[q.ID]; ok {
		return statusOf(a), knowledge.MatchExact
	}
	for _, a := range idx.legacy {
		if a.TopicID == q.TopicID && prefixOverlap(a.QuestionAsked, q.QuestionTemplate) {
			return statusOf(a), knowledge.MatchFuzzy
		}
	}
	return knowledge.StatusUnanswered, knowledge.MatchNone
}

// Annotate attaches statuses to a slice of questions.
func (idx *StatusIndex) Annotate(qs []knowledge.TopicQuestion) []knowledge.QuestionWithStatus {
	out := make([]knowledge.QuestionWithStatus, 0, len(qs))
	for _, tq := range qs {
		status, kind := idx.Status(tq.Question)
		out = append(out, knowledge.QuestionWithStatus{
			TopicQuestion: tq,
			Status:        status,
			MatchedBy:     kind,
		})
	}
	return out
}

func statusOf(a knowledge.Attempt) knowledge.Status {
	if a.IsCorrect {
		return knowledge.StatusCorrect
	}
	return knowledge.StatusIncorrect
}

// prefixOverlap reports whether either text contains the other's leading
// fuzzyPrefixLen characters, ignoring case and surrounding whitespace.
func prefixOverlap(asked, template string) bool {
	asked = strings.ToLower(strings.TrimSpace(asked))
	template = strings.ToLower(strings.TrimSpace(template))
	if asked == "" || template == "" {
		return false
	}
	return strings.Contains(asked, prefix(template, fuzzyPrefixLen)) ||
		strings.Contains(template, prefix(asked, fuzzyPrefixLen))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
