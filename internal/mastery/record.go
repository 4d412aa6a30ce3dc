package mastery

import (
	"time"

	"github.com/abhisek/assessor/internal/knowledge"
)

// DefaultThreshold is the mastery level at or above which a topic is mastered.
const DefaultThreshold = 0.8

// Apply folds one attempt into rec. It returns true when this attempt made
// the topic mastered for the first time.
func Apply(rec *knowledge.MasteryRecord, correct bool, now time.Time, threshold float64) bool {
	rec.TotalAttempts++
	if correct {
		rec.CorrectAttempts++
	}
	rec.MasteryLevel = Level(rec.CorrectAttempts, rec.TotalAttempts)

	t := now
	rec.LastAttemptAt = &t

	if rec.MasteryLevel >= threshold && rec.MasteredAt == nil {
		m := now
		rec.MasteredAt = &m
		return true
	}
	return false
}

// Level returns correct/total clamped to [0, 1], or 0 with no attempts.
func Level(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	level := float64(correct) / float64(total)
	if level > 1 {
		return 1
	}
	if level < 0 {
		return 0
	}
	return level
}

// NeedsPractice reports whether a topic with record rec (nil when the
// learner never attempted it) is below threshold.
func NeedsPractice(rec *knowledge.MasteryRecord, threshold float64) bool {
	return rec == nil || rec.MasteryLevel < threshold
}
