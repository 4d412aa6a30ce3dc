package evaluator

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/assessor/internal/knowledge"
)

// DefaultKeywordThreshold is the fraction of expected keywords an
// open-ended response must contain to be graded correct.
const DefaultKeywordThreshold = 0.5

// minKeywordLen excludes short filler words from open-ended grading.
const minKeywordLen = 3

var (
	trueWords  = map[string]bool{"true": true, "yes": true, "correct": true, "right": true}
	falseWords = map[string]bool{"false": true, "no": true, "not": true, "incorrect": true, "wrong": true}
)

// Evaluator grades learner responses against expected answers.
type Evaluator struct {
	// KeywordThreshold overrides DefaultKeywordThreshold when positive.
	KeywordThreshold float64
}

// New creates an Evaluator with the given keyword threshold. A zero or
// negative threshold selects the default.
func New(keywordThreshold float64) *Evaluator {
	return &Evaluator{KeywordThreshold: keywordThreshold}
}

// Evaluate grades a response with the default thresholds.
func Evaluate(response string, q knowledge.Question) bool {
	return (&Evaluator{}).Evaluate(response, q)
}

// Evaluate reports whether response answers q correctly.
//
// Grading rules by question type:
//   - multiple_choice: the normalized response must contain the option that
//     equals the normalized correct answer, or name it by 1-based index;
//     with no such option the response is incorrect
//   - open_ended: at least KeywordThreshold of the correct answer's
//     keywords (tokens longer than two characters) must appear in the response
//   - true_false: the response must assert exactly one of true or false,
//     and it must agree with the correct answer
//
// Unknown question types always grade as incorrect. Open-ended grading is a
// keyword-overlap approximation, not semantic grading.
func (e *Evaluator) Evaluate(response string, q knowledge.Question) bool {
	response = normalize(response)
	if response == "" {
		return false
	}

	switch q.QuestionType {
	case knowledge.TypeMultipleChoice:
		return checkMultipleChoice(response, q)
	case knowledge.TypeOpenEnded:
		return checkOpenEnded(response, q.CorrectAnswer, e.threshold())
	case knowledge.TypeTrueFalse:
		return checkTrueFalse(response, q.CorrectAnswer)
	default:
		return false
	}
}

func (e *Evaluator) threshold() float64 {
	if e.KeywordThreshold > 0 {
		return e.KeywordThreshold
	}
	return DefaultKeywordThreshold
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// checkMultipleChoice expects a normalized response. The response must
// contain the option equal to the correct answer. A bare number names an
// option by 1-based index, but only when the response contains no option
// text, so numeric options grade by their text.
func checkMultipleChoice(response string, q knowledge.Question) bool {
	correct := normalize(q.CorrectAnswer)
	if correct == "" {
		return false
	}
	if len(q.AnswerOptions) == 0 {
		return strings.Contains(response, correct)
	}

	target := -1
	for i, opt := range q.AnswerOptions {
		if normalize(opt) == correct {
			target = i
			break
		}
	}
	if target < 0 {
		return false
	}
	if strings.Contains(response, correct) {
		return true
	}

	for _, opt := range q.AnswerOptions {
		if o := normalize(opt); o != "" && strings.Contains(response, o) {
			return false
		}
	}
	if idx, err := strconv.Atoi(response); err == nil {
		return idx-1 == target
	}
	return false
}

// Keywords splits an expected answer on whitespace, commas and periods and
// keeps tokens longer than two characters, lowercased.
func Keywords(answer string) []string {
	fields := strings.FieldsFunc(strings.ToLower(answer), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.'
	})
	var out []string
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minKeywordLen {
			out = append(out, f)
		}
	}
	return out
}

// KeywordCoverage returns the fraction of keywords found in response.
func KeywordCoverage(response string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	response = strings.ToLower(response)
	hits := 0
	for _, k := range keywords {
		if strings.Contains(response, k) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

func checkOpenEnded(response, correctAnswer string, threshold float64) bool {
	keywords := Keywords(correctAnswer)
	if len(keywords) == 0 {
		// Only short tokens: fall back to containment of the whole answer.
		correct := normalize(correctAnswer)
		return correct != "" && strings.Contains(response, correct)
	}
	return KeywordCoverage(response, keywords) >= threshold
}

func checkTrueFalse(response, correctAnswer string) bool {
	correct := normalize(correctAnswer)
	expected := strings.Contains(correct, "true") || strings.Contains(correct, "yes")

	var saidTrue, saidFalse bool
	for _, w := range strings.FieldsFunc(response, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if trueWords[w] {
			saidTrue = true
		}
		if falseWords[w] {
			saidFalse = true
		}
	}

	if saidTrue == saidFalse {
		return false
	}
	return saidTrue == expected
}
