package knowledge

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPoints is awarded for synthesized and built-in questions.
const DefaultPoints = 10

// Template is a question pattern with named placeholders such as {item}.
type Template string

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// Placeholders returns the distinct placeholder names in t, in order of
// first appearance.
func (t Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(string(t), -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// templates is the closed library of question patterns per category.
var templates = map[Category][]Template{
	CategoryMenu: {
		"What are the main ingredients in {item}?",
		"How would you describe {item} to a guest?",
		"Which allergens should a guest know about when ordering {item}?",
	},
	CategoryProcedures: {
		"Walk me through the steps for {procedure}.",
		"What is the first thing you do when starting {procedure}?",
	},
	CategoryPolicies: {
		"What is our policy on {policy}?",
		"How would you explain the {policy} policy to a new team member?",
	},
	CategoryGeneral: {
		"What do you know about {topic}?",
		"Explain the key points of {topic}.",
	},
}

// TemplatesFor returns the templates registered for a category, falling
// back to the general set for unknown categories.
func TemplatesFor(c Category) []Template {
	if ts, ok := templates[c]; ok {
		return ts
	}
	return templates[CategoryGeneral]
}

// Resolver fills template placeholders. Placeholders without an explicit
// value resolve to Default.
type Resolver struct {
	Default string
	values  map[string]string
}

// NewResolver returns a resolver whose unset placeholders resolve to def.
func NewResolver(def string) *Resolver {
	return &Resolver{Default: def, values: make(map[string]string)}
}

// Set binds a placeholder name to a value.
func (r *Resolver) Set(name, value string) *Resolver {
	r.values[name] = value
	return r
}

// Resolve substitutes every placeholder in t.
func (r *Resolver) Resolve(t Template) string {
	return placeholderRe.ReplaceAllStringFunc(string(t), func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := r.values[name]; ok {
			return v
		}
		return r.Default
	})
}

// QuestionBuilder assembles a synthesized question for a topic.
type QuestionBuilder struct {
	topic    Topic
	template Template
	resolver *Resolver
	points   int
}

// NewQuestionBuilder starts a builder using the first template of the
// topic's category. Every placeholder defaults to the topic name.
func NewQuestionBuilder(topic Topic) *QuestionBuilder {
	return &QuestionBuilder{
		topic:    topic,
		template: TemplatesFor(topic.Category)[0],
		resolver: NewResolver(topic.Name),
		points:   DefaultPoints,
	}
}

// WithTemplate selects a different template.
func (b *QuestionBuilder) WithTemplate(t Template) *QuestionBuilder {
	b.template = t
	return b
}

// WithValue overrides one placeholder.
func (b *QuestionBuilder) WithValue(name, value string) *QuestionBuilder {
	b.resolver.Set(name, value)
	return b
}

// WithPoints overrides the points awarded.
func (b *QuestionBuilder) WithPoints(points int) *QuestionBuilder {
	if points > 0 {
		b.points = points
	}
	return b
}

// Build returns the synthesized open-ended question.
func (b *QuestionBuilder) Build() Question {
	answer := strings.TrimSpace(b.topic.Description)
	if answer == "" {
		answer = b.topic.Name
	}
	difficulty := b.topic.DifficultyLevel
	if difficulty < MinDifficulty {
		difficulty = MinDifficulty
	}
	return Question{
		ID:               fmt.Sprintf("synth-%s", b.topic.ID),
		TopicID:          b.topic.ID,
		QuestionTemplate: b.resolver.Resolve(b.template),
		QuestionType:     TypeOpenEnded,
		CorrectAnswer:    answer,
		DifficultyLevel:  difficulty,
		Points:           b.points,
		Explanation:      fmt.Sprintf("This question covers %s.", b.topic.Name),
		IsActive:         true,
	}
}

// SynthesizeQuestion builds the default question for a topic with no
// stored questions.
func SynthesizeQuestion(topic Topic) Question {
	return NewQuestionBuilder(topic).Build()
}
