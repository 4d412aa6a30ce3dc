package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesFor_EveryCategory(t *testing.T) {
	for _, c := range []Category{CategoryMenu, CategoryProcedures, CategoryPolicies, CategoryGeneral} {
		ts := TemplatesFor(c)
		require.NotEmpty(t, ts, "category %s", c)
		for _, tmpl := range ts {
			assert.NotEmpty(t, tmpl.Placeholders(), "template %q has no placeholders", tmpl)
		}
	}
}

func TestTemplatesFor_UnknownCategoryUsesGeneral(t *testing.T) {
	assert.Equal(t, TemplatesFor(CategoryGeneral), TemplatesFor(Category("bogus")))
}

func TestResolver_DefaultsEveryPlaceholder(t *testing.T) {
	r := NewResolver("Espresso")
	got := r.Resolve("Tell me about {item}, {procedure} and {topic}.")
	assert.Equal(t, "Tell me about Espresso, Espresso and Espresso.", got)
}

func TestResolver_ExplicitValueWins(t *testing.T) {
	r := NewResolver("Espresso").Set("procedure", "pulling a shot")
	got := r.Resolve("{item}: {procedure}")
	assert.Equal(t, "Espresso: pulling a shot", got)
}

func TestTemplate_Placeholders(t *testing.T) {
	tmpl := Template("{item} and {topic} and {item}")
	assert.Equal(t, []string{"item", "topic"}, tmpl.Placeholders())
}

func TestSynthesizeQuestion(t *testing.T) {
	topic := Topic{
		ID:              "t-menu",
		Name:            "Latte",
		Description:     "espresso, steamed milk, foam",
		Category:        CategoryMenu,
		DifficultyLevel: 2,
	}
	q := SynthesizeQuestion(topic)

	assert.Equal(t, TypeOpenEnded, q.QuestionType)
	assert.Equal(t, "t-menu", q.TopicID)
	assert.Equal(t, "What are the main ingredients in Latte?", q.QuestionTemplate)
	assert.Equal(t, "espresso, steamed milk, foam", q.CorrectAnswer)
	assert.Equal(t, 2, q.DifficultyLevel)
	assert.Equal(t, DefaultPoints, q.Points)
	assert.NotContains(t, q.QuestionTemplate, "{")
}

func TestSynthesizeQuestion_NoDescriptionUsesName(t *testing.T) {
	q := SynthesizeQuestion(Topic{ID: "t", Name: "Closing", Category: CategoryProcedures})
	assert.Equal(t, "Closing", q.CorrectAnswer)
	assert.Equal(t, MinDifficulty, q.DifficultyLevel)
	assert.Equal(t, "Walk me through the steps for Closing.", q.QuestionTemplate)
}

func TestQuestionBuilder_Overrides(t *testing.T) {
	q := NewQuestionBuilder(Topic{ID: "t", Name: "Refunds", Category: CategoryPolicies}).
		WithTemplate("What is our policy on {policy}?").
		WithValue("policy", "cash refunds").
		WithPoints(25).
		Build()
	assert.Equal(t, "What is our policy on cash refunds?", q.QuestionTemplate)
	assert.Equal(t, 25, q.Points)
}

func TestFallbackQuestions_ReturnsCopy(t *testing.T) {
	qs := FallbackQuestions()
	require.NotEmpty(t, qs)
	qs[0].QuestionTemplate = "mutated"
	assert.NotEqual(t, "mutated", FallbackQuestions()[0].QuestionTemplate)
}

func TestStatusRank(t *testing.T) {
	assert.Less(t, StatusUnanswered.Rank(), StatusIncorrect.Rank())
	assert.Less(t, StatusIncorrect.Rank(), StatusCorrect.Rank())
}

func TestErrorHelpers(t *testing.T) {
	var err error = &StorageError{Op: "list", Err: assert.AnError}
	assert.True(t, IsStorage(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, IsInvalidState(err))

	err = &InvalidStateError{Op: "end", State: "ended"}
	assert.True(t, IsInvalidState(err))
	assert.Equal(t, "invalid state: cannot end in state ended", err.Error())

	assert.True(t, IsNotFound(&NotFoundError{What: "questions"}))
}
