package knowledge

// FallbackTopic owns the built-in questions served when no store-backed
// strategy can produce a question set.
var FallbackTopic = Topic{
	ID:              "builtin-general",
	Name:            "General Knowledge",
	Description:     "Core workplace knowledge",
	Category:        CategoryGeneral,
	DifficultyLevel: 1,
	IsActive:        true,
}

var fallbackQuestions = []Question{
	{
		ID:               "builtin-1",
		TopicID:          FallbackTopic.ID,
		QuestionTemplate: "What is the first thing you should do when a guest arrives?",
		QuestionType:     TypeOpenEnded,
		CorrectAnswer:    "greet the guest warmly, welcome them",
		DifficultyLevel:  1,
		Points:           DefaultPoints,
		Explanation:      "A prompt, friendly greeting sets the tone for the visit.",
		IsActive:         true,
	},
	{
		ID:               "builtin-2",
		TopicID:          FallbackTopic.ID,
		QuestionTemplate: "True or false: you should wash your hands before handling food.",
		QuestionType:     TypeTrueFalse,
		CorrectAnswer:    "true",
		DifficultyLevel:  1,
		Points:           DefaultPoints,
		Explanation:      "Hand washing is required before any food handling.",
		IsActive:         true,
	},
	{
		ID:               "builtin-3",
		TopicID:          FallbackTopic.ID,
		QuestionTemplate: "How should you handle a guest complaint?",
		QuestionType:     TypeOpenEnded,
		CorrectAnswer:    "listen, apologize, resolve, follow up",
		DifficultyLevel:  1,
		Points:           DefaultPoints,
		Explanation:      "Listen fully, apologize, fix the issue, and check back.",
		IsActive:         true,
	},
}

// FallbackQuestions returns a copy of the built-in question set.
func FallbackQuestions() []Question {
	out := make([]Question, len(fallbackQuestions))
	copy(out, fallbackQuestions)
	return out
}
