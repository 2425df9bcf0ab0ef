package domain

// DefaultFamiliarity is the pre-selected familiarity level.
const DefaultFamiliarity = 3

var questionBank = []Question{
	{
		ID:          1,
		Type:        QuestionTrueFalse,
		Prompt:      "AI (Artificial Intelligence) can only exist in physical robots.",
		CorrectBool: false,
		Explanation: "AI is software that can run on computers, servers, and phones. It does not need a physical robot body.",
	},
	{
		ID:     2,
		Type:   QuestionMultipleChoice,
		Prompt: "Which of these is a common use of AI today?",
		Options: []string{
			"Time travel calculations",
			"Face recognition on phones",
			"Teleportation devices",
			"Reading human minds",
		},
		CorrectText: "Face recognition on phones",
		Explanation: "AI is widely used for facial recognition, voice assistants, and recommendation systems.",
	},
	{
		ID:     3,
		Type:   QuestionMultipleChoice,
		Prompt: "What does \"Machine Learning\" mean?",
		Options: []string{
			"Machines teaching humans",
			"Computers learning from data without being explicitly programmed",
			"Robots going to school",
			"Fixing broken machines",
		},
		CorrectText: "Computers learning from data without being explicitly programmed",
		Explanation: "Machine Learning is a subset of AI where computers learn patterns from data to make decisions.",
	},
	{
		ID:          4,
		Type:        QuestionTrueFalse,
		Prompt:      "Generative AI (like ChatGPT) can create new content like text and images.",
		CorrectBool: true,
		Explanation: "Yes! Generative AI can create new content based on patterns it has learned from existing data.",
	},
	{
		ID:          5,
		Type:        QuestionText,
		Prompt:      "In one word, what is the most important thing for AI to learn from?",
		CorrectText: "Data",
		Explanation: "Data is the fuel for AI. Without data, AI models cannot learn patterns or make predictions.",
	},
}

var familiarityLevels = []FamiliarityLevel{
	{Value: 1, Label: "Newbie", Description: "I know nothing about AI."},
	{Value: 2, Label: "Beginner", Description: "I have heard of AI but don't use it."},
	{Value: 3, Label: "User", Description: "I use AI tools sometimes."},
	{Value: 4, Label: "Enthusiast", Description: "I follow AI news and use it often."},
	{Value: 5, Label: "Expert", Description: "I build or work with AI professionally."},
}

// Questions returns a copy of the fixed, ordered question bank.
func Questions() []Question {
	out := make([]Question, len(questionBank))
	copy(out, questionBank)
	return out
}

// FamiliarityLevels returns a copy of the 1-5 self-assessment scale.
func FamiliarityLevels() []FamiliarityLevel {
	out := make([]FamiliarityLevel, len(familiarityLevels))
	copy(out, familiarityLevels)
	return out
}
