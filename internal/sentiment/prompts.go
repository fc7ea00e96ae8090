package sentiment

import "math"

var promptCatalog = map[string][]string{
	EmotionHappy: {
		"What made you feel good today?",
		"What positive moments stand out to you?",
		"How can you create more moments like this?",
		"Who or what contributed to your happiness?",
	},
	EmotionSad: {
		"Would sharing this help you feel lighter?",
		"What small thing could bring you comfort right now?",
		"Is there someone you trust who could support you?",
		"What has helped you through similar feelings before?",
	},
	EmotionAnxious: {
		"What is worrying you most right now?",
		"What's one thing within your control in this situation?",
		"What would help you feel safer or more secure?",
		"Can you identify what's triggering these feelings?",
	},
	EmotionStressed: {
		"What can help reduce this stress?",
		"What's the most important thing to focus on right now?",
		"What tasks can you delegate or postpone?",
		"When can you take a break to recharge?",
	},
	EmotionAngry: {
		"What triggered this feeling?",
		"What would you need to feel heard or understood?",
		"Is there a way to express this constructively?",
		"What boundaries might help prevent this in the future?",
	},
	EmotionNeutral: {
		"Would you like to reflect more?",
		"What's something on your mind today?",
		"How are you really feeling right now?",
		"What would you like to explore further?",
	},
}

// Prompts returns the candidate prompts for an emotion, falling back to the
// neutral list for unknown labels.
func Prompts(emotion string) []string {
	if prompts, ok := promptCatalog[emotion]; ok && len(prompts) > 0 {
		return prompts
	}
	return promptCatalog[EmotionNeutral]
}

// SelectPrompt picks deeper questions the further sentiment sits from neutral.
func SelectPrompt(emotion string, sentiment float64) string {
	prompts := Prompts(emotion)
	idx := int(math.Floor(math.Abs(sentiment-neutralBaseline) * 4))
	if idx > len(prompts)-1 {
		idx = len(prompts) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return prompts[idx]
}
