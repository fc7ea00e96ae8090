package sentiment

const (
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionAnxious  = "anxious"
	EmotionStressed = "stressed"
	EmotionAngry    = "angry"
	EmotionNeutral  = "neutral"
)

const (
	strongIntensity   = 1.25
	moderateIntensity = 1.1
	negationFactor    = -0.5
	// non-happy matches pull the sentiment sum down by this share of their score
	negativeShare = 0.8
)

type EmotionCategory struct {
	Label    string
	Keywords []string
	Weight   float64
}

// Categories is iterated in this order everywhere; the order decides ties.
// Multi-word keywords are kept even though a single token can never contain them.
var Categories = []EmotionCategory{
	{
		Label: EmotionHappy,
		Keywords: []string{"happy", "joy", "joyful", "excited", "excitement", "good", "great", "amazing", "wonderful", "fantastic",
			"relaxed", "calm", "peaceful", "content", "satisfied", "pleased", "delighted", "cheerful", "grateful",
			"thankful", "blessed", "fortunate", "lucky", "proud", "accomplished", "successful", "winning", "achieved",
			"love", "loved", "loving", "appreciation", "optimistic", "hopeful", "energetic", "motivated", "inspired"},
		Weight: 1.3,
	},
	{
		Label: EmotionSad,
		Keywords: []string{"sad", "sadness", "down", "depressed", "depression", "tired", "exhausted", "hopeless", "helpless",
			"despair", "miserable", "unhappy", "lonely", "alone", "isolated", "empty", "numb", "crying", "tears",
			"hurt", "pain", "heartbroken", "disappointed", "disappointment", "regret", "grief", "loss", "lost"},
		Weight: 1.3,
	},
	{
		Label: EmotionAnxious,
		Keywords: []string{"anxious", "anxiety", "worried", "worry", "worrying", "nervous", "nervousness", "fear", "afraid", "scared",
			"panic", "panicking", "dread", "uneasy", "uncertain", "unsure", "doubt", "doubtful", "insecure",
			"overwhelmed", "restless", "tense", "tension", "concerned", "apprehensive", "paranoid"},
		Weight: 1.4,
	},
	{
		Label: EmotionStressed,
		Keywords: []string{"stressed", "stress", "stressful", "pressure", "pressured", "overwhelmed", "overwhelming", "burden",
			"burdened", "overworked", "exhausted", "drained", "burnt out", "burnout", "too much", "can't cope",
			"struggling", "struggle", "difficult", "hard", "demanding", "hectic", "chaotic", "rushed"},
		Weight: 1.3,
	},
	{
		Label: EmotionAngry,
		Keywords: []string{"angry", "anger", "mad", "frustrated", "frustration", "irritated", "irritation", "annoyed", "annoying",
			"furious", "rage", "outraged", "pissed", "upset", "agitated", "hostile", "resentful", "resentment",
			"bitter", "hatred", "hate", "disgusted", "disgust", "offended", "betrayed"},
		Weight: 1.2,
	},
}

var negations = toSet("not", "no", "never", "neither", "nobody", "nothing", "nowhere",
	"don't", "doesn't", "didn't", "won't", "wouldn't", "can't", "cannot", "couldn't")

var (
	strongIntensifiers = toSet("very", "extremely", "incredibly", "absolutely", "completely", "totally",
		"really", "so", "too", "deeply", "heavily")
	moderateIntensifiers = toSet("quite", "rather", "pretty", "fairly", "somewhat")
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsEmotion reports whether label is one of the category labels or neutral.
func IsEmotion(label string) bool {
	if label == EmotionNeutral {
		return true
	}
	for _, c := range Categories {
		if c.Label == label {
			return true
		}
	}
	return false
}

func isNegation(word string) bool {
	_, ok := negations[word]
	return ok
}

// intensityFor returns the multiplier implied by the word preceding a match.
func intensityFor(prev string) float64 {
	if _, ok := strongIntensifiers[prev]; ok {
		return strongIntensity
	}
	if _, ok := moderateIntensifiers[prev]; ok {
		return moderateIntensity
	}
	return 1.0
}
