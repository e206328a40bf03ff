package coordinator

import "strings"

// positiveWords, negativeWords, and intensifiers are the keyword lists a
// stimulus's sentiment is scored against.
var (
	positiveWords = []string{"happy", "glad", "great", "love", "like", "awesome", "good", "thanks", "thank you", "haha", "lol", "excited", "wonderful"}
	negativeWords = []string{"sad", "upset", "hate", "terrible", "awful", "bad", "annoyed", "angry", "mad", "frustrated", "worried", "anxious"}
	intensifiers  = []string{"very", "extremely", "super", "really", "so ", "incredibly", "!"}
)

// analyzeSentiment scores free text into a (valence, intensity) pair the
// same way a stimulus is scored for limbic processing: count keyword hits,
// normalize valence by hit volume, and floor/ceiling intensity so even a
// flat message still registers a faint signal.
func analyzeSentiment(text string) (valence, intensity float32) {
	lower := strings.ToLower(text)

	pos := float32(countHits(lower, positiveWords))
	neg := float32(countHits(lower, negativeWords))
	intense := float32(countHits(lower, intensifiers))

	valence = (pos - neg) / (pos + neg + 1)
	intensity = (pos + neg + intense) / 5
	if intensity > 1 {
		intensity = 1
	}
	if intensity < 0.1 {
		intensity = 0.1
	}
	return valence, intensity
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
