package feedback

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mneme-ai/organism/internal/state"
)

// SelectDreamSeeds picks up to n episodes weighted toward the strongest
// memories, mirroring the original's "recall weighted by strength" seed
// selection. Selection is deterministic (strongest first) rather than
// stochastic, since dream generation itself already varies by mood and
// fragment content.
func SelectDreamSeeds(episodes []state.Episode, n int) []state.DreamSeed {
	sorted := make([]state.Episode, len(episodes))
	copy(sorted, episodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Strength > sorted[j].Strength })

	if n > len(sorted) {
		n = len(sorted)
	}
	seeds := make([]state.DreamSeed, n)
	for i := 0; i < n; i++ {
		e := sorted[i]
		seeds[i] = state.DreamSeed{ID: e.ID, Author: e.Author, Body: e.Body, Strength: e.Strength}
	}
	return seeds
}

// GenerateDream stitches 2 or more weighted memory seeds into a dream
// narrative using a rule-based template chosen by current mood bias. It
// returns ok=false if fewer than two seeds are given — a single fragment
// isn't enough to weave a scene out of. Dreams are stored with ordinary
// episode strength and can resurface later like any other memory.
func GenerateDream(seeds []state.DreamSeed, mood float32) (state.DreamEpisode, bool) {
	if len(seeds) < 2 {
		return state.DreamEpisode{}, false
	}

	fragments := make([]string, len(seeds))
	for i, s := range seeds {
		fragments[i] = extractFragment(s.Body)
	}

	narrative := buildDreamNarrative(mood, fragments)
	tone := computeEmotionalTone(seeds, mood)

	sourceIDs := make([]string, len(seeds))
	for i, s := range seeds {
		sourceIDs[i] = s.ID
	}

	return state.DreamEpisode{
		Narrative:     narrative,
		SourceIDs:     sourceIDs,
		EmotionalTone: tone,
	}, true
}

// extractFragment truncates body to roughly 80 runes, preferring to break
// at the last sentence-ending punctuation within that window.
func extractFragment(body string) string {
	r := []rune(strings.TrimSpace(body))
	if len(r) <= 80 {
		return string(r)
	}
	window := r[:80]
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', ',', '!', '?', ';':
			return string(window[:i+1])
		}
	}
	return string(window) + "…"
}

func buildDreamNarrative(mood float32, fragments []string) string {
	f1 := fragmentAt(fragments, 0)
	f2 := fragmentAt(fragments, 1)
	f3 := fragmentAt(fragments, 2)

	switch {
	case mood > 0.3:
		return positiveDreamTemplate(f1, f2, f3)
	case mood < -0.3:
		return negativeDreamTemplate(f1, f2, f3)
	case len(fragments) >= 3:
		return chaoticDreamTemplate(f1, f2, f3)
	default:
		return neutralDreamTemplate(f1, f2)
	}
}

func fragmentAt(fragments []string, i int) string {
	if i < len(fragments) {
		return fragments[i]
	}
	return ""
}

func positiveDreamTemplate(f1, f2, f3 string) string {
	if f3 == "" {
		return fmt.Sprintf("Dreamed of something warm... %s... then the scene shifted, %s... woke up with a soft, contented feeling.", f1, f2)
	}
	return fmt.Sprintf("Dreamed of something warm... %s... then the scene shifted, %s... and at the edges, something like %s... woke up with a soft, contented feeling.", f1, f2, f3)
}

func negativeDreamTemplate(f1, f2, f3 string) string {
	if f3 == "" {
		return fmt.Sprintf("An uneasy dream... %s... then suddenly, %s... woke up still a little unsettled.", f1, f2)
	}
	return fmt.Sprintf("An uneasy dream... %s... then suddenly, %s... then %s... woke up still a little unsettled.", f1, f2, f3)
}

func chaoticDreamTemplate(f1, f2, f3 string) string {
	return fmt.Sprintf("A fragmented dream, %s and %s tangled together, no clear order... and %s somewhere in there too... only scraps remained on waking.", f1, f2, f3)
}

func neutralDreamTemplate(f1, f2 string) string {
	return fmt.Sprintf("Had a dream... something about %s... then it turned into %s... the details are already fading.", f1, f2)
}

// computeEmotionalTone maps average seed strength (a proxy for how
// emotionally charged a memory was) to a base tone, then shifts it by mood
// bias.
func computeEmotionalTone(seeds []state.DreamSeed, mood float32) float32 {
	if len(seeds) == 0 {
		return clampSigned(mood)
	}
	var total float32
	for _, s := range seeds {
		total += s.Strength
	}
	avg := total / float32(len(seeds))
	base := (avg - 0.5) * 0.8
	return clampSigned(base + mood*0.5)
}
