package feedback

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mneme-ai/organism/internal/state"
)

// NarrativeConfig tunes chapter weaving and crisis detection.
type NarrativeConfig struct {
	MinEpisodesPerChapter int
	CrisisMinEpisodes     int
	CrisisDeviation        float32 // deviation from narrative_bias that counts as a crisis
	ConflictMinOccurrences int
}

// DefaultNarrativeConfig mirrors the original weaver's thresholds.
func DefaultNarrativeConfig() NarrativeConfig {
	return NarrativeConfig{
		MinEpisodesPerChapter: 10,
		CrisisMinEpisodes:     5,
		CrisisDeviation:        0.6,
		ConflictMinOccurrences: 3,
	}
}

// themeKeywords maps a theme name to the English surface forms that signal
// it in episode content. Kept intentionally small and literal, matching the
// original's keyword-list approach rather than anything embedding-based.
var themeKeywords = map[string][]string{
	"growth":     {"learned", "realized", "understood", "figured out", "discovered", "makes sense now"},
	"connection": {"friend", "chatted", "shared", "together", "care about", "miss"},
	"challenge":  {"difficult", "problem", "struggled", "failed", "mistake", "frustrating"},
	"joy":        {"happy", "excited", "fun", "laughed", "delighted", "great time"},
	"reflection": {"thinking about", "wonder if", "it seems", "maybe", "meaning of"},
}

var themeTitleWord = map[string]string{
	"growth":     "Growth",
	"connection": "Connections",
	"challenge":  "Challenges",
	"joy":        "Joy",
	"reflection": "Reflection",
}

// Narrative weaves episode digests into autobiographical chapters and
// watches for narrative crises: stretches where the recent emotional
// average drifts far from what the organism believes its own story to be.
type Narrative struct {
	cfg           NarrativeConfig
	nextChapterID int
}

// NewNarrative constructs a Narrative weaver using DefaultNarrativeConfig.
func NewNarrative() *Narrative {
	return NewNarrativeWithConfig(DefaultNarrativeConfig())
}

// NewNarrativeWithConfig constructs a Narrative weaver with an explicit
// Config.
func NewNarrativeWithConfig(cfg NarrativeConfig) *Narrative {
	return &Narrative{cfg: cfg, nextChapterID: 1}
}

// WeaveChapter produces a NarrativeChapter from episodes, or reports ok=false
// if there aren't enough episodes to weave one yet.
func (n *Narrative) WeaveChapter(episodes []state.EpisodeDigest) (state.NarrativeChapter, bool) {
	if len(episodes) < n.cfg.MinEpisodesPerChapter {
		return state.NarrativeChapter{}, false
	}

	periodStart, periodEnd := episodes[0].Timestamp, episodes[0].Timestamp
	var sumValence float32
	for _, e := range episodes {
		if e.Timestamp.Before(periodStart) {
			periodStart = e.Timestamp
		}
		if e.Timestamp.After(periodEnd) {
			periodEnd = e.Timestamp
		}
		sumValence += e.EmotionalValence
	}
	tone := sumValence / float32(len(episodes))

	themes := n.detectThemes(episodes)
	people := extractPeople(episodes)
	turningPoints := n.detectTurningPoints(episodes)
	content := n.buildContent(episodes, themes, turningPoints)
	title := buildTitle(themes, tone, periodStart)

	id := n.nextChapterID
	n.nextChapterID++

	return state.NarrativeChapter{
		ID:            fmt.Sprintf("chapter-%d", id),
		Title:         title,
		Content:       content,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		EmotionalTone: tone,
		Themes:        themes,
		People:        people,
		TurningPoints: turningPoints,
	}, true
}

// detectThemes counts keyword hits per theme and keeps themes present in
// at least 20% of episodes (minimum 1), returning up to the top 3 by count.
func (n *Narrative) detectThemes(episodes []state.EpisodeDigest) []string {
	counts := make(map[string]int)
	for _, e := range episodes {
		lower := strings.ToLower(e.Content)
		for theme, keywords := range themeKeywords {
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					counts[theme]++
					break
				}
			}
		}
	}

	threshold := int(float32(len(episodes)) * 0.2)
	if threshold < 1 {
		threshold = 1
	}

	type scored struct {
		theme string
		count int
	}
	var candidates []scored
	for theme, count := range counts {
		if count >= threshold {
			candidates = append(candidates, scored{theme, count})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].count > candidates[j].count })

	var themes []string
	for i, c := range candidates {
		if i >= 3 {
			break
		}
		themes = append(themes, c.theme)
	}
	return themes
}

func extractPeople(episodes []state.EpisodeDigest) []string {
	seen := make(map[string]bool)
	var people []string
	for _, e := range episodes {
		if e.Author == "" || e.Author == "self" || e.Author == "system" {
			continue
		}
		if !seen[e.Author] {
			seen[e.Author] = true
			people = append(people, e.Author)
		}
	}
	sort.Strings(people)
	return people
}

// detectTurningPoints uses a trailing 3-episode window to flag sudden
// emotional shifts, keeping the top 3 by absolute impact.
func (n *Narrative) detectTurningPoints(episodes []state.EpisodeDigest) []state.TurningPoint {
	const window = 3
	if len(episodes) < window+1 {
		return nil
	}

	var points []state.TurningPoint
	for i := window; i < len(episodes); i++ {
		var sum float32
		for _, e := range episodes[i-window : i] {
			sum += e.EmotionalValence
		}
		prevAvg := sum / float32(window)
		shift := episodes[i].EmotionalValence - prevAvg
		if absF32(shift) <= 0.5 {
			continue
		}
		direction := "soured"
		if shift > 0 {
			direction = "brightened"
		}
		points = append(points, state.TurningPoint{
			Timestamp: episodes[i].Timestamp,
			Content:   fmt.Sprintf("mood %s: %s", direction, truncateRunes(episodes[i].Content, 50)),
			Impact:    shift,
		})
	}

	sort.Slice(points, func(i, j int) bool { return absF32(points[i].Impact) > absF32(points[j].Impact) })
	if len(points) > 3 {
		points = points[:3]
	}
	return points
}

func (n *Narrative) buildContent(episodes []state.EpisodeDigest, themes []string, turningPoints []state.TurningPoint) string {
	var b strings.Builder
	if len(themes) > 0 {
		b.WriteString(fmt.Sprintf("This stretch was mostly about %s. ", strings.Join(themes, ", ")))
	}
	b.WriteString(fmt.Sprintf("%d interactions happened during this time. ", len(episodes)))

	if len(turningPoints) > 0 {
		b.WriteString("A few moments stood out: ")
		for _, tp := range turningPoints {
			b.WriteString(tp.Content + ". ")
		}
	}

	var positive, negative int
	for _, e := range episodes {
		if e.EmotionalValence > 0.2 {
			positive++
		} else if e.EmotionalValence < -0.2 {
			negative++
		}
	}
	neutral := len(episodes) - positive - negative
	b.WriteString(fmt.Sprintf("Overall tone: %d upbeat, %d difficult, %d even-keeled.", positive, negative, neutral))

	return b.String()
}

func buildTitle(themes []string, tone float32, start time.Time) string {
	toneWord := "A Quiet"
	if tone > 0.3 {
		toneWord = "A Good"
	} else if tone < -0.3 {
		toneWord = "A Hard"
	}

	themeWord := "Stretch"
	if len(themes) > 0 {
		if w, ok := themeTitleWord[themes[0]]; ok {
			themeWord = w
		}
	}

	return fmt.Sprintf("%s: %s Time for %s", start.Format("Jan 2006"), toneWord, themeWord)
}

// DetectCrisis flags either a severe mismatch between recent emotional
// average and the organism's current narrative bias, or repeated mentions
// of unresolved value conflict, returning ok=false if neither condition
// holds.
func (n *Narrative) DetectCrisis(recent []state.EpisodeDigest, narrativeBias float32) (state.CrisisEvent, bool) {
	if len(recent) < n.cfg.CrisisMinEpisodes {
		return state.CrisisEvent{}, false
	}

	var sum float32
	for _, e := range recent {
		sum += e.EmotionalValence
	}
	recentAvg := sum / float32(len(recent))
	deviation := absF32(recentAvg - narrativeBias)

	if deviation > n.cfg.CrisisDeviation {
		return state.CrisisEvent{
			Description: fmt.Sprintf("narrative mismatch: recent mood (%.2f) sharply disagrees with self-story (%.2f)", recentAvg, narrativeBias),
			Intensity:   deviation,
			Timestamp:   time.Now(),
		}, true
	}

	conflictMarkers := []string{"don't know what to", "torn between", "conflicted", "contradicts itself", "can't reconcile"}
	conflictCount := 0
	for _, e := range recent {
		lower := strings.ToLower(e.Content)
		for _, m := range conflictMarkers {
			if strings.Contains(lower, m) {
				conflictCount++
				break
			}
		}
	}

	if conflictCount >= n.cfg.ConflictMinOccurrences {
		return state.CrisisEvent{
			Description: "value conflict: repeated signs of unresolved internal contradiction",
			Intensity:   0.5 + float32(conflictCount)*0.1,
			Timestamp:   time.Now(),
		}, true
	}

	return state.CrisisEvent{}, false
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
