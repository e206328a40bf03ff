package feedback

import (
	"testing"
	"time"

	"github.com/mneme-ai/organism/internal/state"
)

func digest(author, content string, valence float32, offset time.Duration) state.EpisodeDigest {
	return state.EpisodeDigest{
		Timestamp:        time.Now().Add(offset),
		Author:           author,
		Content:          content,
		EmotionalValence: valence,
	}
}

func TestThemeDetection(t *testing.T) {
	n := NewNarrative()
	episodes := []state.EpisodeDigest{
		digest("user", "I learned a lot of new things today", 0.5, 0),
		digest("user", "I discovered an interesting pattern", 0.6, time.Minute),
		digest("user", "finally understood this concept, it makes sense now", 0.7, 2*time.Minute),
	}
	themes := n.detectThemes(episodes)
	found := false
	for _, th := range themes {
		if th == "growth" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected growth theme, got %+v", themes)
	}
}

func TestWeaveChapterRequiresMinimumEpisodes(t *testing.T) {
	n := NewNarrative()
	episodes := make([]state.EpisodeDigest, 3)
	for i := range episodes {
		episodes[i] = digest("user", "chatting", 0.1, time.Duration(i)*time.Minute)
	}
	_, ok := n.WeaveChapter(episodes)
	if ok {
		t.Fatalf("expected no chapter below MinEpisodesPerChapter")
	}
}

func TestTurningPointDetection(t *testing.T) {
	n := NewNarrative()
	var episodes []state.EpisodeDigest
	for i := 0; i < 5; i++ {
		episodes = append(episodes, digest("user", "ordinary chat", 0.0, time.Duration(i)*time.Minute))
	}
	episodes = append(episodes, digest("user", "so happy about this!", 0.9, 6*time.Minute))

	points := n.detectTurningPoints(episodes)
	if len(points) == 0 {
		t.Fatalf("expected at least one turning point")
	}
	if points[0].Impact <= 0 {
		t.Fatalf("expected positive impact for upward shift, got %f", points[0].Impact)
	}
}

func TestCrisisDetectionOnMismatch(t *testing.T) {
	n := NewNarrative()
	var episodes []state.EpisodeDigest
	for i := 0; i < 5; i++ {
		episodes = append(episodes, digest("user", "feeling pretty bad about everything", -0.8, time.Duration(i)*time.Minute))
	}
	_, ok := n.DetectCrisis(episodes, 0.5)
	if !ok {
		t.Fatalf("expected crisis on narrative/mood mismatch")
	}
}

func TestCrisisDetectionOnValueConflict(t *testing.T) {
	n := NewNarrative()
	var episodes []state.EpisodeDigest
	for i := 0; i < 5; i++ {
		episodes = append(episodes, digest("user", "torn between two choices, don't know what to do", 0.0, time.Duration(i)*time.Minute))
	}
	_, ok := n.DetectCrisis(episodes, 0.0)
	if !ok {
		t.Fatalf("expected crisis on repeated value conflict")
	}
}

func TestNoCrisisWhenAligned(t *testing.T) {
	n := NewNarrative()
	var episodes []state.EpisodeDigest
	for i := 0; i < 5; i++ {
		episodes = append(episodes, digest("user", "a calm ordinary day", 0.1, time.Duration(i)*time.Minute))
	}
	_, ok := n.DetectCrisis(episodes, 0.0)
	if ok {
		t.Fatalf("expected no crisis when recent mood matches narrative bias")
	}
}
