package limbic

import (
	"context"
	"testing"
	"time"

	"github.com/mneme-ai/organism/internal/dynamics"
	"github.com/mneme-ai/organism/internal/state"
)

func TestSurpriseDetectorRepeatedContentLowersSurprise(t *testing.T) {
	d := NewSurpriseDetector(SurpriseConfig{HistorySize: 5, BaselineSmoothing: 0.2})
	first := d.ComputeSurprise("hello there")
	var last float32
	for i := 0; i < 10; i++ {
		last = d.ComputeSurprise("hello there")
	}
	if last >= first {
		t.Fatalf("expected surprise to decrease as content repeats: first=%v last=%v", first, last)
	}
}

func TestSurpriseDetectorBoundedOutput(t *testing.T) {
	d := NewSurpriseDetector(SurpriseConfig{HistorySize: 3, BaselineSmoothing: 0.1})
	for _, content := range []string{"a", "completely different text entirely", "a", "zzz", ""} {
		s := d.ComputeSurprise(content)
		if s < 0 || s > 1 {
			t.Fatalf("surprise out of [0,1]: %v", s)
		}
	}
}

func TestLoopProcessesStimulusAndPublishesMarker(t *testing.T) {
	l := New(dynamics.New(dynamics.DefaultConfig()), DefaultConfig(), state.NewDefault())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	_, notify := l.Subscribe()
	if err := l.ReceiveStimulus(ctx, "hello", 0.5, 0.6, true, nil); err != nil {
		t.Fatalf("ReceiveStimulus: %v", err)
	}

	select {
	case <-notify:
	case <-time.After(2 * time.Second):
		t.Fatal("marker never updated after stimulus")
	}
}

func TestSetStateOverridesLiveState(t *testing.T) {
	l := New(dynamics.New(dynamics.DefaultConfig()), DefaultConfig(), state.NewDefault())
	custom := state.NewDefault()
	custom.Fast.Energy = 0.1
	l.SetState(custom)
	if l.GetMarker().Energy != 0.1 {
		t.Fatalf("expected SetState to be reflected in marker, got %v", l.GetMarker().Energy)
	}
}
