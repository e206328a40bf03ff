// Package limbic owns the organism's live state. A single background task
// applies stimuli and idle ticks; external callers enqueue stimuli, read
// the latest published marker, subscribe to updates, or replace the whole
// state through SetState.
package limbic

import (
	"context"
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/dynamics"
	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/state"
	"github.com/mneme-ai/organism/internal/watch"
)

const subsystem = "limbic"

// stimulusEnvelope is what arrives on the bounded inbox.
type stimulusEnvelope struct {
	content  string
	valence  float32
	intensity float32
	isSocial bool
	violated []string
	done     chan struct{}
}

// Loop owns OrganismState and the surprise detector behind this package's
// single background task. Stimuli and ticks are applied inside Run;
// SetState is the one write from outside it, and everything else is a
// thread-safe read or a channel send.
type Loop struct {
	cfg    Config
	engine dynamics.Engine

	mu    sync.RWMutex
	state state.OrganismState

	surprise *SurpriseDetector

	lastInteraction time.Time

	stimulusCh chan stimulusEnvelope
	marker     *watch.Cell[state.SomaticMarker]
}

// New constructs a Loop seeded with the given initial state.
func New(engine dynamics.Engine, cfg Config, initial state.OrganismState) *Loop {
	return &Loop{
		cfg:             cfg,
		engine:          engine,
		state:           initial,
		surprise:        NewSurpriseDetector(cfg.Surprise),
		lastInteraction: time.Now(),
		stimulusCh:      make(chan stimulusEnvelope, cfg.StimulusQueueSize),
		marker:          watch.NewCell(initial.Marker()),
	}
}

// ReceiveStimulus enqueues a stimulus for processing by the background
// loop. It blocks if the bounded inbox is full — backpressure is
// deliberate, per the core's shared-resource policy. Returns ctx.Err() if
// ctx is cancelled first.
func (l *Loop) ReceiveStimulus(ctx context.Context, content string, valence, intensity float32, isSocial bool, violated []string) error {
	env := stimulusEnvelope{content: content, valence: valence, intensity: intensity, isSocial: isSocial, violated: violated}
	select {
	case l.stimulusCh <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessStimulusSync enqueues a stimulus like ReceiveStimulus but waits for
// the background loop to finish processing it before returning the
// resulting marker. Used by callers (the coordinator) that need the
// post-step marker to record alongside an episode.
func (l *Loop) ProcessStimulusSync(ctx context.Context, content string, valence, intensity float32, isSocial bool, violated []string) (state.SomaticMarker, error) {
	env := stimulusEnvelope{content: content, valence: valence, intensity: intensity, isSocial: isSocial, violated: violated, done: make(chan struct{})}
	select {
	case l.stimulusCh <- env:
	case <-ctx.Done():
		return state.SomaticMarker{}, ctx.Err()
	}

	select {
	case <-env.done:
		return l.GetMarker(), nil
	case <-ctx.Done():
		return state.SomaticMarker{}, ctx.Err()
	}
}

// GetMarker is a cheap read of the latest published SomaticMarker.
func (l *Loop) GetMarker() state.SomaticMarker {
	return l.marker.Get()
}

// Subscribe returns the current marker and a channel closed the next time a
// fresh marker is published.
func (l *Loop) Subscribe() (state.SomaticMarker, <-chan struct{}) {
	return l.marker.Subscribe()
}

// SetState overwrites the live state directly from the caller's goroutine.
// It serves restore paths and the coordinator's sleep-consolidation and
// tick updates; it bypasses the dynamics engine entirely.
func (l *Loop) SetState(s state.OrganismState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
	l.marker.Publish(s.Marker())
}

// Snapshot returns a deep copy of the live state for persistence.
func (l *Loop) Snapshot() state.OrganismState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

// Run drives the heartbeat and stimulus processing until ctx is cancelled.
// All state mutation happens here, on a single goroutine.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-l.stimulusCh:
			l.handleStimulus(env)
		case <-ticker.C:
			l.handleTick()
		}
	}
}

func (l *Loop) handleStimulus(env stimulusEnvelope) {
	now := time.Now()
	if env.isSocial {
		l.lastInteraction = now
	}

	surprise := l.surprise.ComputeSurprise(env.content)
	in := state.SensoryInput{
		ContentValence:   env.valence,
		ContentIntensity: env.intensity,
		Surprise:         surprise,
		IsSocial:         env.isSocial,
		ViolatedValues:   env.violated,
	}

	l.mu.Lock()
	dt := float32(now.Sub(l.state.LastUpdated).Seconds())
	if dt <= 0 || dt > 3600 {
		dt = 1 // clock skew or first call: take a conservative single-second step
	}
	s := l.engine.Step(l.state, in, dt)
	if len(env.violated) > 0 {
		s = l.engine.ApplyMoralCost(s, env.violated)
	}
	s.Touch(now)
	l.state = s
	marker := s.Marker()
	l.mu.Unlock()

	l.marker.Publish(marker)
	if env.done != nil {
		close(env.done)
	}
	logging.Debug(subsystem, "stimulus processed: surprise=%.2f stress=%.2f", surprise, marker.Stress)
}

func (l *Loop) handleTick() {
	now := time.Now()
	timeAlone := now.Sub(l.lastInteraction).Seconds()

	delay := float32(0)
	if timeAlone > 120 {
		delay = clamp01(float32((timeAlone - 120) / 600))
	}

	idle := state.SensoryInput{ResponseDelayFactor: delay}

	l.mu.Lock()
	dt := float32(now.Sub(l.state.LastUpdated).Seconds())
	if dt <= 0 || dt > 3600 {
		dt = float32(l.cfg.HeartbeatInterval.Seconds())
	}
	s := l.engine.Step(l.state, idle, dt)
	s.Touch(now)
	l.state = s
	marker := s.Marker()
	l.mu.Unlock()

	l.marker.Publish(marker)
}
