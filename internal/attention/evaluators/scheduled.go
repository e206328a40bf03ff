// Package evaluators implements the concrete TriggerEvaluator
// implementations that feed the attention gate: scheduled events,
// rumination, the consciousness gate, metacognition, habit detection,
// social outreach, meaning-seeking, creativity, and curiosity exploration.
package evaluators

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

const scheduledSubsystem = "attention.scheduled"

// ScheduleEntry is one fixed-time entry in the schedule file.
type ScheduleEntry struct {
	Name             string `yaml:"name"`
	Hour             int    `yaml:"hour"`
	Minute           int    `yaml:"minute"`
	ToleranceMinutes int    `yaml:"tolerance_minutes"`
	Route            string `yaml:"route,omitempty"`
}

// matchesAt reports whether t falls within the entry's tolerance window.
func (e ScheduleEntry) matchesAt(t time.Time) bool {
	tolerance := e.ToleranceMinutes
	if tolerance <= 0 {
		tolerance = 5
	}
	currentSeconds := t.Hour()*3600 + t.Minute()*60 + t.Second()
	targetSeconds := e.Hour*3600 + e.Minute*60
	diff := currentSeconds - targetSeconds
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance*60
}

// Scheduled evaluates fixed-time entries loaded from a YAML file, hot-
// reloaded by mtime, with a one-hour per-entry cooldown. Grounded on the
// teacher's internal/reflex/engine.go file-mtime hot-reload pattern and
// original_source's scheduled.rs ScheduleEntry/evaluate_at logic.
type Scheduled struct {
	path string

	mu         sync.Mutex
	entries    []ScheduleEntry
	lastLoaded time.Time
	loadedMod  time.Time
	lastFired  map[string]time.Time
}

// NewScheduled constructs a Scheduled evaluator backed by the YAML file at
// path. If the file does not exist, it starts with a default
// morning-greeting/evening-summary pair, matching original_source's
// ScheduledTriggerEvaluator::new() defaults.
func NewScheduled(path string) *Scheduled {
	s := &Scheduled{
		path: path,
		entries: []ScheduleEntry{
			{Name: "morning_greeting", Hour: 8, Minute: 0, ToleranceMinutes: 5},
			{Name: "evening_summary", Hour: 21, Minute: 0, ToleranceMinutes: 5},
		},
		lastFired: make(map[string]time.Time),
	}
	s.reload()
	return s
}

func (s *Scheduled) reload() {
	info, err := os.Stat(s.path)
	if err != nil {
		return // keep defaults; the file may not exist yet
	}
	if !info.ModTime().After(s.loadedMod) {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		logging.Warn(scheduledSubsystem, "read %s: %v", s.path, err)
		return
	}
	var entries []ScheduleEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		logging.Warn(scheduledSubsystem, "parse %s: %v", s.path, err)
		return
	}
	s.entries = entries
	s.loadedMod = info.ModTime()
}

// Evaluate checks every schedule entry against the current local time.
func (s *Scheduled) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload()

	now := time.Now()
	var out []ports.Trigger
	for _, e := range s.entries {
		if last, ok := s.lastFired[e.Name]; ok && now.Sub(last) < time.Hour {
			continue
		}
		if !e.matchesAt(now) {
			continue
		}
		s.lastFired[e.Name] = now
		out = append(out, ports.Trigger{
			Kind:         ports.TriggerScheduled,
			ScheduleName: e.Name,
			ScheduleExpr: fmt.Sprintf("%02d:%02d", e.Hour, e.Minute),
			Route:        e.Route,
		})
	}
	return out, nil
}

func (s *Scheduled) Name() string { return "ScheduledEvaluator" }

var _ ports.TriggerEvaluator = (*Scheduled)(nil)
