// Package feedback implements the buffered top-down feedback path: signals
// generated by the reasoning layer are discounted for uncertainty, queued
// during waking hours, and only allowed to move medium/slow state once a
// pattern has repeated enough to survive temporal smoothing. Real updates
// happen during sleep consolidation, so a System 1 baseline is never
// corrupted by an occasional System 2 hallucination.
package feedback

import (
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/state"
)

const subsystem = "feedback"

// BufferConfig tunes the discounting and smoothing thresholds.
type BufferConfig struct {
	ConfidenceThreshold float32 // signals below this are discarded on arrival
	PatternThreshold    int     // minimum same-kind signals to survive consolidation
	MaxRetained         int     // trims oldest consolidated signals beyond this count
}

// DefaultBufferConfig mirrors the original implementation's defaults.
func DefaultBufferConfig() BufferConfig {
	return BufferConfig{ConfidenceThreshold: 0.6, PatternThreshold: 3, MaxRetained: 1000}
}

// Buffer accumulates FeedbackSignals during waking hours and only releases
// ConsolidatedPatterns once a kind has repeated enough times.
type Buffer struct {
	mu      sync.Mutex
	cfg     BufferConfig
	signals []state.FeedbackSignal
	nextID  uint64
}

// NewBuffer constructs a Buffer using DefaultBufferConfig.
func NewBuffer() *Buffer {
	return NewBufferWithConfig(DefaultBufferConfig())
}

// NewBufferWithConfig constructs a Buffer with an explicit BufferConfig.
func NewBufferWithConfig(cfg BufferConfig) *Buffer {
	return &Buffer{cfg: cfg}
}

// AddSignal applies uncertainty discounting immediately: a signal whose
// confidence falls below the threshold never enters the buffer at all.
func (b *Buffer) AddSignal(kind state.SignalKind, value, content string, confidence, emotionalContext float32) {
	if confidence < b.cfg.ConfidenceThreshold {
		logging.Debug(subsystem, "discounted signal kind=%s confidence=%.2f < %.2f", kind, confidence, b.cfg.ConfidenceThreshold)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.signals = append(b.signals, state.FeedbackSignal{
		ID:               itoa(b.nextID),
		Timestamp:        time.Now(),
		Kind:             kind,
		Value:            value,
		Content:          content,
		Confidence:       confidence,
		EmotionalContext: emotionalContext,
	})
}

// PendingCount reports the number of signals not yet consolidated.
func (b *Buffer) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.signals {
		if !s.Consolidated {
			n++
		}
	}
	return n
}

// groupKey distinguishes ValueJudgment signals by the specific value they
// target, so "honesty" reinforcement doesn't blend with "loyalty".
type groupKey struct {
	kind  state.SignalKind
	value string
}

// Consolidate groups pending signals by kind (and, for value judgments, by
// value name), keeps only groups that reached PatternThreshold occurrences,
// and marks every pending signal as consolidated regardless of outcome —
// a pattern that didn't repeat enough doesn't get a second chance from the
// same batch. Old consolidated signals beyond MaxRetained are trimmed.
func (b *Buffer) Consolidate() []state.ConsolidatedPattern {
	b.mu.Lock()
	defer b.mu.Unlock()

	groups := make(map[groupKey][]state.FeedbackSignal)
	for _, s := range b.signals {
		if s.Consolidated {
			continue
		}
		k := groupKey{kind: s.Kind, value: s.Value}
		groups[k] = append(groups[k], s)
	}

	var out []state.ConsolidatedPattern
	for k, group := range groups {
		count := len(group)
		if count < b.cfg.PatternThreshold {
			logging.Debug(subsystem, "pattern kind=%s value=%q has %d occurrences, below threshold %d", k.kind, k.value, count, b.cfg.PatternThreshold)
			continue
		}

		var sumConf, sumVal float32
		best := group[0]
		first, last := group[0].Timestamp, group[0].Timestamp
		for _, s := range group {
			sumConf += s.Confidence
			sumVal += s.EmotionalContext
			if s.Confidence > best.Confidence {
				best = s
			}
			if s.Timestamp.Before(first) {
				first = s.Timestamp
			}
			if s.Timestamp.After(last) {
				last = s.Timestamp
			}
		}

		out = append(out, state.ConsolidatedPattern{
			Kind:                  k.kind,
			Value:                 k.value,
			Count:                 count,
			AvgConfidence:         sumConf / float32(count),
			AvgValence:            sumVal / float32(count),
			RepresentativeContent: best.Content,
			FirstSeen:             first,
			LastSeen:              last,
		})
	}

	for i := range b.signals {
		b.signals[i].Consolidated = true
	}
	if len(b.signals) > b.cfg.MaxRetained {
		drop := len(b.signals) - b.cfg.MaxRetained
		b.signals = b.signals[drop:]
	}

	return out
}

// ClearPending discards all unconsolidated signals, e.g. after a crisis
// event makes them no longer representative of anything worth learning.
func (b *Buffer) ClearPending() {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.signals[:0]
	for _, s := range b.signals {
		if s.Consolidated {
			kept = append(kept, s)
		}
	}
	b.signals = kept
}

// RecentSignals returns up to count of the most recently added signals,
// newest first, for inspection/debugging.
func (b *Buffer) RecentSignals(count int) []state.FeedbackSignal {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.signals)
	if count > n {
		count = n
	}
	out := make([]state.FeedbackSignal, count)
	for i := 0; i < count; i++ {
		out[i] = b.signals[n-1-i]
	}
	return out
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
