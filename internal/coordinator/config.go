package coordinator

import (
	"time"

	"github.com/mneme-ai/organism/internal/feedback"
)

// Config parameterizes a Coordinator's lifecycle and maintenance policy.
type Config struct {
	Sleep feedback.SleepConfig

	// StateUpdateInterval is the tick cadence the host loop is expected to
	// drive tick() at. The coordinator itself does not start a ticker; cmd
	// wires this into a time.Ticker.
	StateUpdateInterval time.Duration

	// AutoSleep enables the hour-window + interaction-count auto transition
	// from Awake to Drowsy.
	AutoSleep bool

	// MinInteractionsBeforeSleep gates the auto transition alongside the
	// sleep window.
	MinInteractionsBeforeSleep int

	// SaveStateEveryNTicks and PruneHistoryEveryNTicks pace the Awake-branch
	// maintenance work in tick().
	SaveStateEveryNTicks  int
	PruneHistoryEveryNTicks int
	PruneMaxEntries       int
	PruneMaxAge           time.Duration

	// MaxEpisodeBuffer and EpisodeBufferTrimTo bound the in-memory narrative
	// episode buffer the way the original drains it: once it exceeds
	// MaxEpisodeBuffer entries, the oldest ones are dropped down to
	// EpisodeBufferTrimTo.
	MaxEpisodeBuffer    int
	EpisodeBufferTrimTo int
}

// DefaultConfig mirrors the original's defaults: a 2-6am sleep window, 10
// interactions before considering sleep, a one-second tick-interval hint,
// saving state every 6 ticks and pruning history every 360.
func DefaultConfig() Config {
	return Config{
		Sleep:                   feedback.DefaultSleepConfig(),
		StateUpdateInterval:     time.Second,
		AutoSleep:               true,
		MinInteractionsBeforeSleep: 10,
		SaveStateEveryNTicks:    6,
		PruneHistoryEveryNTicks: 360,
		PruneMaxEntries:         10000,
		PruneMaxAge:             7 * 24 * time.Hour,
		MaxEpisodeBuffer:        1000,
		EpisodeBufferTrimTo:     500,
	}
}
