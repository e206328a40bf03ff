package limbic

import "time"

// Config collects the limbic loop's tunables.
type Config struct {
	HeartbeatInterval time.Duration // default 100ms
	StimulusQueueSize int           // bounded inbox capacity
	Surprise          SurpriseConfig
}

// SurpriseConfig tunes the predictive-coding surprise detector.
type SurpriseConfig struct {
	HistorySize      int     // ring buffer size, default 5
	BaselineSmoothing float32 // exponential smoothing factor, default 0.05
}

// DefaultConfig returns the specification's documented defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 100 * time.Millisecond,
		StimulusQueueSize: 64,
		Surprise: SurpriseConfig{
			HistorySize:       5,
			BaselineSmoothing: 0.05,
		},
	}
}
