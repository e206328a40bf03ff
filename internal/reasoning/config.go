package reasoning

import "time"

// RetryConfig is the transient-tool-error backoff policy.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Factor       float64
	MaxDelay     time.Duration
}

// Config parameterizes one Orchestrator.
type Config struct {
	// Base completion parameters before modulation is applied.
	BaseMaxTokens   int
	BaseTemperature float32

	// ContextBudgetChars is the unmodulated per-call character budget; each
	// layer's share is sized against contextBudgetChars * modulation.ContextBudgetFactor.
	ContextBudgetChars int

	MaxToolSteps int
	ShellTimeout time.Duration

	ExtractionMaxTokens     int
	ExtractionTemperature   float32
	MetacognitionMaxTokens  int
	MetacognitionTemperature float32

	Retry RetryConfig

	DailyTokenLimit   int
	MonthlyTokenLimit int
}

// DefaultConfig mirrors the original's reasoning-engine defaults.
func DefaultConfig() Config {
	return Config{
		BaseMaxTokens:      1024,
		BaseTemperature:    0.8,
		ContextBudgetChars: 6000,
		MaxToolSteps:       8,
		ShellTimeout:       30 * time.Second,

		ExtractionMaxTokens:      512,
		ExtractionTemperature:    0.1,
		MetacognitionMaxTokens:   512,
		MetacognitionTemperature: 0.2,

		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			Factor:       2,
			MaxDelay:     30 * time.Second,
		},

		DailyTokenLimit:   200000,
		MonthlyTokenLimit: 4000000,
	}
}
