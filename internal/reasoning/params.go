package reasoning

import (
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

// deriveCompletionParams builds the modulated CompletionParams for one LLM
// call: max_tokens = base * modulation.max_tokens_factor, temperature =
// base + modulation.temperature_delta.
func deriveCompletionParams(cfg Config, mod state.ModulationVector) ports.CompletionParams {
	maxTokens := int(float32(cfg.BaseMaxTokens) * mod.MaxTokensFactor)
	if maxTokens < 64 {
		maxTokens = 64
	}
	temp := cfg.BaseTemperature + mod.TemperatureDelta
	if temp < 0 {
		temp = 0
	}
	if temp > 1 {
		temp = 1
	}
	return ports.CompletionParams{
		MaxTokens:   maxTokens,
		Temperature: temp,
	}
}

// contextBudget returns the per-call character budget after modulation.
func contextBudget(cfg Config, mod state.ModulationVector) int {
	budget := int(float32(cfg.ContextBudgetChars) * mod.ContextBudgetFactor)
	if budget < 500 {
		budget = 500
	}
	return budget
}
