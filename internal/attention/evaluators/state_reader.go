package evaluators

import "github.com/mneme-ai/organism/internal/state"

// StateReader is the narrow read-only view evaluators hold of the live
// organism state, satisfied structurally by *limbic.Loop's Snapshot method.
// Evaluators never get a pointer into live state — only a deep copy — so a
// failing or slow evaluator can never block the limbic loop's single
// mutator goroutine.
type StateReader interface {
	Snapshot() state.OrganismState
}
