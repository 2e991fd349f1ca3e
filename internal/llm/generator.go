package llm

import (
	"context"
)

// Result is the structured outcome of one generation call.
type Result struct {
	Stance     Stance  `json:"stance"`
	Confidence float64 `json:"confidence"` // [0,1]
	Rationale  string  `json:"rationale"`
}

type Stance string

const (
	StanceBullish Stance = "bullish"
	StanceBearish Stance = "bearish"
	StanceNeutral Stance = "neutral"
)

// Generator produces a trading stance for a prompt context. Implementations
// must be safe for concurrent use; callers must treat any error as a neutral
// stance, never as fatal.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}

// Neutral is the fallback result for failed or timed out generations.
func Neutral(reason string) Result {
	return Result{Stance: StanceNeutral, Confidence: 0, Rationale: reason}
}
