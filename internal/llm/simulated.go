package llm

import (
	"context"
	"fmt"
	"hash/fnv"
)

// SimulatedGenerator produces deterministic stances from the prompt alone, so
// test suites and offline runs never depend on network access. The same
// prompt and seed always yield the same result.
type SimulatedGenerator struct {
	seed int64
}

func NewSimulatedGenerator(seed int64) *SimulatedGenerator {
	return &SimulatedGenerator{seed: seed}
}

func (g *SimulatedGenerator) Generate(_ context.Context, prompt string) (Result, error) {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%s", g.seed, prompt)
	sum := h.Sum64()

	var stance Stance
	switch sum % 3 {
	case 0:
		stance = StanceBullish
	case 1:
		stance = StanceBearish
	default:
		stance = StanceNeutral
	}

	// Spread confidence over [0.50, 0.99] so aggregation sees varied weights.
	confidence := 0.5 + float64(sum%50)/100.0

	return Result{
		Stance:     stance,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("simulated %s stance at %.0f%% confidence", stance, confidence*100),
	}, nil
}
