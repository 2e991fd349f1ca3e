package analysts

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"hedgesim/internal/llm"
	"hedgesim/internal/marketdata"
	"hedgesim/types"
)

// Analyst is one independent strategy producing a trading opinion for a
// ticker on a date. Evaluate is a pure function of the snapshot: it sees
// nothing dated after the snapshot's date, and it never fails: internal
// errors (including language model calls) degrade to a hold signal with zero
// confidence.
type Analyst interface {
	ID() string
	Evaluate(ctx context.Context, snap *marketdata.Snapshot) types.Signal
}

// Deps are the run-scoped collaborators handed to every analyst at
// construction. There is no ambient global state.
type Deps struct {
	Generator llm.Generator
	Log       zerolog.Logger
}

type constructor func(Deps) Analyst

var registry = map[string]constructor{
	"fundamentals": func(d Deps) Analyst { return NewFundamentalsAnalyst(d) },
	"valuation":    func(d Deps) Analyst { return NewValuationAnalyst(d) },
	"sentiment":    func(d Deps) Analyst { return NewSentimentAnalyst(d) },
	"technicals":   func(d Deps) Analyst { return NewTechnicalsAnalyst(d) },
	"volatility":   func(d Deps) Analyst { return NewVolatilityAnalyst(d) },
}

// Available returns the registered analyst IDs, sorted.
func Available() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Select builds the analyst set named by ids, preserving order. The order is
// significant: it defines tie-break priority during aggregation.
func Select(ids []string, deps Deps) ([]Analyst, error) {
	out := make([]Analyst, 0, len(ids))
	for _, id := range ids {
		build, ok := registry[id]
		if !ok {
			return nil, fmt.Errorf("unknown analyst %q (available: %v)", id, Available())
		}
		out = append(out, build(deps))
	}
	return out, nil
}
