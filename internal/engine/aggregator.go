package engine

import (
	"fmt"
	"sort"
	"strings"

	"hedgesim/types"
)

// Verdict is the aggregate direction for one ticker on one date. Action is
// one of BUY, SELL or HOLD; the allocator later translates a SELL verdict on
// a short book into COVER and a fresh SELL into SHORT where permitted.
type Verdict struct {
	Action     types.Action
	Confidence float64
	Rationale  string
}

// Aggregate reduces analyst signals to a single verdict by confidence-weighted
// vote. Signals are bucketed as bullish (BUY, COVER), bearish (SELL, SHORT) or
// neutral (HOLD), and the bucket with the highest summed weight wins.
// Zero-confidence signals carry no weight; all-zero weight resolves to hold.
//
// priority lists analyst IDs in configured order. Signals are reduced in that
// order, so the verdict, its tie-breaks and its float rounding are all
// independent of the input slice order: a tie between buckets goes to the
// bucket of the highest-priority weighted signal among the tied buckets.
func Aggregate(signals []types.Signal, priority []string) Verdict {
	ordered := orderByPriority(signals, priority)

	var bullish, bearish, neutral float64
	for _, sig := range ordered {
		if sig.Confidence <= 0 {
			continue
		}
		switch bucketOf(sig.Action) {
		case types.ActionBuy:
			bullish += sig.Confidence
		case types.ActionSell:
			bearish += sig.Confidence
		default:
			neutral += sig.Confidence
		}
	}
	total := bullish + bearish + neutral
	if total == 0 {
		return Verdict{Action: types.ActionHold, Confidence: 0, Rationale: "no weighted signals"}
	}

	weights := map[types.Action]float64{
		types.ActionBuy:  bullish,
		types.ActionSell: bearish,
		types.ActionHold: neutral,
	}
	max := bullish
	if bearish > max {
		max = bearish
	}
	if neutral > max {
		max = neutral
	}

	action := types.ActionHold
	tied := 0
	for _, bucket := range []types.Action{types.ActionBuy, types.ActionSell, types.ActionHold} {
		if weights[bucket] == max {
			tied++
		}
	}
	if tied == 1 {
		for bucket, weight := range weights {
			if weight == max {
				action = bucket
			}
		}
	} else {
		for _, sig := range ordered {
			if sig.Confidence <= 0 {
				continue
			}
			if bucket := bucketOf(sig.Action); weights[bucket] == max {
				action = bucket
				break
			}
		}
	}

	return Verdict{
		Action:     action,
		Confidence: weights[action] / total,
		Rationale:  summarize(ordered, bullish, bearish, neutral),
	}
}

func bucketOf(action types.Action) types.Action {
	switch {
	case action.Bullish():
		return types.ActionBuy
	case action.Bearish():
		return types.ActionSell
	default:
		return types.ActionHold
	}
}

// orderByPriority returns the signals sorted by their analyst's position in
// priority. Unknown analysts sort after known ones, by ID.
func orderByPriority(signals []types.Signal, priority []string) []types.Signal {
	rank := make(map[string]int, len(priority))
	for i, id := range priority {
		rank[id] = i
	}
	indexOf := func(id string) int {
		if i, ok := rank[id]; ok {
			return i
		}
		return len(priority)
	}

	ordered := make([]types.Signal, len(signals))
	copy(ordered, signals)
	sort.Slice(ordered, func(a, b int) bool {
		ra, rb := indexOf(ordered[a].AnalystID), indexOf(ordered[b].AnalystID)
		if ra != rb {
			return ra < rb
		}
		return ordered[a].AnalystID < ordered[b].AnalystID
	})
	return ordered
}

func summarize(signals []types.Signal, bullish, bearish, neutral float64) string {
	parts := make([]string, 0, len(signals))
	for _, sig := range signals {
		parts = append(parts, fmt.Sprintf("%s=%s(%.2f)", sig.AnalystID, sig.Action, sig.Confidence))
	}
	return fmt.Sprintf("bullish %.2f vs bearish %.2f vs neutral %.2f: %s",
		bullish, bearish, neutral, strings.Join(parts, ", "))
}
