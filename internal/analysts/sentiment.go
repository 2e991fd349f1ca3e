package analysts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hedgesim/internal/marketdata"
	"hedgesim/types"
)

// Relative weights for the two sentiment sources.
const (
	insiderWeight = 0.3
	newsWeight    = 0.7
)

// SentimentAnalyst reads insider transactions and pre-scored news sentiment.
// Insider buys and positive articles count bullish, disposals and negative
// articles bearish, weighted 30/70.
type SentimentAnalyst struct {
	log zerolog.Logger
}

func NewSentimentAnalyst(d Deps) *SentimentAnalyst {
	return &SentimentAnalyst{log: d.Log.With().Str("analyst", "sentiment").Logger()}
}

func (a *SentimentAnalyst) ID() string { return "sentiment" }

func (a *SentimentAnalyst) Evaluate(_ context.Context, snap *marketdata.Snapshot) types.Signal {
	var insiderBullish, insiderBearish, insiderTotal float64
	for _, tr := range snap.InsiderTrades {
		switch {
		case tr.TransactionShares > 0:
			insiderBullish++
		case tr.TransactionShares < 0:
			insiderBearish++
		}
		insiderTotal++
	}

	var newsBullish, newsBearish, newsTotal float64
	for _, article := range snap.News {
		switch article.Sentiment {
		case types.SentimentPositive:
			newsBullish++
		case types.SentimentNegative:
			newsBearish++
		}
		newsTotal++
	}

	weightedBullish := insiderBullish*insiderWeight + newsBullish*newsWeight
	weightedBearish := insiderBearish*insiderWeight + newsBearish*newsWeight
	totalWeight := insiderTotal*insiderWeight + newsTotal*newsWeight

	if totalWeight == 0 {
		return types.NeutralSignal(snap.Ticker, snap.Date, a.ID(), "no insider or news data")
	}

	rationale := fmt.Sprintf(
		"weighted bullish %.1f vs bearish %.1f from %d insider trades and %d articles",
		weightedBullish, weightedBearish, len(snap.InsiderTrades), len(snap.News),
	)

	var action types.Action
	var confidence float64
	switch {
	case weightedBullish > weightedBearish:
		action = types.ActionBuy
		confidence = weightedBullish / totalWeight
	case weightedBearish > weightedBullish:
		action = types.ActionSell
		confidence = weightedBearish / totalWeight
	default:
		action = types.ActionHold
		confidence = 0.2
	}

	a.log.Debug().Str("ticker", snap.Ticker).Str("action", string(action)).Msg("sentiment analysis")
	return types.NewSignal(snap.Ticker, snap.Date, a.ID(), action, confidence, rationale)
}
