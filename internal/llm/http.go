package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const maxAttempts = 3

// HTTPGenerator calls a network-backed language model service. Transport
// failures are retried; after the last attempt the error is returned and the
// caller degrades to a neutral signal.
type HTTPGenerator struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewHTTPGenerator(baseURL, apiKey string, log zerolog.Logger) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("component", "llm").Logger(),
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		g.log.Warn().Err(err).Int("attempt", attempt).Msg("llm generation failed")

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return Result{}, fmt.Errorf("llm: all %d attempts failed: %w", maxAttempts, lastErr)
}

func (g *HTTPGenerator) generateOnce(ctx context.Context, prompt string) (Result, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("llm service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	switch result.Stance {
	case StanceBullish, StanceBearish, StanceNeutral:
	default:
		result.Stance = StanceNeutral
	}
	return result, nil
}
