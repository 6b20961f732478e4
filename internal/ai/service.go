package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/logging"
	"github.com/Abhishek8211/energyiq/internal/tips"
)

// Answer source values reported alongside free-form answers.
const (
	SourceAI          = "ai"
	SourceFallback    = "fallback"
	SourceRateLimited = "rate_limited"
)

// Fallback answers for the free-ask path. The dialogue renders these
// exactly like AI answers; only the source differs.
const (
	fallbackUnconfigured = "I'm sorry, the AI service is not configured yet. Set the GEMINI_API_KEY environment variable to enable AI-powered answers."
	fallbackUnreachable  = "Sorry, I couldn't reach the AI service right now. Please try again in a moment."
	fallbackRateLimited  = "The AI service is temporarily busy due to high usage. Please wait a few seconds and try again."
	fallbackEmpty        = "I wasn't able to generate an answer. Could you rephrase your question?"
)

const (
	askMaxTokens  = 800
	tipsMaxTokens = 1024
)

// ErrNoQuestion is returned when Ask is called with blank input.
var ErrNoQuestion = errors.New("no question provided")

// Service wraps the Gemini client with the fallback policy: AI first,
// rule-based content on any failure. A Service with a nil client is
// valid and always serves fallbacks.
type Service struct {
	client *Client
}

// NewService creates a Service. client may be nil.
func NewService(client *Client) *Service {
	return &Service{client: client}
}

// Ready reports whether an AI backend is configured.
func (s *Service) Ready() bool {
	return s != nil && s.client != nil
}

// Tips generates personalized energy-saving tips for result, falling
// back to the rule-based set when the backend is unavailable or returns
// unusable output.
func (s *Service) Tips(ctx context.Context, result calc.Result) tips.Response {
	log := logging.FromContext(ctx)

	if !s.Ready() {
		log.Debug().Str("component", "ai").Msg("no api key, serving fallback tips")
		return tips.Fallback(result)
	}

	raw, err := s.client.Generate(ctx, BuildTipsPrompt(result), tipsMaxTokens)
	if err != nil {
		log.Warn().Str("component", "ai").Err(err).Msg("tip generation failed, serving fallback tips")
		return tips.Fallback(result)
	}

	parsed, savings, err := ParseTips(raw)
	if err != nil {
		log.Warn().Str("component", "ai").Err(err).Msg("unparseable tips response, serving fallback tips")
		return tips.Fallback(result)
	}

	if savings == "" {
		savings = tips.EstimatedSavings(result)
	}
	return tips.Response{
		Tips:             parsed,
		EstimatedSavings: savings,
		GeneratedAt:      time.Now().UTC(),
		Source:           SourceAI,
	}
}

// Ask answers a free-form electricity question. The returned source is
// SourceAI for a live answer, SourceRateLimited when the retry budget
// was exhausted, and SourceFallback for every other degradation.
func (s *Service) Ask(ctx context.Context, question string) (answer, source string, err error) {
	if strings.TrimSpace(question) == "" {
		return "", "", ErrNoQuestion
	}

	log := logging.FromContext(ctx)

	if !s.Ready() {
		return fallbackUnconfigured, SourceFallback, nil
	}

	raw, genErr := s.client.Generate(ctx, BuildAskPrompt(question), askMaxTokens)
	switch {
	case genErr == nil:
		return strings.TrimSpace(raw), SourceAI, nil
	case errors.Is(genErr, ErrRateLimited):
		log.Warn().Str("component", "ai").Msg("rate limited after retry")
		return fallbackRateLimited, SourceRateLimited, nil
	case errors.Is(genErr, ErrEmptyResponse):
		return fallbackEmpty, SourceFallback, nil
	default:
		log.Warn().Str("component", "ai").Err(genErr).Msg("free-form question failed")
		return fallbackUnreachable, SourceFallback, nil
	}
}
