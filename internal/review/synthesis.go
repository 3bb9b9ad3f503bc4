package review

import (
	"context"
	"fmt"
	"time"

	"litreview/internal/providers"
)

const (
	defaultSynthesisTimeout = 90 * time.Second

	synthesisTemperature = 0.2
	synthesisMaxTokens   = 1500
)

// Synthesizer requests the final review text. One call per run; the prompt
// structure follows the cohesion recommendation.
type Synthesizer struct {
	completer providers.Completer
	timeout   time.Duration
}

func NewSynthesizer(completer providers.Completer, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = defaultSynthesisTimeout
	}
	return &Synthesizer{completer: completer, timeout: timeout}
}

func (s *Synthesizer) Generate(ctx context.Context, analyses []DocumentAnalysis, cohesion CohesionAnalysis, onToken func(string)) (Synthesis, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := SynthesisMessages(analyses, cohesion)
	opts := providers.Options{Temperature: synthesisTemperature, MaxTokens: synthesisMaxTokens}
	text, _, err := s.completer.Complete(callCtx, messages, opts, onToken)
	if err != nil {
		return Synthesis{}, fmt.Errorf("synthesis completion: %w", err)
	}
	return Synthesis{
		Text:          text,
		Mode:          cohesion.Recommendation,
		CohesionScore: cohesion.Score,
		DocumentCount: len(analyses),
	}, nil
}
