// Package llm wraps text-generation providers behind a narrow interface.
// The normalization core never depends on a concrete provider; retry
// policy lives entirely here.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Result is a completed generation. JSON holds the first JSON value
// embedded in the text, when one parses; nil otherwise.
type Result struct {
	Text string
	JSON json.RawMessage
}

// Generator is the text-generation capability consumed by the policy
// synthesizer: one prompt in, structured result or typed failure out.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*Result, error)
}

// GenerationError marks a generation that failed after all attempts.
type GenerationError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed after %d attempt(s): %v", e.Provider, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerator builds a provider by name.
func NewGenerator(ctx context.Context, provider, apiKey, model string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "huggingface", "hf":
		return NewHuggingFaceClient(apiKey, model), nil
	case "ollama":
		return NewOllamaClient("", model), nil
	case "gemini":
		return NewGeminiClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// ExtractJSON pulls the outermost JSON object or array out of free-form
// model output. Returns nil when nothing parses.
func ExtractJSON(text string) json.RawMessage {
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start == -1 || end <= start {
			continue
		}
		candidate := []byte(text[start : end+1])
		if json.Valid(candidate) {
			return json.RawMessage(candidate)
		}
	}
	return nil
}
