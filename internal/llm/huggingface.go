package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/solardome/policyforge/internal/console"
)

const defaultHFBaseURL = "https://router.huggingface.co"

// HuggingFaceClient calls the Hugging Face router's chat-completions
// endpoint. Transient failures are retried a bounded number of times with
// a fixed backoff.
type HuggingFaceClient struct {
	APIKey   string
	Model    string
	BaseURL  string
	Retries  int
	Backoff  time.Duration
	MaxToken int
	client   *http.Client
}

func NewHuggingFaceClient(apiKey, model string) *HuggingFaceClient {
	if strings.TrimSpace(model) == "" {
		model = "openai/gpt-oss-120b"
	}
	return &HuggingFaceClient{
		APIKey:   apiKey,
		Model:    model,
		BaseURL:  defaultHFBaseURL,
		Retries:  3,
		Backoff:  5 * time.Second,
		MaxToken: 2000,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *HuggingFaceClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*Result, error) {
	messages := []chatMessage{}
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	var lastErr error
	for attempt := 1; attempt <= c.Retries; attempt++ {
		text, err := c.complete(ctx, messages)
		if err == nil {
			return &Result{Text: text, JSON: ExtractJSON(text)}, nil
		}
		lastErr = err
		console.Errorf("Request attempt %d/%d failed: %v", attempt, c.Retries, err)
		if attempt < c.Retries {
			select {
			case <-ctx.Done():
				return nil, &GenerationError{Provider: "huggingface", Attempts: attempt, Err: ctx.Err()}
			case <-time.After(c.Backoff):
			}
		}
	}
	return nil, &GenerationError{Provider: "huggingface", Attempts: c.Retries, Err: lastErr}
}

func (c *HuggingFaceClient) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   c.MaxToken,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface API returned status: %s", resp.Status)
	}
	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
