package judge

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com"
const defaultAnthropicModel = "claude-sonnet-4-20250514"
const anthropicVersion = "2023-06-01"
const anthropicMaxTokens = 1024

// AnthropicResponder calls the Anthropic messages API.
type AnthropicResponder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewAnthropicResponder() (*AnthropicResponder, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingCredential(string(ProviderAnthropic))
	}
	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicResponder{
		client:  &http.Client{},
		baseURL: defaultAnthropicBaseURL,
		apiKey:  apiKey,
		model:   model,
	}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r *AnthropicResponder) Evaluate(ctx context.Context, persona Persona,
	sub SubmissionContext, peerSummaries []string,
) (string, error) {
	req := anthropicRequest{
		Model:     r.model,
		MaxTokens: anthropicMaxTokens,
		System:    persona.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildUserPrompt(sub, peerSummaries)},
		},
	}

	var resp anthropicResponse
	url := r.baseURL + "/v1/messages"
	headers := map[string]string{
		"x-api-key":         r.apiKey,
		"anthropic-version": anthropicVersion,
	}
	if err := sendJSON(ctx, r.client, http.MethodPost, url, headers, req, &resp); err != nil {
		return "", fmt.Errorf("anthropic call failed: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic returned no text content")
}
