package judge

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"
const defaultOpenAIModel = "gpt-4o"

// OpenAIResponder calls the OpenAI chat completions API.
type OpenAIResponder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAIResponder reads OPENAI_API_KEY from the environment. A missing
// key is reported as an error so the caller can degrade that seat to absent.
func NewOpenAIResponder() (*OpenAIResponder, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingCredential(string(ProviderOpenAI))
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIResponder{
		client:  &http.Client{},
		baseURL: defaultOpenAIBaseURL,
		apiKey:  apiKey,
		model:   model,
	}, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r *OpenAIResponder) Evaluate(ctx context.Context, persona Persona,
	sub SubmissionContext, peerSummaries []string,
) (string, error) {
	system := persona.SystemPrompt
	if sub.ContentType == "code" {
		system += "\nThe submission is a code repository; review the repository at the given URL."
	}

	req := openAIRequest{
		Model: r.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: buildUserPrompt(sub, peerSummaries)},
		},
	}

	var resp openAIResponse
	url := r.baseURL + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + r.apiKey}
	if err := sendJSON(ctx, r.client, http.MethodPost, url, headers, req, &resp); err != nil {
		return "", fmt.Errorf("openai call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
