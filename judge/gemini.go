package judge

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
const defaultGeminiModel = "gemini-2.0-flash"

// GeminiResponder calls the Google Gemini generateContent API. It is the
// only council seat asked to use native video understanding, and only when
// the submission is classified as video.
type GeminiResponder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewGeminiResponder() (*GeminiResponder, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingCredential(string(ProviderGemini))
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiResponder{
		client:  &http.Client{},
		baseURL: defaultGeminiBaseURL,
		apiKey:  apiKey,
		model:   model,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (r *GeminiResponder) Evaluate(ctx context.Context, persona Persona,
	sub SubmissionContext, peerSummaries []string,
) (string, error) {
	user := buildUserPrompt(sub, peerSummaries)
	if sub.ContentType == "video" {
		user += "\nThe submission is a video; use your native video understanding of the URL."
	}

	req := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: persona.SystemPrompt}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: user}}},
		},
	}

	var resp geminiResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", r.baseURL, r.model, r.apiKey)
	if err := sendJSON(ctx, r.client, http.MethodPost, url, nil, req, &resp); err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
