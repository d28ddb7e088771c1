package embedding

import (
	"context"
	"net/http"

	"aura-support-be/pkg/llm"
)

const (
	geminiEmbeddingModel = "text-embedding-004"
	geminiBaseURL        = "https://generativelanguage.googleapis.com/v1"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

// GeminiProvider embeds with Google's text-embedding-004 (768 dimensions).
// It distinguishes query and document task types.
type GeminiProvider struct {
	ApiKey  string
	BaseURL string
	client  *http.Client
}

func NewGeminiProvider(apiKey string) EmbeddingProvider {
	return &GeminiProvider{ApiKey: apiKey, BaseURL: geminiBaseURL, client: &http.Client{}}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	header := http.Header{}
	header.Set("x-goog-api-key", p.ApiKey)

	var resp EmbeddingResponse
	err := llm.PostJSON(ctx, p.client, "gemini-embedding",
		p.BaseURL+"/models/"+geminiEmbeddingModel+":embedContent", header,
		geminiRequest{
			Model:    geminiEmbeddingModel,
			Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
			TaskType: taskType,
		}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
