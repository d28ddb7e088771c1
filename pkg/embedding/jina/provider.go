package jina

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"aura-support-be/pkg/embedding"
	"aura-support-be/pkg/llm"
)

const (
	defaultURL   = "https://api.jina.ai/v1/embeddings"
	defaultModel = "jina-embeddings-v2-base-en" // 768 dimensions, matches the vector column
)

// JinaProvider embeds with the hosted Jina AI API.
type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ embedding.EmbeddingProvider = (*JinaProvider)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaProvider(apiKey string) *JinaProvider {
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: defaultURL,
		model:   defaultModel,
		client:  &http.Client{},
	}
}

// Generate ignores taskType; v2 models do not distinguish queries.
func (p *JinaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)

	var resp embeddingResponse
	if err := llm.PostJSON(ctx, p.client, "jina", p.baseURL, header, embeddingRequest{
		Model: p.model,
		Input: []string{text},
	}, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("jina: %s", resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("jina: no embeddings in response")
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: resp.Data[0].Embedding},
	}, nil
}
