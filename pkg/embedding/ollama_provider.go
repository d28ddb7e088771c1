package embedding

import (
	"context"
	"net/http"

	"aura-support-be/pkg/llm"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
)

// OllamaProvider embeds with a local Ollama model. Vectors are returned at
// unit length so cosine similarity and pgvector's cosine distance agree.
type OllamaProvider struct {
	BaseURL string
	Model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{BaseURL: baseURL, Model: model, client: &http.Client{}}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Generate ignores taskType; nomic models embed queries and documents alike.
func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	var resp ollamaEmbeddingResponse
	err := llm.PostJSON(ctx, p.client, "ollama-embedding", p.BaseURL+"/api/embeddings", nil,
		ollamaEmbeddingRequest{Model: p.Model, Prompt: text}, &resp)
	if err != nil {
		return nil, err
	}

	values := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		values[i] = float32(v)
	}
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: normalizeVector(values)},
	}, nil
}
