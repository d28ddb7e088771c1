package factory

import (
	"fmt"
	"strings"

	"aura-support-be/pkg/llm"
	"aura-support-be/pkg/llm/huggingface"
	"aura-support-be/pkg/llm/ollama"
)

const (
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"

	defaultOllamaURL = "http://localhost:11434"
)

// NewLLMProvider builds the generation backend named by providerType.
// Credentials and model names are passed through uninterpreted.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	if strings.TrimSpace(modelName) == "" {
		return nil, fmt.Errorf("%s provider requires a model name", providerType)
	}

	switch strings.ToLower(strings.TrimSpace(providerType)) {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		return ollama.NewOllamaProvider(strings.TrimRight(baseURL, "/"), modelName), nil
	case ProviderHuggingFace:
		if apiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an api key")
		}
		return huggingface.NewHuggingFaceProvider(apiKey, strings.TrimRight(baseURL, "/"), modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", providerType)
	}
}
