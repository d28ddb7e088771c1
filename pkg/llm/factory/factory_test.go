package factory

import (
	"testing"

	"aura-support-be/pkg/llm/huggingface"
	"aura-support-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider("ollama", "llama3", "", "")
	require.NoError(t, err)
	op, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", op.BaseURL)

	p, err = NewLLMProvider("huggingface", "meta-llama/Llama-3.1-8B-Instruct", "", "hf_token")
	require.NoError(t, err)
	_, ok = p.(*huggingface.HuggingFaceProvider)
	assert.True(t, ok)

	_, err = NewLLMProvider("huggingface", "m", "", "")
	assert.Error(t, err)

	_, err = NewLLMProvider("bedrock", "m", "", "")
	assert.Error(t, err)
}

func TestNewLLMProvider_Normalizes(t *testing.T) {
	p, err := NewLLMProvider(" Ollama ", "llama3", "http://ollama:11434/", "")
	require.NoError(t, err)
	assert.Equal(t, "http://ollama:11434", p.(*ollama.OllamaProvider).BaseURL)

	_, err = NewLLMProvider("ollama", " ", "", "")
	assert.Error(t, err)
}
