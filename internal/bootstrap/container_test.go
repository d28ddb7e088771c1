package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aura-support-be/internal/config"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/pkg/embedding"
	"aura-support-be/pkg/embedding/jina"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Port:            "0",
			LogFilePath:     filepath.Join(dir, "app.log"),
			ConversationLog: filepath.Join(dir, "conversation.log"),
			EscalationLog:   filepath.Join(dir, "escalation.log"),
			JwtSecret:       "secret",
			KnowledgeTopic:  "knowledge",
		},
		Ai: config.AIConfig{
			EmbeddingProvider: "ollama",
			OllamaBaseURL:     "http://localhost:11434",
			OllamaModel:       "nomic-embed-text",
			LLMProvider:       "ollama",
			LLMModel:          "llama3",
		},
		Conversation: config.ConversationConfig{
			RetrievalTopK:  5,
			PromptBudget:   12000,
			HistoryTurns:   10,
			SessionIdleTTL: time.Minute,
			ModelTimeout:   time.Second,
			MaxAttempts:    3,
			ChunkSize:      450,
			ChunkOverlap:   50,
		},
		Escalation: config.EscalationConfig{MaxTurns: 8},
	}
}

func TestNewContainer_InMemory(t *testing.T) {
	c, err := NewContainer(nil, testConfig(t))
	require.NoError(t, err)

	assert.NotNil(t, c.ChatController)
	assert.NotNil(t, c.SupportController)
	assert.NotNil(t, c.HealthController)
	assert.NotNil(t, c.EscalationHandler)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	cancel()
	c.Close()
}

func TestNewContainer_UnknownLLMProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ai.LLMProvider = "bedrock"

	_, err := NewContainer(nil, cfg)
	assert.Error(t, err)
}

func TestNewEmbeddingProvider(t *testing.T) {
	cfg := testConfig(t)
	log := logger.NewNopLogger()

	cfg.Ai.EmbeddingProvider = "jina"
	_, ok := NewEmbeddingProvider(cfg, log).(*jina.JinaProvider)
	assert.True(t, ok)

	cfg.Ai.EmbeddingProvider = "ollama"
	_, ok = NewEmbeddingProvider(cfg, log).(*embedding.OllamaProvider)
	assert.True(t, ok)

	cfg.Ai.EmbeddingProvider = ""
	_, ok = NewEmbeddingProvider(cfg, log).(*embedding.GeminiProvider)
	assert.True(t, ok)
}

func TestNewEscalationPolicy(t *testing.T) {
	policy, err := NewEscalationPolicy(config.EscalationConfig{MaxTurns: 4, UrgencyMarkers: []string{"now"}})
	require.NoError(t, err)
	assert.Equal(t, 4, policy.MaxTurns)
	assert.Equal(t, []string{"now"}, policy.UrgencyMarkers)
	assert.NotEmpty(t, policy.RefusalMarkers)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_turns: 12\n"), 0o644))
	policy, err = NewEscalationPolicy(config.EscalationConfig{MaxTurns: 4, PolicyFile: path})
	require.NoError(t, err)
	assert.Equal(t, 12, policy.MaxTurns)

	_, err = NewEscalationPolicy(config.EscalationConfig{PolicyFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
