package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"aura-support-be/internal/constant"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	SMTP         SMTPConfig
	Keys         APIKeys
	Ai           AIConfig
	Conversation ConversationConfig
	Escalation   EscalationConfig
	Tracing      TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ConversationLog    string
	EscalationLog      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	KnowledgeTopic     string
}

type DatabaseConfig struct {
	Connection string // empty keeps sessions and knowledge in memory
}

type SMTPConfig struct {
	Host         string
	Port         int
	Email        string
	Password     string
	SenderName   string
	SupportInbox string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string // embedding model
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMTemperature    float64
}

type ConversationConfig struct {
	RetrievalTopK  int
	PromptBudget   int // characters
	HistoryTurns   int
	SessionIdleTTL time.Duration
	ModelTimeout   time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	ChunkSize      int
	ChunkOverlap   int
	FallbackReply  string // model gave up
	DegradedReply  string // pipeline failed before the model
}

type EscalationConfig struct {
	MaxTurns       int
	RefusalMarkers []string
	UrgencyMarkers []string
	PolicyFile     string // optional YAML overriding the markers above
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string // OTLP HTTP, host:port
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ConversationLog:    getEnv("CONVERSATION_LOG_PATH", "logs/conversation.log"),
			EscalationLog:      getEnv("ESCALATION_LOG_PATH", "logs/escalation.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			KnowledgeTopic:     getEnv("KNOWLEDGE_INGEST_TOPIC_NAME", "INGEST_KNOWLEDGE_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:         getEnv("SMTP_HOST", ""),
			Port:         getEnvAsInt("SMTP_PORT", 587),
			Email:        getEnv("SMTP_EMAIL", ""),
			Password:     getEnv("SMTP_PASSWORD", ""),
			SenderName:   getEnv("SMTP_SENDER_NAME", "AURA Support"),
			SupportInbox: getEnv("SUPPORT_INBOX_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMTemperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.3),
		},
		Conversation: ConversationConfig{
			RetrievalTopK:  getEnvAsInt("RETRIEVAL_TOP_K", 5),
			PromptBudget:   getEnvAsInt("PROMPT_BUDGET_CHARS", 12000),
			HistoryTurns:   getEnvAsInt("HISTORY_TURNS", 10),
			SessionIdleTTL: getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
			ModelTimeout:   getEnvAsDuration("MODEL_TIMEOUT", 30*time.Second),
			MaxAttempts:    getEnvAsInt("MODEL_MAX_ATTEMPTS", 3),
			InitialBackoff: getEnvAsDuration("MODEL_INITIAL_BACKOFF", 500*time.Millisecond),
			MaxBackoff:     getEnvAsDuration("MODEL_MAX_BACKOFF", 5*time.Second),
			ChunkSize:      getEnvAsInt("CHUNK_SIZE", 450),
			ChunkOverlap:   getEnvAsInt("CHUNK_OVERLAP", 50),
			FallbackReply:  getEnv("FALLBACK_REPLY", constant.FallbackReplyV1),
			DegradedReply:  getEnv("DEGRADED_REPLY", constant.DegradedReplyV1),
		},
		Escalation: EscalationConfig{
			MaxTurns:       getEnvAsInt("ESCALATION_MAX_TURNS", 8),
			RefusalMarkers: getEnvAsList("ESCALATION_REFUSAL_MARKERS", nil),
			UrgencyMarkers: getEnvAsList("ESCALATION_URGENCY_MARKERS", nil),
			PolicyFile:     getEnv("ESCALATION_POLICY_FILE", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "aura-support-backend"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

// getEnvAsList splits a "|" separated value. Markers may contain commas.
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strings.TrimSpace(strValue) == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(strValue, "|") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
