package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"aura-support-be/internal/config"
	"aura-support-be/internal/constant"
	"aura-support-be/internal/controller"
	"aura-support-be/internal/handler"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/pkg/mailer"
	"aura-support-be/internal/repository/contract"
	"aura-support-be/internal/repository/implementation"
	"aura-support-be/internal/repository/memory"
	redisrepo "aura-support-be/internal/repository/redis"
	"aura-support-be/internal/service"
	"aura-support-be/internal/websocket"
	"aura-support-be/pkg/embedding"
	"aura-support-be/pkg/embedding/jina"
	"aura-support-be/pkg/llm"
	"aura-support-be/pkg/llm/factory"
	pktNats "aura-support-be/pkg/nats"
	"aura-support-be/pkg/rag/escalation"
	"aura-support-be/pkg/rag/generation"
	"aura-support-be/pkg/rag/prompt"
	"aura-support-be/pkg/rag/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	HealthController  controller.IHealthController
	ChatController    controller.IChatController
	SupportController controller.ISupportController

	// WebSockets & Escalation
	EscalationHandler *handler.EscalationHandler
	WebSocketHub      *websocket.Hub

	// Background Services (started by Start)
	ConsumerService   service.IConsumerService
	EscalationService *service.EscalationService

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
	pubSub  *gochannel.GoChannel
}

// NewContainer wires the application. db may be nil, in which case sessions
// and knowledge live in memory. NATS and Redis are optional.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Loggers
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	convLogger := logger.NewIsolatedLogger(cfg.App.ConversationLog)
	escLogger := logger.NewIsolatedLogger(cfg.App.EscalationLog)

	// 2. Model collaborators
	embeddingProvider := NewEmbeddingProvider(cfg, sysLogger)

	llmProvider, err := NewLLMProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 3. Storage
	var (
		knowledgeRepo contract.KnowledgeChunkRepository
		turnArchive   contract.TurnRepository
	)
	if db != nil {
		knowledgeRepo = implementation.NewKnowledgeChunkRepository(db)
		turnArchive = implementation.NewTurnRepository(db)
		sysLogger.Info("Bootstrap", "Using Postgres knowledge store and turn archive", nil)
	} else {
		knowledgeRepo = memory.NewKnowledgeRepository()
		sysLogger.Warn("Bootstrap", "No database configured, knowledge and sessions are in memory only", nil)
	}
	sessionRepo := memory.NewSessionRepository(cfg.Conversation.SessionIdleTTL, turnArchive, convLogger)

	// 4. Infrastructure
	c := &Container{Logger: sysLogger}

	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		if c.natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect NATS publisher", map[string]interface{}{"error": err.Error()})
			c.natsPub = nil
		} else {
			eventPublisher = c.natsPub
		}
		if c.natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect NATS subscriber", map[string]interface{}{"error": err.Error()})
			c.natsSub = nil
		}
	}

	var ledger service.EscalationClaimer
	if c.rdb = newRedisClient(cfg.App.RedisURL, sysLogger); c.rdb != nil {
		ledger = redisrepo.NewEscalationLedger(c.rdb, cfg.Conversation.SessionIdleTTL)
	}

	c.WebSocketHub = websocket.NewHub(c.rdb, escLogger)

	watermillLogger := watermill.NewStdLogger(false, false)
	c.pubSub = gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 5. Services
	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)
	c.EscalationService = service.NewEscalationService(
		emailService,
		cfg.SMTP.SupportInbox,
		eventPublisher,
		c.WebSocketHub,
		ledger,
		escLogger,
	)

	ingestService := service.NewKnowledgeIngestService(
		knowledgeRepo,
		embeddingProvider,
		eventPublisher,
		cfg.Conversation.ChunkSize,
		cfg.Conversation.ChunkOverlap,
		sysLogger,
	)
	publisherService := service.NewPublisherService(cfg.App.KnowledgeTopic, c.pubSub)
	c.ConsumerService = service.NewConsumerService(c.pubSub, cfg.App.KnowledgeTopic, ingestService, sysLogger)

	policy, err := NewEscalationPolicy(cfg.Escalation)
	if err != nil {
		return nil, err
	}

	generator := generation.NewClient(llmProvider, generation.Config{
		Timeout:        cfg.Conversation.ModelTimeout,
		MaxAttempts:    uint(max(cfg.Conversation.MaxAttempts, 1)),
		InitialBackoff: cfg.Conversation.InitialBackoff,
		MaxBackoff:     cfg.Conversation.MaxBackoff,
		FallbackReply:  cfg.Conversation.FallbackReply,
	}, convLogger, llm.WithTemperature(cfg.Ai.LLMTemperature))

	conversationService := service.NewConversationService(
		sessionRepo,
		retrieval.NewRetriever(embeddingProvider, knowledgeRepo, convLogger),
		prompt.NewComposer(constant.SupportSystemPromptV1, cfg.Conversation.PromptBudget),
		generator,
		escalation.NewEvaluator(policy),
		c.EscalationService,
		service.ConversationConfig{
			RetrievalTopK: cfg.Conversation.RetrievalTopK,
			HistoryTurns:  cfg.Conversation.HistoryTurns,
			DegradedReply: cfg.Conversation.DegradedReply,
		},
		convLogger,
	)

	// 6. Controllers & Handlers
	c.HealthController = controller.NewHealthController()
	c.ChatController = controller.NewChatController(conversationService, sysLogger)
	c.SupportController = controller.NewSupportController(conversationService, publisherService, cfg.App.JwtSecret)
	c.EscalationHandler = handler.NewEscalationHandler(c.WebSocketHub, cfg.App.JwtSecret, escLogger)

	return c, nil
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start knowledge consumer: %w", err)
	}

	if c.natsSub != nil {
		if err := c.EscalationService.StartAlertBridge(c.natsSub); err != nil {
			c.Logger.Warn("Bootstrap", "Escalation alerts will only reach this instance's hub", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Close waits for pending hand-offs and releases connections.
func (c *Container) Close() {
	c.EscalationService.Wait()
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.pubSub.Close()
	_ = c.Logger.Sync()
}

// NewEmbeddingProvider selects the embedding backend from configuration.
func NewEmbeddingProvider(cfg *config.Config, log logger.ILogger) embedding.EmbeddingProvider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Info("Bootstrap", "Using embedding provider OLLAMA", map[string]interface{}{"model": cfg.Ai.OllamaModel})
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		log.Info("Bootstrap", "Using embedding provider JINA AI", nil)
		return jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		log.Info("Bootstrap", "Using embedding provider GEMINI", nil)
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}
}

func NewLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	baseURL := cfg.Ai.LLMBaseURL
	if baseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, cfg.Keys.HuggingFace)
}

// NewEscalationPolicy layers env settings and the optional policy file over
// the defaults.
func NewEscalationPolicy(cfg config.EscalationConfig) (escalation.Policy, error) {
	policy := escalation.DefaultPolicy()
	policy.MaxTurns = cfg.MaxTurns
	if cfg.RefusalMarkers != nil {
		policy.RefusalMarkers = cfg.RefusalMarkers
	}
	if cfg.UrgencyMarkers != nil {
		policy.UrgencyMarkers = cfg.UrgencyMarkers
	}
	if cfg.PolicyFile == "" {
		return policy, nil
	}
	return escalation.LoadPolicy(cfg.PolicyFile, policy)
}

func newRedisClient(url string, log logger.ILogger) *redis.Client {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis, escalation dedupe and alert fan-out stay local", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
