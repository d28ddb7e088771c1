package service

import (
	"context"
	"errors"
	"time"

	"aura-support-be/internal/constant"
	"aura-support-be/internal/entity"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/repository/contract"
	"aura-support-be/pkg/rag/errs"
	"aura-support-be/pkg/rag/escalation"
	"aura-support-be/pkg/rag/generation"
	"aura-support-be/pkg/rag/prompt"
	"aura-support-be/pkg/rag/retrieval"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage is one step of the per-message pipeline, in traversal order.
type Stage string

const (
	StageReceived  Stage = "RECEIVED"
	StageRetrieved Stage = "RETRIEVED"
	StageComposed  Stage = "COMPOSED"
	StageGenerated Stage = "GENERATED"
	StageEvaluated Stage = "EVALUATED"
	StageRecorded  Stage = "RECORDED"
	StageResponded Stage = "RESPONDED"
)

// Pipeline collaborators, narrowed to what the orchestrator calls.
type (
	KnowledgeRetriever interface {
		Retrieve(ctx context.Context, query string, k int) retrieval.Result
	}
	PromptComposer interface {
		Compose(history []entity.Turn, retrieved retrieval.Result, message string) (*prompt.Prompt, error)
	}
	ReplyGenerator interface {
		Generate(ctx context.Context, p *prompt.Prompt) generation.Reply
	}
	EscalationEvaluator interface {
		Evaluate(userMessage, reply string, turnCount int) escalation.Decision
	}
)

type ConversationConfig struct {
	RetrievalTopK int
	HistoryTurns  int
	DegradedReply string
}

// Outcome is the result of one handled message.
type Outcome struct {
	SessionId string
	Reply     string
	Escalated bool
	Decision  escalation.Decision
	Degraded  bool
	Turn      entity.Turn
	Stages    []Stage
}

type IConversationService interface {
	HandleMessage(ctx context.Context, sessionID, message string) *Outcome
	History(ctx context.Context, sessionID string, limit int) *entity.Session
}

type conversationService struct {
	sessions  contract.SessionRepository
	retriever KnowledgeRetriever
	composer  PromptComposer
	generator ReplyGenerator
	evaluator EscalationEvaluator
	notifier  INotifier
	cfg       ConversationConfig
	logger    logger.ILogger
	tracer    trace.Tracer
}

func NewConversationService(
	sessions contract.SessionRepository,
	retriever KnowledgeRetriever,
	composer PromptComposer,
	generator ReplyGenerator,
	evaluator EscalationEvaluator,
	notifier INotifier,
	cfg ConversationConfig,
	log logger.ILogger,
) IConversationService {
	if cfg.RetrievalTopK <= 0 {
		cfg.RetrievalTopK = 5
	}
	if cfg.HistoryTurns < 0 {
		cfg.HistoryTurns = 0
	}
	if cfg.DegradedReply == "" {
		cfg.DegradedReply = constant.DegradedReplyV1
	}
	return &conversationService{
		sessions:  sessions,
		retriever: retriever,
		composer:  composer,
		generator: generator,
		evaluator: evaluator,
		notifier:  notifier,
		cfg:       cfg,
		logger:    log,
		tracer:    otel.Tracer("aura-support-be/conversation"),
	}
}

// HandleMessage runs one message through the pipeline. It always produces a
// reply: failures degrade the turn instead of aborting it. Requests for the
// same session are serialized for their whole duration.
func (s *conversationService) HandleMessage(ctx context.Context, sessionID, message string) *Outcome {
	// A client disconnect must not prevent the turn from being recorded.
	run := context.WithoutCancel(ctx)
	run, span := s.tracer.Start(run, "conversation.handle_message",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	out := &Outcome{SessionId: sessionID}
	started := time.Now()
	s.advance(span, out, StageReceived, map[string]interface{}{"message_length": len(message)})

	session := s.sessions.Get(run, sessionID)
	turnCount := session.TurnCount() + 1
	history := s.sessions.History(run, sessionID, s.cfg.HistoryTurns)

	retrieved := s.retriever.Retrieve(run, message, s.cfg.RetrievalTopK)
	s.advance(span, out, StageRetrieved, map[string]interface{}{"chunks": len(retrieved)})

	var failure error
	p, err := s.composer.Compose(history, retrieved, message)
	if err != nil {
		failure = err
		p = nil
	}
	composed := map[string]interface{}{}
	if p != nil {
		composed["history_turns"] = len(p.History)
		composed["chunks"] = len(p.Context)
		composed["size"] = p.Size()
	} else {
		composed["error"] = err.Error()
	}
	s.advance(span, out, StageComposed, composed)

	var reply generation.Reply
	if failure == nil {
		reply = s.generator.Generate(run, p)
		if reply.Degraded {
			failure = reply.Cause
			if failure == nil {
				failure = errs.ErrGenerationExhausted
			}
		}
	} else {
		reply = generation.Reply{Text: s.cfg.DegradedReply, Degraded: true, Cause: failure}
	}
	s.advance(span, out, StageGenerated, map[string]interface{}{
		"attempts": reply.Attempts,
		"degraded": reply.Degraded,
	})

	var decision escalation.Decision
	if reply.Degraded {
		decision = escalation.Degraded()
	} else {
		decision = s.evaluator.Evaluate(message, reply.Text, turnCount)
	}
	s.advance(span, out, StageEvaluated, map[string]interface{}{
		"level":      string(decision.Level),
		"reason":     decision.Reason,
		"turn_count": turnCount,
	})

	var chunkIds []string
	if p != nil {
		chunkIds = p.Context.ChunkIds()
	}
	turn := entity.Turn{
		UserMessage: message,
		Reply:       reply.Text,
		ChunkIds:    chunkIds,
		Escalation:  decision.Level,
		Reason:      decision.Reason,
		Degraded:    reply.Degraded,
	}
	out.Turn = s.sessions.Append(run, sessionID, turn)
	s.advance(span, out, StageRecorded, map[string]interface{}{"turn_id": out.Turn.Id.String()})

	if decision.Level == entity.EscalationRequired && s.sessions.MarkEscalated(run, sessionID) {
		s.escalate(run, span, sessionID, decision)
	}

	out.Reply = reply.Text
	out.Decision = decision
	out.Escalated = decision.Level == entity.EscalationRequired
	out.Degraded = reply.Degraded

	if failure != nil {
		span.RecordError(failure)
		span.SetStatus(codes.Error, "degraded")
		s.logger.Warn("Conversation", "Turn degraded", map[string]interface{}{
			"session_id":     sessionID,
			"prompt_too_big": errors.Is(failure, errs.ErrPromptTooLarge),
			"error":          failure.Error(),
		})
	}

	if ctx.Err() != nil {
		s.logger.Info("Conversation", "Client gone before reply, turn recorded", map[string]interface{}{
			"session_id": sessionID,
			"turn_id":    out.Turn.Id.String(),
		})
		return out
	}

	s.advance(span, out, StageResponded, map[string]interface{}{
		"escalation": string(decision.Level),
		"duration":   time.Since(started).String(),
	})
	return out
}

func (s *conversationService) History(ctx context.Context, sessionID string, limit int) *entity.Session {
	session := s.sessions.Get(ctx, sessionID)
	if limit > 0 && len(session.Turns) > limit {
		session.Turns = session.Turns[len(session.Turns)-limit:]
	}
	return session
}

func (s *conversationService) escalate(ctx context.Context, span trace.Span, sessionID string, decision escalation.Decision) {
	session := s.sessions.Get(ctx, sessionID)
	summary := escalation.BuildTranscriptSummary(sessionID, session.Turns)

	span.AddEvent("ESCALATED", trace.WithAttributes(attribute.String("reason", decision.Reason)))
	s.logger.Info("Conversation", "Escalating session to human support", map[string]interface{}{
		"session_id": sessionID,
		"reason":     decision.Reason,
		"turns":      len(session.Turns),
	})

	if s.notifier != nil {
		s.notifier.Notify(ctx, sessionID, summary)
	}
}

func (s *conversationService) advance(span trace.Span, out *Outcome, stage Stage, details map[string]interface{}) {
	out.Stages = append(out.Stages, stage)
	span.AddEvent(string(stage))
	if details == nil {
		details = map[string]interface{}{}
	}
	details["session_id"] = out.SessionId
	s.logger.Debug("Conversation", string(stage), details)
}
