package service

import (
	"context"
	"sync"
	"time"

	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/pkg/mailer"
	"aura-support-be/pkg/events"
	pktNats "aura-support-be/pkg/nats"
)

// INotifier hands an escalated session over to human support. Notify must
// return quickly and never fail the conversation.
type INotifier interface {
	Notify(ctx context.Context, sessionID, transcriptSummary string)
}

// AlertBroadcaster pushes live alerts to connected support staff.
// Typically implemented by the WebSocket Hub.
type AlertBroadcaster interface {
	Broadcast(eventType string, data interface{})
}

// EscalationClaimer dedupes hand-offs across service instances.
type EscalationClaimer interface {
	Claim(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// EventSubscriber is the slice of the NATS subscriber the alert bridge needs.
type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

type EscalationService struct {
	mailer    mailer.IEmailService
	inbox     string
	publisher EventPublisher
	alerts    AlertBroadcaster
	ledger    EscalationClaimer
	timeout   time.Duration
	logger    logger.ILogger
	wg        sync.WaitGroup
}

// NewEscalationService builds the notifier. Every collaborator except the
// logger may be nil; missing channels are skipped.
func NewEscalationService(
	mail mailer.IEmailService,
	inbox string,
	publisher EventPublisher,
	alerts AlertBroadcaster,
	ledger EscalationClaimer,
	log logger.ILogger,
) *EscalationService {
	return &EscalationService{
		mailer:    mail,
		inbox:     inbox,
		publisher: publisher,
		alerts:    alerts,
		ledger:    ledger,
		timeout:   15 * time.Second,
		logger:    log,
	}
}

func (s *EscalationService) Notify(ctx context.Context, sessionID, transcriptSummary string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		s.deliver(dctx, sessionID, transcriptSummary)
	}()
}

// Wait blocks until in-flight notifications have finished.
func (s *EscalationService) Wait() {
	s.wg.Wait()
}

func (s *EscalationService) deliver(ctx context.Context, sessionID, summary string) {
	if s.ledger != nil {
		first, err := s.ledger.Claim(ctx, sessionID)
		if err != nil {
			// Fail open: a duplicate alert beats a lost one.
			s.logger.Warn("Escalation", "Escalation ledger unavailable", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		} else if !first {
			s.logger.Info("Escalation", "Session already escalated by another instance", map[string]interface{}{"session_id": sessionID})
			return
		}
	}

	delivered := false

	if s.mailer != nil {
		if err := s.mailer.SendEscalation(s.inbox, sessionID, summary); err != nil {
			s.logger.Error("Escalation", "Failed to send hand-off email", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		} else {
			delivered = true
		}
	}

	published := false
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewEscalationRequired(sessionID, summary)); err != nil {
			s.logger.Error("Escalation", "Failed to publish escalation event", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		} else {
			published = true
			delivered = true
		}
	}

	// With NATS up the alert bridge relays the event to the hub.
	if !published && s.alerts != nil {
		s.alerts.Broadcast(events.EscalationRequired, escalationAlert(sessionID, summary))
		delivered = true
	}

	if !delivered {
		s.logger.Error("Escalation", "No channel accepted the hand-off", map[string]interface{}{"session_id": sessionID})
		if s.ledger != nil {
			if err := s.ledger.Release(ctx, sessionID); err != nil {
				s.logger.Warn("Escalation", "Failed to release escalation claim", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
			}
		}
		return
	}

	s.logger.Info("Escalation", "Session handed off to support", map[string]interface{}{
		"session_id": sessionID,
		"emailed":    s.mailer != nil,
		"published":  published,
	})
}

// StartAlertBridge relays escalation events from the bus to connected staff.
// The durable consumer is shared, so each event is handled by one instance
// and the hub fans it out cluster-wide.
func (s *EscalationService) StartAlertBridge(sub EventSubscriber) error {
	if sub == nil || s.alerts == nil {
		return nil
	}
	err := sub.Subscribe(pktNats.Subject(events.EscalationRequired), "support-escalation-alerts", s.handleEscalationEvent)
	if err != nil {
		s.logger.Error("Escalation", "Failed to start escalation alert bridge", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("Escalation", "Escalation alert bridge started", nil)
	return nil
}

func (s *EscalationService) handleEscalationEvent(ctx context.Context, event events.Event) error {
	sessionID := events.StringField(event, "session_id")
	if sessionID == "" {
		s.logger.Warn("Escalation", "Escalation event without session id", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	s.alerts.Broadcast(events.EscalationRequired, escalationAlert(sessionID, events.StringField(event, "summary")))
	return nil
}

func escalationAlert(sessionID, summary string) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID,
		"summary":    summary,
		"at":         time.Now().UTC().Format(time.RFC3339),
	}
}
