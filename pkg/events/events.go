package events

import "time"

const (
	EscalationRequired = "ESCALATION_REQUIRED"
	KnowledgeIngested  = "KNOWLEDGE_INGESTED"
)

// Event is what the service emits on the bus. The payload must be JSON
// encodable.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the single concrete event shape. Decoded events from the bus
// come back as BaseEvent too.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

// NewEscalationRequired builds the event emitted once per escalated session.
func NewEscalationRequired(sessionID, summary string) BaseEvent {
	return BaseEvent{
		Type: EscalationRequired,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"summary":    summary,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewKnowledgeIngested reports a (re)indexed support document.
func NewKnowledgeIngested(documentId string, chunks int) BaseEvent {
	return BaseEvent{
		Type: KnowledgeIngested,
		Data: map[string]interface{}{
			"document_id": documentId,
			"chunks":      chunks,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// StringField reads a string value from an event payload.
func StringField(e Event, key string) string {
	if e == nil || e.Payload() == nil {
		return ""
	}
	s, _ := e.Payload()[key].(string)
	return s
}
