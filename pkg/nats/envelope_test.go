package nats

import (
	"testing"
	"time"

	"aura-support-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	evt := events.NewEscalationRequired("session_1", "summary")

	data, err := encodeEvent(evt)
	require.NoError(t, err)

	decoded, err := decodeEvent("events.ESCALATION_REQUIRED", data)
	require.NoError(t, err)
	assert.Equal(t, events.EscalationRequired, decoded.EventType())
	assert.Equal(t, "session_1", events.StringField(decoded, "session_id"))
	assert.WithinDuration(t, evt.OccurredAt, decoded.OccurredAt, time.Millisecond)
}

func TestDecodeEvent_BarePayload(t *testing.T) {
	decoded, err := decodeEvent("events.KNOWLEDGE_INGESTED", []byte(`{"document_id":"faq.md"}`))
	require.NoError(t, err)
	assert.Equal(t, events.KnowledgeIngested, decoded.EventType())
	assert.Equal(t, "faq.md", events.StringField(decoded, "document_id"))

	_, err = decodeEvent("events.X", []byte("not json"))
	assert.Error(t, err)
}

func TestMessageID(t *testing.T) {
	first := events.NewEscalationRequired("session_1", "a")
	second := events.NewEscalationRequired("session_1", "b")
	assert.Equal(t, messageID(first), messageID(second), "escalations dedupe per session")
	assert.NotEqual(t, messageID(first), messageID(events.NewEscalationRequired("session_2", "a")))

	ingest := events.BaseEvent{Type: events.KnowledgeIngested, OccurredAt: time.Unix(0, 1)}
	reingest := events.BaseEvent{Type: events.KnowledgeIngested, OccurredAt: time.Unix(0, 2)}
	assert.NotEqual(t, messageID(ingest), messageID(reingest))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.ESCALATION_REQUIRED", Subject(events.EscalationRequired))
}
