package nats

import (
	"context"
	"fmt"
	"time"

	"aura-support-be/internal/pkg/logger"
	"aura-support-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher writes support events to the JetStream stream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, js, err := connect(url, "aura-support-publisher", log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ensureStream(ctx, js); err != nil {
		// The stream may already exist with settings we are not allowed to change.
		log.Warn("NATS", "Failed to ensure stream", map[string]interface{}{
			"stream": streamName,
			"error":  err.Error(),
		})
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends an event. Escalations carry a per-session message id, so a
// retry within the stream's duplicate window is stored once.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}

	subject := Subject(event.EventType())
	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(messageID(event))); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

func messageID(event events.Event) string {
	if sessionID := events.StringField(event, "session_id"); sessionID != "" && event.EventType() == events.EscalationRequired {
		return event.EventType() + ":" + sessionID
	}
	return fmt.Sprintf("%s:%d", event.EventType(), event.Timestamp().UnixNano())
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
