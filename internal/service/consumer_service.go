package service

import (
	"context"
	"encoding/json"
	"errors"

	"aura-support-be/internal/dto"
	"aura-support-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	ingest     IKnowledgeIngestService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	ingest IKnowledgeIngestService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		ingest:     ingest,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishKnowledgeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("KnowledgeConsumer", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Redelivery would fail the same way.
		msg.Ack()
		return
	}

	chunks, err := cs.ingest.IngestDocument(ctx, payload.DocumentId, payload.Text)
	if err != nil {
		cs.logger.Error("KnowledgeConsumer", "Failed to ingest document", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		if errors.Is(err, ErrInvalidDocument) {
			msg.Ack()
			return
		}
		msg.Nack()
		return
	}

	cs.logger.Info("KnowledgeConsumer", "Document processed", map[string]interface{}{
		"document_id": payload.DocumentId,
		"chunks":      chunks,
	})
	msg.Ack()
}
