package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aura-support-be/internal/entity"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/repository/contract"
	"aura-support-be/pkg/embedding"
	"aura-support-be/pkg/events"
	"aura-support-be/pkg/utils"
)

var ErrInvalidDocument = errors.New("invalid knowledge document")

// EventPublisher is the slice of the NATS publisher the services need.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IKnowledgeIngestService interface {
	IngestDocument(ctx context.Context, documentId, text string) (int, error)
}

type knowledgeIngestService struct {
	store        contract.KnowledgeChunkRepository
	embedder     embedding.EmbeddingProvider
	publisher    EventPublisher
	chunkSize    int
	chunkOverlap int
	logger       logger.ILogger
}

// NewKnowledgeIngestService wires the ingestion path. publisher may be nil.
func NewKnowledgeIngestService(
	store contract.KnowledgeChunkRepository,
	embedder embedding.EmbeddingProvider,
	publisher EventPublisher,
	chunkSize int,
	chunkOverlap int,
	log logger.ILogger,
) IKnowledgeIngestService {
	if chunkSize <= 0 {
		chunkSize = 450
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &knowledgeIngestService{
		store:        store,
		embedder:     embedder,
		publisher:    publisher,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       log,
	}
}

// IngestDocument splits, embeds and stores a document, replacing whatever was
// indexed under the same id. Nothing is written unless every chunk embeds.
func (s *knowledgeIngestService) IngestDocument(ctx context.Context, documentId, text string) (int, error) {
	documentId = strings.TrimSpace(documentId)
	if documentId == "" {
		return 0, fmt.Errorf("ingest: document id is required: %w", ErrInvalidDocument)
	}

	pieces := utils.SplitTextWithOffsets(text, s.chunkSize, s.chunkOverlap)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("ingest %s: no indexable text: %w", documentId, ErrInvalidDocument)
	}

	chunks := make([]*entity.KnowledgeChunk, 0, len(pieces))
	for i, piece := range pieces {
		res, err := s.embedder.Generate(ctx, piece.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("ingest %s: embed chunk %d: %w", documentId, i, err)
		}
		if len(res.Embedding.Values) == 0 {
			return 0, fmt.Errorf("ingest %s: embed chunk %d: empty embedding", documentId, i)
		}
		chunks = append(chunks, &entity.KnowledgeChunk{
			Text:       piece.Text,
			Embedding:  res.Embedding.Values,
			DocumentId: documentId,
			Offset:     piece.Offset,
		})
	}

	if err := s.store.ReplaceDocument(ctx, documentId, chunks); err != nil {
		return 0, fmt.Errorf("ingest %s: store chunks: %w", documentId, err)
	}

	s.logger.Info("KnowledgeIngest", "Document indexed", map[string]interface{}{
		"document_id": documentId,
		"chunks":      len(chunks),
	})

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewKnowledgeIngested(documentId, len(chunks))); err != nil {
			s.logger.Warn("KnowledgeIngest", "Failed to publish ingestion event", map[string]interface{}{
				"document_id": documentId,
				"error":       err.Error(),
			})
		}
	}

	return len(chunks), nil
}
