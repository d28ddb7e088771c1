package contract

import (
	"context"
	"strings"

	"aura-support-be/internal/entity"
)

// ScoredKnowledgeChunk wraps KnowledgeChunk with its similarity score
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	Similarity float64 // cosine similarity, higher is closer
}

type KnowledgeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	DeleteByDocumentId(ctx context.Context, documentId string) error
	// ReplaceDocument atomically swaps all chunks of a document.
	ReplaceDocument(ctx context.Context, documentId string, chunks []*entity.KnowledgeChunk) error
	// FindByDocumentId returns the chunks of one document in offset order.
	FindByDocumentId(ctx context.Context, documentId string) ([]*entity.KnowledgeChunk, error)
	Count(ctx context.Context) (int64, error)
	// SearchSimilar returns at most limit chunks ordered by similarity desc,
	// then document id asc, then offset asc.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*ScoredKnowledgeChunk, error)
}

// CompareScored orders by similarity desc, then document id, then offset.
// It is the ordering every KnowledgeChunkRepository must honor.
func CompareScored(a, b *ScoredKnowledgeChunk) int {
	switch {
	case a.Similarity > b.Similarity:
		return -1
	case a.Similarity < b.Similarity:
		return 1
	}
	if c := strings.Compare(a.Chunk.DocumentId, b.Chunk.DocumentId); c != 0 {
		return c
	}
	return a.Chunk.Offset - b.Chunk.Offset
}
