package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is an immutable unit of support content. Chunks are
// replaced per document, never edited.
type KnowledgeChunk struct {
	Id         uuid.UUID
	Text       string
	Embedding  []float32
	DocumentId string
	Offset     int
	CreatedAt  time.Time
}
