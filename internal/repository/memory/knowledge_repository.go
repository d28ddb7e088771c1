package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"aura-support-be/internal/entity"
	"aura-support-be/internal/repository/contract"
	"aura-support-be/pkg/embedding"

	"github.com/google/uuid"
)

// KnowledgeRepository is an in-process vector index. Searches take the read
// lock only, so conversation traffic never waits on other searches.
type KnowledgeRepository struct {
	mu     sync.RWMutex
	chunks []*entity.KnowledgeChunk
}

func NewKnowledgeRepository() *KnowledgeRepository {
	return &KnowledgeRepository{}
}

func (r *KnowledgeRepository) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	stored := r.prepare(chunks)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, stored...)
	return nil
}

// ReplaceDocument swaps the chunks under one write lock, so searches see
// either the old or the new version of the document.
func (r *KnowledgeRepository) ReplaceDocument(ctx context.Context, documentId string, chunks []*entity.KnowledgeChunk) error {
	stored := r.prepare(chunks)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = slices.DeleteFunc(r.chunks, func(c *entity.KnowledgeChunk) bool {
		return c.DocumentId == documentId
	})
	r.chunks = append(r.chunks, stored...)
	return nil
}

// prepare assigns ids and timestamps and returns private copies.
func (r *KnowledgeRepository) prepare(chunks []*entity.KnowledgeChunk) []*entity.KnowledgeChunk {
	now := time.Now()
	stored := make([]*entity.KnowledgeChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		cp := *c
		cp.Embedding = append([]float32(nil), c.Embedding...)
		stored = append(stored, &cp)
	}
	return stored
}

func (r *KnowledgeRepository) DeleteByDocumentId(ctx context.Context, documentId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = slices.DeleteFunc(r.chunks, func(c *entity.KnowledgeChunk) bool {
		return c.DocumentId == documentId
	})
	return nil
}

func (r *KnowledgeRepository) FindByDocumentId(ctx context.Context, documentId string) ([]*entity.KnowledgeChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entity.KnowledgeChunk
	for _, c := range r.chunks {
		if c.DocumentId == documentId {
			cp := *c
			result = append(result, &cp)
		}
	}
	slices.SortFunc(result, func(a, b *entity.KnowledgeChunk) int { return a.Offset - b.Offset })
	return result, nil
}

func (r *KnowledgeRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.chunks)), nil
}

func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]*contract.ScoredKnowledgeChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	r.mu.RLock()
	scored := make([]*contract.ScoredKnowledgeChunk, 0, len(r.chunks))
	for _, c := range r.chunks {
		cp := *c
		scored = append(scored, &contract.ScoredKnowledgeChunk{
			Chunk:      &cp,
			Similarity: embedding.Cosine(vector, c.Embedding),
		})
	}
	r.mu.RUnlock()

	slices.SortStableFunc(scored, contract.CompareScored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
