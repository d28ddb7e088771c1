package retrieval

import (
	"context"
	"fmt"
	"slices"

	"aura-support-be/internal/entity"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/repository/contract"
	"aura-support-be/pkg/embedding"
	"aura-support-be/pkg/rag/errs"
)

// ScoredChunk is one entry of a retrieval result.
type ScoredChunk struct {
	Chunk *entity.KnowledgeChunk
	Score float64
}

// Result is ordered by descending score; ties by document id then offset.
type Result []ScoredChunk

// ChunkIds returns the chunk ids in result order, for turn traceability.
func (r Result) ChunkIds() []string {
	ids := make([]string, len(r))
	for i, sc := range r {
		ids[i] = sc.Chunk.Id.String()
	}
	return ids
}

// Retriever turns a user query into the top-K knowledge chunks.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	store    contract.KnowledgeChunkRepository
	logger   logger.ILogger
}

func NewRetriever(embedder embedding.EmbeddingProvider, store contract.KnowledgeChunkRepository, log logger.ILogger) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   log,
	}
}

// Retrieve never fails: an embedding or store failure is a retrieval miss and
// yields an empty result so the pipeline can answer from history alone.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) Result {
	if k <= 0 {
		return Result{}
	}

	res, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.miss("embedding failed", err)
		return Result{}
	}
	if len(res.Embedding.Values) == 0 {
		r.miss("embedding empty", nil)
		return Result{}
	}

	scored, err := r.store.SearchSimilar(ctx, res.Embedding.Values, k)
	if err != nil {
		r.miss("knowledge search failed", fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err))
		return Result{}
	}

	// Malformed rows must not reach the comparator or take a top-k slot.
	scored = slices.DeleteFunc(scored, func(sc *contract.ScoredKnowledgeChunk) bool {
		return sc == nil || sc.Chunk == nil
	})
	slices.SortStableFunc(scored, contract.CompareScored)
	if len(scored) > k {
		scored = scored[:k]
	}

	result := make(Result, 0, len(scored))
	for _, sc := range scored {
		result = append(result, ScoredChunk{Chunk: sc.Chunk, Score: sc.Similarity})
	}

	r.logger.Debug("Retriever", "Knowledge retrieved", map[string]interface{}{
		"k":       k,
		"results": len(result),
	})
	return result
}

func (r *Retriever) miss(reason string, cause error) {
	details := map[string]interface{}{"reason": reason}
	if cause != nil {
		details["error"] = fmt.Errorf("%w: %v", errs.ErrRetrievalMiss, cause).Error()
	}
	r.logger.Warn("Retriever", "Retrieval miss, continuing without knowledge context", details)
}
