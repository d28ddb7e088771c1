package mapper

import (
	"testing"
	"time"

	"aura-support-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTurnMapper_DefaultsEscalation(t *testing.T) {
	m := NewTurnMapper()

	model := m.ToModel(&entity.Turn{Id: uuid.New(), SessionKey: "k", UserMessage: "hi", CreatedAt: time.Now()})
	assert.Equal(t, "NONE", model.Escalation)

	back := m.ToEntity(model)
	assert.Equal(t, entity.EscalationNone, back.Escalation)
	assert.Nil(t, back.ChunkIds)
}

func TestKnowledgeChunkMapper_KeepsSourceReference(t *testing.T) {
	m := NewKnowledgeChunkMapper()
	chunk := &entity.KnowledgeChunk{Id: uuid.New(), Text: "t", DocumentId: "faq.md", Offset: 400, Embedding: []float32{0.1, 0.2}}

	back := m.ToEntity(m.ToModel(chunk))
	assert.Equal(t, chunk.DocumentId, back.DocumentId)
	assert.Equal(t, chunk.Offset, back.Offset)
	assert.Equal(t, chunk.Embedding, back.Embedding)
}
