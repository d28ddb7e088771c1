package mapper

import (
	"aura-support-be/internal/entity"
	"aura-support-be/internal/model"

	"gorm.io/datatypes"
)

type TurnMapper struct{}

func NewTurnMapper() *TurnMapper {
	return &TurnMapper{}
}

func (m *TurnMapper) ToEntity(t *model.ConversationTurn) *entity.Turn {
	if t == nil {
		return nil
	}

	var chunkIds []string
	if len(t.ChunkIds) > 0 {
		chunkIds = append(chunkIds, t.ChunkIds...)
	}

	return &entity.Turn{
		Id:          t.Id,
		SessionKey:  t.SessionKey,
		UserMessage: t.UserMessage,
		Reply:       t.Reply,
		ChunkIds:    chunkIds,
		Escalation:  entity.EscalationLevel(t.Escalation),
		Reason:      t.Reason,
		Degraded:    t.Degraded,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *TurnMapper) ToModel(t *entity.Turn) *model.ConversationTurn {
	if t == nil {
		return nil
	}

	escalation := string(t.Escalation)
	if escalation == "" {
		escalation = string(entity.EscalationNone)
	}

	return &model.ConversationTurn{
		Id:          t.Id,
		SessionKey:  t.SessionKey,
		UserMessage: t.UserMessage,
		Reply:       t.Reply,
		ChunkIds:    datatypes.JSONSlice[string](t.ChunkIds),
		Escalation:  escalation,
		Reason:      t.Reason,
		Degraded:    t.Degraded,
		CreatedAt:   t.CreatedAt,
	}
}
