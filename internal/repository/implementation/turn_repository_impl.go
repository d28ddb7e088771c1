package implementation

import (
	"context"

	"aura-support-be/internal/entity"
	"aura-support-be/internal/mapper"
	"aura-support-be/internal/model"
	"aura-support-be/internal/repository/contract"
	"aura-support-be/internal/repository/specification"

	"gorm.io/gorm"
)

type TurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TurnMapper
}

func NewTurnRepository(db *gorm.DB) contract.TurnRepository {
	return &TurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewTurnMapper(),
	}
}

func (r *TurnRepositoryImpl) Create(ctx context.Context, turn *entity.Turn) error {
	m := r.mapper.ToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = *r.mapper.ToEntity(m)
	return nil
}

func (r *TurnRepositoryImpl) FindBySessionKey(ctx context.Context, sessionKey string) ([]*entity.Turn, error) {
	var models []*model.ConversationTurn
	query := r.db.WithContext(ctx)
	for _, spec := range []specification.Specification{
		specification.BySessionKey{SessionKey: sessionKey},
		specification.OrderBy{Field: "created_at"},
	} {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	turns := make([]*entity.Turn, len(models))
	for i, m := range models {
		turns[i] = r.mapper.ToEntity(m)
	}
	return turns, nil
}
