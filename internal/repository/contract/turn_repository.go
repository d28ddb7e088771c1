package contract

import (
	"context"

	"aura-support-be/internal/entity"
)

// TurnRepository is the durable archive behind the in-memory session store.
type TurnRepository interface {
	Create(ctx context.Context, turn *entity.Turn) error
	// FindBySessionKey returns the turns of a session oldest first.
	FindBySessionKey(ctx context.Context, sessionKey string) ([]*entity.Turn, error)
}
