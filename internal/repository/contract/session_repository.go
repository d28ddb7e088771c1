package contract

import (
	"context"

	"aura-support-be/internal/entity"
)

type SessionRepository interface {
	// Get returns a snapshot of the session, creating it on first reference.
	Get(ctx context.Context, key string) *entity.Session
	// Append records a turn and returns it with id and timestamp assigned.
	Append(ctx context.Context, key string, turn entity.Turn) entity.Turn
	// History returns the most recent maxTurns turns, oldest first.
	History(ctx context.Context, key string, maxTurns int) []entity.Turn
	// Lock serializes requests for one key. The returned func releases it.
	Lock(key string) func()
	// MarkEscalated reports whether this call flipped the escalation flag.
	MarkEscalated(ctx context.Context, key string) bool
}
