package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const escalationKeyPrefix = "escalation:"

// EscalationLedger records which sessions were already handed off so that
// several service instances never notify twice for the same session.
type EscalationLedger struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEscalationLedger(rdb *redis.Client, ttl time.Duration) *EscalationLedger {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EscalationLedger{rdb: rdb, ttl: ttl}
}

// Claim reports whether the caller is the first to escalate sessionID.
func (l *EscalationLedger) Claim(ctx context.Context, sessionID string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, escalationKeyPrefix+sessionID, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim escalation for %s: %w", sessionID, err)
	}
	return ok, nil
}

// Release forgets a claim, e.g. when no notification channel accepted it.
func (l *EscalationLedger) Release(ctx context.Context, sessionID string) error {
	return l.rdb.Del(ctx, escalationKeyPrefix+sessionID).Err()
}
