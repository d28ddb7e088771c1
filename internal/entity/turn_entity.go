package entity

import (
	"time"

	"github.com/google/uuid"
)

type Turn struct {
	Id          uuid.UUID
	SessionKey  string
	UserMessage string
	Reply       string
	ChunkIds    []string
	Escalation  EscalationLevel
	Reason      string
	Degraded    bool
	CreatedAt   time.Time
}

func (t Turn) Clone() Turn {
	c := t
	if t.ChunkIds != nil {
		c.ChunkIds = append([]string(nil), t.ChunkIds...)
	}
	return c
}
