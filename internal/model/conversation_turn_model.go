package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationTurn struct {
	Id          uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionKey  string                      `gorm:"type:varchar(128);not null;index"`
	UserMessage string                      `gorm:"type:text;not null"`
	Reply       string                      `gorm:"type:text;not null"`
	ChunkIds    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Escalation  string                      `gorm:"type:varchar(20);not null;default:'NONE'"`
	Reason      string                      `gorm:"type:varchar(100)"`
	Degraded    bool                        `gorm:"default:false"`
	CreatedAt   time.Time                   `gorm:"not null;index"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
