package dto

import (
	"time"

	"github.com/google/uuid"
)

type TurnResponse struct {
	Id          uuid.UUID `json:"id"`
	UserMessage string    `json:"user_message"`
	Reply       string    `json:"reply"`
	ChunkIds    []string  `json:"chunk_ids"`
	Escalation  string    `json:"escalation"`
	Reason      string    `json:"reason,omitempty"`
	Degraded    bool      `json:"degraded"`
	CreatedAt   time.Time `json:"created_at"`
}

type SessionHistoryResponse struct {
	SessionId string         `json:"session_id"`
	Escalated bool           `json:"escalated"`
	Turns     []TurnResponse `json:"turns"`
}

// IngestKnowledgeRequest replaces every chunk of DocumentId with chunks of Text.
type IngestKnowledgeRequest struct {
	DocumentId string `json:"document_id" validate:"required,max=255"`
	Text       string `json:"text" validate:"required"`
}

type IngestKnowledgeResponse struct {
	DocumentId string `json:"document_id"`
	Queued     bool   `json:"queued"`
}

// PublishKnowledgeMessage is the payload carried on the ingestion topic.
type PublishKnowledgeMessage struct {
	DocumentId string `json:"document_id"`
	Text       string `json:"text"`
}
