package dto

type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=5000"`
	SessionId string `json:"session_id" validate:"omitempty,max=128"`
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	Escalated bool   `json:"escalated"`
	SessionId string `json:"session_id"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
