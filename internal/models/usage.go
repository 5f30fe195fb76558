package models

import (
	"time"

	"github.com/google/uuid"
)

// LLMUsageLog records a single LLM API call for cost accounting.
type LLMUsageLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Provider     string    `json:"provider" db:"provider"`
	Model        string    `json:"model" db:"model"`
	InputTokens  int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens int       `json:"output_tokens" db:"output_tokens"`
	TotalTokens  int       `json:"total_tokens" db:"total_tokens"`
	CostUSD      float64   `json:"cost_usd" db:"cost_usd"`
	LatencyMs    int64     `json:"latency_ms" db:"latency_ms"`
	Endpoint     string    `json:"endpoint" db:"endpoint"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
