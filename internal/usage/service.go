// Package usage records LLM API calls for per-user cost accounting.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stylemuse/shopassist/internal/llm"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// RecordChat logs one completed chat call. Endpoint identifies the feature
// that made the call, e.g. "chat.analyze".
func (s *Service) RecordChat(ctx context.Context, userID uuid.UUID, endpoint string, resp *llm.ChatResponse) error {
	if resp == nil {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO llm_usage_logs (user_id, provider, model, input_tokens, output_tokens, total_tokens, cost_usd, latency_ms, endpoint)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		userID, resp.Provider, resp.Model, resp.InputTokens, resp.OutputTokens,
		resp.TotalTokens, resp.CostUSD, resp.LatencyMs, endpoint,
	)
	if err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

// RecordEmbedding logs one embedding call.
func (s *Service) RecordEmbedding(ctx context.Context, userID uuid.UUID, endpoint string, resp *llm.EmbeddingResponse) error {
	if resp == nil {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO llm_usage_logs (user_id, provider, model, input_tokens, output_tokens, total_tokens, cost_usd, latency_ms, endpoint)
		 VALUES ($1, $2, $3, 0, 0, $4, $5, 0, $6)`,
		userID, resp.Provider, resp.Model, resp.Tokens, resp.CostUSD, endpoint,
	)
	if err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

type Summary struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	TotalCalls   int     `json:"total_calls"`
	TotalTokens  int     `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// UserSummary aggregates a user's spend per provider and model over the given
// window. Nil bounds leave that side of the window open.
func (s *Service) UserSummary(ctx context.Context, userID uuid.UUID, startDate, endDate *time.Time) ([]Summary, error) {
	query := `SELECT provider, model, COUNT(*) as total_calls,
			         COALESCE(SUM(total_tokens), 0) as total_tokens,
			         COALESCE(SUM(cost_usd), 0) as total_cost_usd
			  FROM llm_usage_logs WHERE user_id = $1`
	args := []any{userID}
	argIdx := 2

	if startDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *startDate)
		argIdx++
	}
	if endDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *endDate)
		argIdx++
	}

	query += " GROUP BY provider, model ORDER BY total_cost_usd DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var us Summary
		if err := rows.Scan(&us.Provider, &us.Model, &us.TotalCalls, &us.TotalTokens, &us.TotalCostUSD); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, us)
	}
	return summaries, nil
}
