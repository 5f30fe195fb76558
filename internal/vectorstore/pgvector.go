// Package vectorstore persists style-profile embeddings and answers
// nearest-neighbour lookups for the "similar past looks" feature.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type ProfileVector struct {
	ProfileID uuid.UUID
	UserID    uuid.UUID
	Summary   string // human-readable attribute text the embedding was built from
	Embedding []float32
}

type SimilarProfile struct {
	ProfileID uuid.UUID
	Summary   string
	Score     float64
}

type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Upsert(ctx context.Context, v ProfileVector) error {
	embedding := pgvector.NewVector(v.Embedding)

	_, err := s.db.Exec(ctx,
		`INSERT INTO style_profile_vectors (profile_id, user_id, summary, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (profile_id) DO UPDATE SET summary = $3, embedding = $4`,
		v.ProfileID, v.UserID, v.Summary, embedding,
	)
	if err != nil {
		return fmt.Errorf("upsert profile vector: %w", err)
	}
	return nil
}

// Similar returns the user's past profiles nearest to the query embedding by
// cosine distance, excluding the profile the query came from.
func (s *Store) Similar(ctx context.Context, userID uuid.UUID, query []float32, excludeProfile uuid.UUID, topK int) ([]SimilarProfile, error) {
	if topK <= 0 {
		topK = 5
	}

	embedding := pgvector.NewVector(query)

	rows, err := s.db.Query(ctx,
		`SELECT profile_id, summary, 1 - (embedding <=> $1) AS score
		 FROM style_profile_vectors
		 WHERE user_id = $2 AND profile_id <> $3
		 ORDER BY embedding <=> $1
		 LIMIT $4`,
		embedding, userID, excludeProfile, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SimilarProfile
	for rows.Next() {
		var r SimilarProfile
		if err := rows.Scan(&r.ProfileID, &r.Summary, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Store) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM style_profile_vectors WHERE user_id = $1", userID)
	return err
}
