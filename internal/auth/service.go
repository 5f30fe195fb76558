// Package auth handles JWT and API-key authentication for the HTTP API.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stylemuse/shopassist/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const tokenTTL = 24 * time.Hour

type Service struct {
	db     *pgxpool.Pool
	secret []byte
}

func NewService(db *pgxpool.Pool, secret string) *Service {
	return &Service{db: db, secret: []byte(secret)}
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, email, COALESCE(full_name, ''), role, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a JWT for the user.
func (s *Service) IssueToken(u *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:   u.ID.String(),
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a JWT and returns its claims.
func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// CreateAPIKey mints a key for the user. The plaintext key is returned once;
// only its hash is stored.
func (s *Service) CreateAPIKey(ctx context.Context, userID uuid.UUID, name string, expiresAt *time.Time) (*models.APIKey, string, error) {
	plaintext, err := generateKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate key: %w", err)
	}
	hash := HashAPIKey(plaintext)

	var ak models.APIKey
	err = s.db.QueryRow(ctx,
		`INSERT INTO api_keys (user_id, key_hash, name, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, key_hash, name, expires_at, created_at`,
		userID, hash, name, expiresAt,
	).Scan(&ak.ID, &ak.UserID, &ak.KeyHash, &ak.Name, &ak.ExpiresAt, &ak.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("insert api key: %w", err)
	}
	return &ak, plaintext, nil
}

func (s *Service) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, key_hash, name, last_used_at, expires_at, created_at
		 FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var ak models.APIKey
		if err := rows.Scan(&ak.ID, &ak.UserID, &ak.KeyHash, &ak.Name, &ak.LastUsedAt, &ak.ExpiresAt, &ak.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, ak)
	}
	return keys, nil
}

func (s *Service) DeleteAPIKey(ctx context.Context, userID, keyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM api_keys WHERE id = $1 AND user_id = $2", keyID, userID)
	return err
}

func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func generateKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sma_" + hex.EncodeToString(b), nil
}
