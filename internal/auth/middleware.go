package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stylemuse/shopassist/internal/models"
)

// Middleware authenticates requests by bearer JWT or API key and attaches the
// resolved user to the request context.
type Middleware struct {
	db           *pgxpool.Pool
	service      *Service
	apiKeyHeader string
}

func NewMiddleware(db *pgxpool.Pool, svc *Service, apiKeyHeader string) *Middleware {
	return &Middleware{db: db, service: svc, apiKeyHeader: apiKeyHeader}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get(m.apiKeyHeader); key != "" {
			m.authenticateAPIKey(w, r, next, key)
			return
		}

		tokenStr := extractBearerToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing credentials")
			return
		}

		claims, err := m.service.ParseToken(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, err := uuid.Parse(claims.Sub)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid user ID in token")
			return
		}

		user, err := m.service.GetUserByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "user not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (m *Middleware) authenticateAPIKey(w http.ResponseWriter, r *http.Request, next http.Handler, key string) {
	hash := HashAPIKey(key)

	var ak models.APIKey
	err := m.db.QueryRow(r.Context(),
		`SELECT id, user_id, expires_at FROM api_keys WHERE key_hash = $1`, hash,
	).Scan(&ak.ID, &ak.UserID, &ak.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid API key")
		return
	}

	if ak.ExpiresAt != nil && ak.ExpiresAt.Before(time.Now()) {
		writeError(w, http.StatusUnauthorized, "API key expired")
		return
	}

	user, err := m.service.GetUserByID(r.Context(), ak.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	go func() {
		m.db.Exec(r.Context(), "UPDATE api_keys SET last_used_at = $1 WHERE id = $2", time.Now(), ak.ID)
	}()

	next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
}

// RequireRole gates a route on the authenticated user's role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeError(w, http.StatusForbidden, "no user in context")
				return
			}
			if user.Role != role {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
