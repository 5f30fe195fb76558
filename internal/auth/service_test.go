package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stylemuse/shopassist/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService(nil, "test-secret")
	user := &models.User{
		ID:    uuid.New(),
		Email: "shopper@example.com",
		Role:  models.RoleMember,
	}

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Sub != user.ID.String() {
		t.Errorf("sub = %q, want %q", claims.Sub, user.ID)
	}
	if claims.Email != user.Email || claims.Role != user.Role {
		t.Errorf("claims = %+v, want email/role from user", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("token should carry a future expiry")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewService(nil, "secret-a")
	verifier := NewService(nil, "secret-b")

	token, err := issuer.IssueToken(&models.User{ID: uuid.New(), Role: models.RoleMember})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Error("token signed with another secret should not verify")
	}
}

func TestHashAPIKey_Deterministic(t *testing.T) {
	if HashAPIKey("sma_abc") != HashAPIKey("sma_abc") {
		t.Error("hash should be deterministic")
	}
	if HashAPIKey("sma_abc") == HashAPIKey("sma_abd") {
		t.Error("different keys should hash differently")
	}
}
