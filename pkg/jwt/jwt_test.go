package jwt

import (
	"testing"
	"time"

	"go-appointment-booking/config"

	"github.com/google/uuid"
)

func newService() *JWTService {
	return NewJWTService(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newService()
	userID := uuid.New()
	roles := []string{"doctor", "patient"}

	token, tokenID, err := s.GenerateAccessToken(userID, "doc@example.com", roles)
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}
	if tokenID == "" {
		t.Fatal("token ID must not be empty")
	}

	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "doc@example.com" {
		t.Errorf("Email = %s, want doc@example.com", claims.Email)
	}
	if len(claims.Roles) != 2 {
		t.Errorf("Roles = %v, want %v", claims.Roles, roles)
	}
	if claims.TokenID != tokenID {
		t.Errorf("TokenID = %s, want %s", claims.TokenID, tokenID)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	s := newService()
	userID := uuid.New()

	token, _, err := s.GenerateRefreshToken(userID, "doc@example.com", nil)
	if err != nil {
		t.Fatalf("GenerateRefreshToken returned error: %v", err)
	}

	claims, err := s.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken returned error: %v", err)
	}
	if claims.TokenType != RefreshToken {
		t.Errorf("TokenType = %s, want %s", claims.TokenType, RefreshToken)
	}
}

// Access and refresh tokens are signed with distinct secrets, so each class
// must be rejected by the other validator.
func TestTokenClassSeparation(t *testing.T) {
	s := newService()
	userID := uuid.New()

	access, _, err := s.GenerateAccessToken(userID, "x@example.com", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}
	refresh, _, err := s.GenerateRefreshToken(userID, "x@example.com", nil)
	if err != nil {
		t.Fatalf("GenerateRefreshToken returned error: %v", err)
	}

	if _, err := s.ValidateRefreshToken(access); err == nil {
		t.Error("access token must not validate as a refresh token")
	}
	if _, err := s.ValidateAccessToken(refresh); err == nil {
		t.Error("refresh token must not validate as an access token")
	}
}

func TestValidateRejectsForeignToken(t *testing.T) {
	s := newService()
	other := NewJWTService(config.JWTConfig{
		AccessSecret:  "different-secret",
		RefreshSecret: "different-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})

	token, _, err := other.GenerateAccessToken(uuid.New(), "x@example.com", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	if _, err := s.ValidateAccessToken(token); err == nil {
		t.Error("token signed with a foreign secret must be rejected")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	s := newService()

	if _, err := s.ValidateAccessToken("not-a-token"); err == nil {
		t.Error("malformed token must be rejected")
	}
}
