package usecase

import (
	"testing"

	"go-appointment-booking/internal/delivery/dto"
	"go-appointment-booking/internal/domain/entity"

	"github.com/google/uuid"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	resp, err := f.auth.Register(testContext(), &dto.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret123",
		FullName: "New User",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if resp.Email != "new@example.com" {
		t.Errorf("Email = %s, want new@example.com", resp.Email)
	}

	// Every new account starts with the base patient role.
	hasPatient := false
	for _, role := range resp.Roles {
		if role == entity.RolePatient {
			hasPatient = true
		}
	}
	if !hasPatient {
		t.Errorf("Roles = %v, want to contain %q", resp.Roles, entity.RolePatient)
	}

	var user entity.User
	if err := f.db.Preload("Roles").First(&user, "email = ?", "new@example.com").Error; err != nil {
		t.Fatalf("registered user not persisted: %v", err)
	}
	if user.Password == "secret123" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	req := &dto.RegisterRequest{
		Email:    "dup@example.com",
		Password: "secret123",
		FullName: "First User",
	}
	if _, err := f.auth.Register(testContext(), req); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	if _, err := f.auth.Register(testContext(), req); err != ErrEmailAlreadyExists {
		t.Errorf("second Register error = %v, want %v", err, ErrEmailAlreadyExists)
	}

	var count int64
	f.db.Model(&entity.User{}).Count(&count)
	if count != 1 {
		t.Errorf("user count = %d, want 1", count)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	if _, err := f.auth.Register(testContext(), &dto.RegisterRequest{
		Email:    "login@example.com",
		Password: "secret123",
		FullName: "Login User",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	tokens, err := f.auth.Login(testContext(), &dto.LoginRequest{
		Email:    "login@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("Login must return both tokens")
	}
	if tokens.ExpiresIn <= 0 {
		t.Errorf("ExpiresIn = %d, want > 0", tokens.ExpiresIn)
	}

	var count int64
	f.db.Model(&entity.RefreshToken{}).Count(&count)
	if count != 1 {
		t.Errorf("refresh token count = %d, want 1", count)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)

	if _, err := f.auth.Register(testContext(), &dto.RegisterRequest{
		Email:    "login@example.com",
		Password: "secret123",
		FullName: "Login User",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := f.auth.Login(testContext(), &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	if err != ErrUserDoesNotExist {
		t.Errorf("unknown email error = %v, want %v", err, ErrUserDoesNotExist)
	}

	_, err = f.auth.Login(testContext(), &dto.LoginRequest{Email: "login@example.com", Password: "wrong"})
	if err != ErrInvalidPassword {
		t.Errorf("wrong password error = %v, want %v", err, ErrInvalidPassword)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.auth.Register(testContext(), &dto.RegisterRequest{
		Email:    "rotate@example.com",
		Password: "secret123",
		FullName: "Rotate User",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	first, err := f.auth.Login(testContext(), &dto.LoginRequest{Email: "rotate@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	second, err := f.auth.RefreshToken(testContext(), &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("rotation must mint a new refresh token")
	}

	// Replace-not-append: exactly one live refresh token per user.
	var count int64
	f.db.Model(&entity.RefreshToken{}).Count(&count)
	if count != 1 {
		t.Errorf("refresh token count = %d, want 1", count)
	}

	// The superseded token is dead.
	if _, err := f.auth.RefreshToken(testContext(), &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken}); err != ErrTokenRevoked {
		t.Errorf("stale refresh error = %v, want %v", err, ErrTokenRevoked)
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	f := newFixture(t)

	if _, err := f.auth.Register(testContext(), &dto.RegisterRequest{
		Email:    "cross@example.com",
		Password: "secret123",
		FullName: "Cross User",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	tokens, err := f.auth.Login(testContext(), &dto.LoginRequest{Email: "cross@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := f.auth.RefreshToken(testContext(), &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken}); err != ErrInvalidToken {
		t.Errorf("access token as refresh error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.Register(testContext(), &dto.RegisterRequest{
		Email:    "logout@example.com",
		Password: "secret123",
		FullName: "Logout User",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := f.auth.Login(testContext(), &dto.LoginRequest{Email: "logout@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.auth.Logout(testContext(), user.ID, "", 0); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	var count int64
	f.db.Model(&entity.RefreshToken{}).Count(&count)
	if count != 0 {
		t.Errorf("refresh token count after logout = %d, want 0", count)
	}
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)

	registered, err := f.auth.Register(testContext(), &dto.RegisterRequest{
		Email:    "me@example.com",
		Password: "secret123",
		FullName: "Me User",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	resp, err := f.auth.GetCurrentUser(testContext(), registered.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser returned error: %v", err)
	}
	if resp.Email != "me@example.com" {
		t.Errorf("Email = %s, want me@example.com", resp.Email)
	}

	if _, err := f.auth.GetCurrentUser(testContext(), uuid.New()); err != ErrUserNotFound {
		t.Errorf("unknown user error = %v, want %v", err, ErrUserNotFound)
	}
}
