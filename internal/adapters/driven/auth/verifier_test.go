package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

func TestNewVerifier(t *testing.T) {
	verifier := NewVerifier("test-secret")
	if verifier == nil {
		t.Fatal("expected non-nil verifier")
	}
	if string(verifier.secret) != "test-secret" {
		t.Error("expected secret to be set")
	}
}

func TestMint(t *testing.T) {
	verifier := NewVerifier("test-jwt-secret")

	now := time.Now()
	claims := &domain.TokenClaims{
		UserID:    "user-123",
		IssuedAt:  now,
		ExpiresAt: now.Add(24 * time.Hour),
	}

	token, err := verifier.Mint(claims)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	if token == "" {
		t.Error("expected non-empty token")
	}

	// JWT tokens have 3 parts separated by dots
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected JWT format with 3 parts, got %s", token)
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	verifier := NewVerifier("test-jwt-secret")

	now := time.Now().Truncate(time.Second)
	claims := &domain.TokenClaims{
		UserID:    "user-123",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}

	token, err := verifier.Mint(claims)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	parsed, err := verifier.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	if parsed.UserID != "user-123" {
		t.Errorf("expected user-123, got %s", parsed.UserID)
	}
	if !parsed.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expected expiry %v, got %v", now.Add(time.Hour), parsed.ExpiresAt)
	}
}

func TestParseToken_Expired(t *testing.T) {
	verifier := NewVerifier("test-jwt-secret")

	now := time.Now()
	claims := &domain.TokenClaims{
		UserID:    "user-123",
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}

	token, err := verifier.Mint(claims)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	_, err = verifier.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	minter := NewVerifier("secret-one")
	verifier := NewVerifier("secret-two")

	token, err := minter.Mint(&domain.TokenClaims{
		UserID:    "user-123",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	_, err = verifier.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	verifier := NewVerifier("test-jwt-secret")

	_, err := verifier.ParseToken("not-a-token")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseToken_WrongSigningMethod(t *testing.T) {
	verifier := NewVerifier("test-jwt-secret")

	// alg: none is the classic token-forgery vector
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	_, err = verifier.ParseToken(signed)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for alg none, got %v", err)
	}
}

func TestParseToken_SubjectFallback(t *testing.T) {
	verifier := NewVerifier("test-jwt-secret")

	// A token minted elsewhere may carry only the registered sub claim
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-456",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-jwt-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	parsed, err := verifier.ParseToken(signed)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if parsed.UserID != "user-456" {
		t.Errorf("expected subject fallback user-456, got %s", parsed.UserID)
	}
}

func TestParseToken_NoSubject(t *testing.T) {
	verifier := NewVerifier("test-jwt-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-jwt-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	_, err = verifier.ParseToken(signed)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for missing subject, got %v", err)
	}
}
