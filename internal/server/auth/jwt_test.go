package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("coastguard-7", RoleVerifier, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != "coastguard-7" || claims.Role != RoleVerifier {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u1", RoleVerifier, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", RoleVerifier, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}

func TestVerifier(t *testing.T) {
	t.Parallel()

	secret := "s3cr3t"
	good, _ := GenerateToken("officer", RoleVerifier, []byte(secret), time.Hour)
	citizen, _ := GenerateToken("citizen", "reporter", []byte(secret), time.Hour)

	v := NewVerifier(secret)
	if !v.Enabled() {
		t.Fatal("verifier with secret must be enabled")
	}

	sub, err := v.Authorize(good)
	if err != nil || sub != "officer" {
		t.Fatalf("Authorize(good) = %q, %v", sub, err)
	}
	if _, err := v.Authorize(""); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("missing token: want ErrorUnauthorized, got %v", err)
	}
	if _, err := v.Authorize("garbage"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("garbage token: want ErrorUnauthorized, got %v", err)
	}
	if _, err := v.Authorize(citizen); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("wrong role: want ErrForbidden, got %v", err)
	}

	open := NewVerifier("")
	if open.Enabled() {
		t.Fatal("verifier without secret must be disabled")
	}
	if _, err := open.Authorize(""); err != nil {
		t.Fatalf("disabled verifier must allow everyone, got %v", err)
	}
}
