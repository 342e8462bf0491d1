// Package auth issues and checks the HS256 tokens that gate verification.
// Only tokens carrying the verifier role may move a report to verified.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
)

// RoleVerifier is the role required to verify reports.
const RoleVerifier = "verifier"

// Claims carries the caller identity and role on top of the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func GenerateToken(subject, role string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates the signature and expiry of tokenString.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Verifier checks bearer tokens for the verifier role. A Verifier with an
// empty secret lets every caller through.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether tokens are checked at all.
func (v *Verifier) Enabled() bool { return len(v.secret) > 0 }

// Authorize returns the token subject, or an error wrapping
// common.ErrorUnauthorized / common.ErrForbidden.
func (v *Verifier) Authorize(tokenString string) (string, error) {
	if !v.Enabled() {
		return "", nil
	}
	if tokenString == "" {
		return "", fmt.Errorf("%w: missing token", common.ErrorUnauthorized)
	}
	claims, err := ParseToken(tokenString, v.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	if claims.Role != RoleVerifier {
		return "", common.ErrForbidden
	}
	return claims.Subject, nil
}
