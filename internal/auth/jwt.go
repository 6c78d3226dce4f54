// Package auth issues and verifies bearer tokens and hashes credentials.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

var errInvalidToken = httperr.UnauthorizedErr("invalid_token", "Invalid or expired token.")

// TokenService is the contract the rest of the code depends on.
type TokenService interface {
	IssueToken(userID string) (string, error)
	Verify(token string) (string, error)
}

// JWT signs HS256 tokens whose subject is the user id. One TTL applies to
// every token it issues.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

func (j *JWT) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Verify returns the user id carried by token.
func (j *JWT) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	if claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

// IsInvalidToken reports whether err came from Verify rejecting a token.
func IsInvalidToken(err error) bool {
	return errors.Is(err, errInvalidToken) || httperr.IsBusiness(err, "invalid_token")
}

var _ TokenService = (*JWT)(nil)
