// Package auth issues and verifies the bearer credentials the messaging
// core trusts: HS256 access tokens carrying the username as subject, and
// bcrypt password hashes for the user directory.
package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a presented credential can fail:
// bad signature, expired, malformed, or missing subject claim.
var ErrInvalidToken = errors.New("invalid or expired token")

// Service signs and verifies access tokens with a shared HMAC secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. ttl bounds the lifetime of every
// token this service signs.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// CreateAccessToken signs a token whose subject is the given username.
func (s *Service) CreateAccessToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(s.ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAccessToken verifies the token and returns the username it was
// issued to. Any verification failure maps to ErrInvalidToken.
func (s *Service) ParseAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
