package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	issuer   = "rentaltoll-backend"
	audience = "operator-api"
)

// OperatorClaims identifies the fleet operator calling the API.
type OperatorClaims struct {
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateToken(subject string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*OperatorClaims, error)
}

type tokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := m.now()
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*OperatorClaims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
