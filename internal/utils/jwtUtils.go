package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AccessTokenKind  = "access"
	RefreshTokenKind = "refresh"
)

var ErrWrongTokenKind = errors.New("token kind mismatch")

type Claims struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access and refresh tokens with separate secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *TokenManager) GenerateAccessToken(id primitive.ObjectID) (string, time.Time, error) {
	return m.generate(id, AccessTokenKind, m.accessSecret, m.accessTTL)
}

func (m *TokenManager) GenerateRefreshToken(id primitive.ObjectID) (string, time.Time, error) {
	return m.generate(id, RefreshTokenKind, m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, AccessTokenKind, m.accessSecret)
}

func (m *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, RefreshTokenKind, m.refreshSecret)
}

func (m *TokenManager) generate(id primitive.ObjectID, kind string, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(ttl)
	claims := &Claims{
		ID:   id.Hex(),
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, expirationTime, nil
}

func (m *TokenManager) parse(tokenString, kind string, key []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}
