package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestTokenManager(accessTTL time.Duration) *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", accessTTL, time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager(time.Minute)
	id := primitive.NewObjectID()

	token, exp, err := tm.GenerateAccessToken(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := tm.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.ID)
	assert.Equal(t, AccessTokenKind, claims.Kind)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	tm := newTestTokenManager(time.Minute)
	id := primitive.NewObjectID()

	access, _, err := tm.GenerateAccessToken(id)
	require.NoError(t, err)
	refresh, _, err := tm.GenerateRefreshToken(id)
	require.NoError(t, err)

	_, err = tm.ParseRefreshToken(access)
	assert.Error(t, err)
	_, err = tm.ParseAccessToken(refresh)
	assert.Error(t, err)

	// same secret for both kinds still rejects the wrong kind
	shared := NewTokenManager("same", "same", time.Minute, time.Minute)
	token, _, err := shared.GenerateAccessToken(id)
	require.NoError(t, err)
	_, err = shared.ParseRefreshToken(token)
	assert.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := newTestTokenManager(-time.Minute)

	token, _, err := tm.GenerateAccessToken(primitive.NewObjectID())
	require.NoError(t, err)

	_, err = tm.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	tm := newTestTokenManager(time.Minute)
	id := primitive.NewObjectID()

	a, _, err := tm.GenerateRefreshToken(id)
	require.NoError(t, err)
	b, _, err := tm.GenerateRefreshToken(id)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, HashToken(a), HashToken(b))
}
