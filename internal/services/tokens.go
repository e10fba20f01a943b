package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"codequest/internal/models"
	"codequest/internal/repositories"
	"codequest/internal/utils"
)

// issueTokens signs a new access/refresh pair and stores the refresh token hash on the
// user, which revokes any refresh token issued before.
func issueTokens(ctx context.Context, userRepo repositories.UserRepository, tokens *utils.TokenManager, userID primitive.ObjectID) (*models.AuthTokens, error) {
	access, accessExp, err := tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, utils.Internal("Could not generate token", err)
	}
	refresh, refreshExp, err := tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, utils.Internal("Could not generate token", err)
	}

	result, err := userRepo.Update(ctx, userID, bson.M{"refresh_token_hash": utils.HashToken(refresh)})
	if err != nil {
		return nil, utils.Internal("Could not store refresh token", err)
	}
	if result.MatchedCount == 0 {
		return nil, utils.NotFound("User not found")
	}

	return &models.AuthTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func revokeRefreshToken(ctx context.Context, userRepo repositories.UserRepository, userID primitive.ObjectID) error {
	if _, err := userRepo.Update(ctx, userID, bson.M{"refresh_token_hash": ""}); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
