package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"codequest/internal/metrics"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"codequest/internal/utils"
)

const passwordHashCost = bcrypt.DefaultCost

// UserService defines the interface for user-related business logic.
type UserService interface {
	RegisterUser(ctx context.Context, req *models.SignupRequest) (*models.User, error)
	LoginUser(ctx context.Context, creds *models.Login) (*models.User, *models.AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	GetUserProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID primitive.ObjectID, update *models.UserProfileUpdate) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID primitive.ObjectID, update *models.PreferencesUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, req *models.ChangePasswordRequest) error
	DeleteUser(ctx context.Context, userID primitive.ObjectID) error
	GetTotalUsers(ctx context.Context) (int64, error)
}

type userService struct {
	userRepo    repositories.UserRepository
	otpRepo     repositories.OTPRepository
	conceptRepo repositories.ConceptRepository
	reviewRepo  repositories.CodeReviewRepository
	ideaRepo    repositories.ProjectIdeaRepository
	tokens      *utils.TokenManager
}

func NewUserService(
	userRepo repositories.UserRepository,
	otpRepo repositories.OTPRepository,
	conceptRepo repositories.ConceptRepository,
	reviewRepo repositories.CodeReviewRepository,
	ideaRepo repositories.ProjectIdeaRepository,
	tokens *utils.TokenManager,
) UserService {
	return &userService{
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		conceptRepo: conceptRepo,
		reviewRepo:  reviewRepo,
		ideaRepo:    ideaRepo,
		tokens:      tokens,
	}
}

func hashPassword(password string) ([]byte, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, utils.BadRequest("Password must be at most 72 bytes")
	}
	if err != nil {
		return nil, utils.Internal("Failed to hash password", err)
	}
	return hashed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) GetTotalUsers(ctx context.Context) (int64, error) {
	return s.userRepo.CountAll(ctx)
}

func (s *userService) RegisterUser(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	log.Debug().Str("email", email).Msg("Attempting to register user")

	if err := s.ensureAvailable(ctx, primitive.NilObjectID, email, username); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Password:     string(hashedPassword),
		AuthProvider: models.AuthProviderLocal,
		Preferences:  models.DefaultPreferences(),
	}
	createdUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn().Str("email", email).Msg("Email or username already exists during user insertion")
			return nil, utils.Conflict("Email or username already exists")
		}
		return nil, utils.Internal("Failed to create user", err)
	}

	metrics.NewUsersTotal.Inc()
	log.Info().Str("user_id", createdUser.ID.Hex()).Str("email", createdUser.Email).Msg("User registered successfully")
	return createdUser, nil
}

func (s *userService) LoginUser(ctx context.Context, creds *models.Login) (*models.User, *models.AuthTokens, error) {
	email := normalizeEmail(creds.Email)
	log.Debug().Str("email", email).Msg("Attempting user login")

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
			log.Warn().Str("email", email).Msg("Invalid credentials during login attempt")
			return nil, nil, utils.Unauthorized("Invalid credentials")
		}
		return nil, nil, utils.Internal("Failed to find user", err)
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)) != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		log.Warn().Str("email", email).Msg("Invalid credentials (password mismatch) during login attempt")
		return nil, nil, utils.Unauthorized("Invalid credentials")
	}

	tokens, err := issueTokens(ctx, s.userRepo, s.tokens, user.ID)
	if err != nil {
		return nil, nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	log.Info().Str("user_id", user.ID.Hex()).Msg("User logged in successfully")
	return user, tokens, nil
}

func (s *userService) RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	if refreshToken == "" {
		return nil, utils.Unauthorized("Refresh token is required")
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("Rejected refresh token")
		return nil, utils.Unauthorized("Invalid or expired refresh token")
	}
	userID, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, utils.Unauthorized("Invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.Unauthorized("Invalid or expired refresh token")
		}
		return nil, utils.Internal("Failed to find user", err)
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenHash != utils.HashToken(refreshToken) {
		log.Warn().Str("user_id", userID.Hex()).Msg("Refresh token is not the latest issued one")
		return nil, utils.Unauthorized("Refresh token has been revoked")
	}

	return issueTokens(ctx, s.userRepo, s.tokens, userID)
}

func (s *userService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := revokeRefreshToken(ctx, s.userRepo, userID); err != nil {
		return utils.Internal("Failed to log out", err)
	}
	log.Info().Str("user_id", userID.Hex()).Msg("User logged out")
	return nil
}

func (s *userService) GetUserProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Warn().Str("user_id", userID.Hex()).Msg("User not found for GetUserProfile")
			return nil, utils.NotFound("User not found")
		}
		return nil, utils.Internal("Failed to fetch user profile", err)
	}
	return user, nil
}

func (s *userService) UpdateUserProfile(ctx context.Context, userID primitive.ObjectID, update *models.UserProfileUpdate) (*models.User, error) {
	fields := bson.M{}
	var email, username string
	if update.Email != nil {
		email = normalizeEmail(*update.Email)
		fields["email"] = email
	}
	if update.Username != nil {
		username = strings.TrimSpace(*update.Username)
		fields["username"] = username
	}
	if len(fields) == 0 {
		return nil, utils.BadRequest("No fields to update")
	}

	if err := s.ensureAvailable(ctx, userID, email, username); err != nil {
		return nil, err
	}

	if err := s.applyUpdate(ctx, userID, fields); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", userID.Hex()).Msg("User profile updated")
	return s.GetUserProfile(ctx, userID)
}

func (s *userService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, update *models.PreferencesUpdate) (*models.User, error) {
	fields := bson.M{}
	if update.Theme != nil {
		fields["preferences.theme"] = *update.Theme
	}
	if update.Language != nil {
		fields["preferences.language"] = *update.Language
	}
	if update.Difficulty != nil {
		fields["preferences.difficulty"] = *update.Difficulty
	}
	if update.SoundEnabled != nil {
		fields["preferences.sound_enabled"] = *update.SoundEnabled
	}
	if update.DailyGoalMinutes != nil {
		fields["preferences.daily_goal_minutes"] = *update.DailyGoalMinutes
	}
	if update.Avatar != nil {
		fields["preferences.avatar"] = *update.Avatar
	}
	if len(fields) == 0 {
		return nil, utils.BadRequest("No preferences to update")
	}

	if err := s.applyUpdate(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.GetUserProfile(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req *models.ChangePasswordRequest) error {
	user, err := s.GetUserProfile(ctx, userID)
	if err != nil {
		return err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		log.Warn().Str("user_id", userID.Hex()).Msg("Wrong current password on password change")
		return utils.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.applyUpdate(ctx, userID, bson.M{"password": string(hashedPassword)}); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.Hex()).Msg("Password changed")
	return nil
}

// DeleteUser removes the account together with its saved AI results and OTPs.
func (s *userService) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.GetUserProfile(ctx, userID); err != nil {
		return err
	}

	if _, err := s.conceptRepo.DeleteByUser(ctx, userID); err != nil {
		return utils.Internal("Failed to delete concepts", err)
	}
	if _, err := s.reviewRepo.DeleteByUser(ctx, userID); err != nil {
		return utils.Internal("Failed to delete code reviews", err)
	}
	if _, err := s.ideaRepo.DeleteByUser(ctx, userID); err != nil {
		return utils.Internal("Failed to delete project ideas", err)
	}
	if err := s.otpRepo.DeleteByUser(ctx, userID); err != nil {
		return utils.Internal("Failed to delete OTPs", err)
	}

	result, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return utils.Internal("Failed to delete account", err)
	}
	if result.DeletedCount == 0 {
		return utils.NotFound("User not found")
	}
	log.Info().Str("user_id", userID.Hex()).Msg("User account deleted")
	return nil
}

// ensureAvailable returns 409 when email or username belongs to a user other than self.
// Empty values are not checked.
func (s *userService) ensureAvailable(ctx context.Context, self primitive.ObjectID, email, username string) error {
	if email != "" {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Internal("Failed to check email", err)
		}
		if existing != nil && existing.ID != self {
			return utils.Conflict("Email already exists")
		}
	}
	if username != "" {
		existing, err := s.userRepo.FindByUsername(ctx, username)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Internal("Failed to check username", err)
		}
		if existing != nil && existing.ID != self {
			return utils.Conflict("Username already taken")
		}
	}
	return nil
}

func (s *userService) applyUpdate(ctx context.Context, userID primitive.ObjectID, fields bson.M) error {
	result, err := s.userRepo.Update(ctx, userID, fields)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.Conflict("Email or username already exists")
		}
		return utils.Internal("Failed to update user", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("User not found")
	}
	return nil
}
