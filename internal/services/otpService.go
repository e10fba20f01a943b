package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"codequest/internal/metrics"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"codequest/internal/utils"
)

type OTPSettings struct {
	Length int
	TTL    time.Duration
}

// OTPService handles the forgot-password flow.
type OTPService interface {
	GenerateOTPForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otpCode string) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type otpService struct {
	userRepo repositories.UserRepository
	otpRepo  repositories.OTPRepository
	mailer   EmailDispatcher
	settings OTPSettings
}

func NewOTPService(userRepo repositories.UserRepository, otpRepo repositories.OTPRepository, mailer EmailDispatcher, settings OTPSettings) OTPService {
	if settings.Length == 0 {
		settings.Length = 6
	}
	if settings.TTL <= 0 {
		settings.TTL = 10 * time.Minute
	}
	return &otpService{userRepo: userRepo, otpRepo: otpRepo, mailer: mailer, settings: settings}
}

func (s *otpService) GenerateOTPForgotPassword(ctx context.Context, email string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	if err := s.otpRepo.InvalidateAll(ctx, user.ID, models.OTPPurposeResetPassword); err != nil {
		return utils.Internal("Failed to invalidate previous OTPs", err)
	}

	otpCode, err := utils.GenerateSecureOTP(s.settings.Length)
	if err != nil {
		return utils.Internal("Failed to generate OTP", err)
	}

	otp := &models.OTP{
		UserID:    user.ID,
		OTPCode:   utils.HashToken(otpCode),
		Purpose:   models.OTPPurposeResetPassword,
		ExpiresAt: time.Now().UTC().Add(s.settings.TTL),
	}
	if _, err := s.otpRepo.Create(ctx, otp); err != nil {
		return utils.Internal("Failed to store OTP", err)
	}

	if err := s.mailer.DispatchEmail(ctx, user.Email, "Your CodeQuest password reset code", resetEmailBody(user.Username, otpCode, s.settings.TTL)); err != nil {
		return utils.Internal("Failed to send OTP email", err)
	}

	metrics.OTPIssuedTotal.Inc()
	log.Info().Str("user_id", user.ID.Hex()).Msg("Password reset OTP issued")
	return nil
}

// VerifyOTP checks the code without consuming it; ResetPassword consumes it.
func (s *otpService) VerifyOTP(ctx context.Context, email, otpCode string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}
	_, err = s.activeOTP(ctx, user, otpCode)
	return err
}

func (s *otpService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return err
	}
	otp, err := s.activeOTP(ctx, user, req.OTP)
	if err != nil {
		return err
	}

	consumed, err := s.otpRepo.MarkAsUsed(ctx, otp.ID)
	if err != nil {
		return utils.Internal("Failed to consume OTP", err)
	}
	if !consumed {
		return utils.BadRequest("Invalid or expired OTP")
	}

	hashedPassword, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	fields := bson.M{"password": string(hashedPassword), "refresh_token_hash": ""}
	if _, err := s.userRepo.Update(ctx, user.ID, fields); err != nil {
		return utils.Internal("Failed to reset password", err)
	}

	metrics.PasswordResetsTotal.Inc()
	log.Info().Str("user_id", user.ID.Hex()).Msg("Password reset via OTP")
	return nil
}

func (s *otpService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.otpRepo.DeleteExpired(ctx)
}

func (s *otpService) findUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFound("No account found for this email")
		}
		return nil, utils.Internal("Failed to find user", err)
	}
	return user, nil
}

func (s *otpService) activeOTP(ctx context.Context, user *models.User, otpCode string) (*models.OTP, error) {
	otp, err := s.otpRepo.FindActive(ctx, user.ID, utils.HashToken(otpCode), models.OTPPurposeResetPassword)
	if err != nil {
		return nil, utils.Internal("Failed to verify OTP", err)
	}
	if otp == nil {
		log.Warn().Str("user_id", user.ID.Hex()).Msg("Invalid or expired OTP submitted")
		return nil, utils.BadRequest("Invalid or expired OTP")
	}
	return otp, nil
}

func resetEmailBody(username, otpCode string, ttl time.Duration) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Your password reset code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not ask for it, you can ignore this email.</p>",
		html.EscapeString(username), otpCode, int(ttl.Minutes()),
	)
}
