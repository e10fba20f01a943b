package models

import "time"

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanumunicode"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,bcryptmax"`
}

// Login represents the credentials submitted for user login.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric,min=4,max=10"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,numeric,min=4,max=10"`
	NewPassword string `json:"newPassword" validate:"required,min=8,bcryptmax"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,bcryptmax,nefield=CurrentPassword"`
}

// AuthTokens is a freshly issued access/refresh pair.
type AuthTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type LoginResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}
