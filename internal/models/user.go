package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuthProviderLocal = "local"
)

// Preferences are the learner settings the frontend persists per account.
type Preferences struct {
	Theme            string `json:"theme" bson:"theme"`
	Language         string `json:"language" bson:"language"`
	Difficulty       string `json:"difficulty" bson:"difficulty"`
	SoundEnabled     bool   `json:"soundEnabled" bson:"sound_enabled"`
	DailyGoalMinutes int    `json:"dailyGoalMinutes" bson:"daily_goal_minutes"`
	Avatar           string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:            "light",
		Language:         "python",
		Difficulty:       "beginner",
		SoundEnabled:     true,
		DailyGoalMinutes: 15,
	}
}

type User struct {
	ID               primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Username         string               `json:"username" bson:"username"`
	Email            string               `json:"email" bson:"email"`
	Password         string               `json:"-" bson:"password,omitempty"`
	AuthProvider     string               `json:"authProvider" bson:"auth_provider"`
	Preferences      Preferences          `json:"preferences" bson:"preferences"`
	Concepts         []primitive.ObjectID `json:"concepts" bson:"concepts"`
	CodeReviews      []primitive.ObjectID `json:"codeReviews" bson:"code_reviews"`
	ProjectIdeas     []primitive.ObjectID `json:"projectIdeas" bson:"project_ideas"`
	RefreshTokenHash string               `json:"-" bson:"refresh_token_hash,omitempty"`
	CreatedAt        time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updated_at"`
}

type UserProfileUpdate struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=32,alphanumunicode"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

type PreferencesUpdate struct {
	Theme            *string `json:"theme,omitempty" validate:"omitempty,oneof=light dark"`
	Language         *string `json:"language,omitempty" validate:"omitempty,oneof=python javascript scratch html"`
	Difficulty       *string `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	SoundEnabled     *bool   `json:"soundEnabled,omitempty"`
	DailyGoalMinutes *int    `json:"dailyGoalMinutes,omitempty" validate:"omitempty,min=5,max=180"`
	Avatar           *string `json:"avatar,omitempty" validate:"omitempty,max=64"`
}
