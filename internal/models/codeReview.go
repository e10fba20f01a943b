package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CodeReview struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"user_id"`
	Code          string             `json:"code" bson:"code"`
	Language      string             `json:"language" bson:"language"`
	Summary       string             `json:"summary" bson:"summary"`
	Score         int                `json:"score" bson:"score"`
	Strengths     []string           `json:"strengths" bson:"strengths"`
	Improvements  []string           `json:"improvements" bson:"improvements"`
	Bugs          []string           `json:"bugs" bson:"bugs"`
	ImprovedCode  string             `json:"improvedCode,omitempty" bson:"improved_code,omitempty"`
	Encouragement string             `json:"encouragement,omitempty" bson:"encouragement,omitempty"`
	Fallback      bool               `json:"fallback" bson:"-"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
}

type CodeReviewRequest struct {
	Code     string `json:"code" validate:"required,max=20000"`
	Language string `json:"language" validate:"required,max=40"`
}
