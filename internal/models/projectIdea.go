package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectIdea struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"user_id"`
	Interests     []string           `json:"interests" bson:"interests"`
	Difficulty    string             `json:"difficulty" bson:"difficulty"`
	Language      string             `json:"language" bson:"language"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Features      []string           `json:"features" bson:"features"`
	Steps         []string           `json:"steps" bson:"steps"`
	Concepts      []string           `json:"concepts" bson:"concepts"`
	EstimatedTime string             `json:"estimatedTime,omitempty" bson:"estimated_time,omitempty"`
	Fallback      bool               `json:"fallback" bson:"-"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
}

type ProjectIdeaRequest struct {
	Interests  []string `json:"interests" validate:"required,min=1,max=5,dive,required,max=50"`
	Difficulty string   `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Language   string   `json:"language,omitempty" validate:"omitempty,max=40"`
}
