package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Concept is a saved AI explanation of a programming concept.
type Concept struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"user_id"`
	Topic        string             `json:"topic" bson:"topic"`
	AgeGroup     string             `json:"ageGroup,omitempty" bson:"age_group,omitempty"`
	Title        string             `json:"title" bson:"title"`
	Explanation  string             `json:"explanation" bson:"explanation"`
	Analogy      string             `json:"analogy,omitempty" bson:"analogy,omitempty"`
	CodeExample  string             `json:"codeExample,omitempty" bson:"code_example,omitempty"`
	CodeLanguage string             `json:"codeLanguage,omitempty" bson:"code_language,omitempty"`
	FunFact      string             `json:"funFact,omitempty" bson:"fun_fact,omitempty"`
	KeyPoints    []string           `json:"keyPoints" bson:"key_points"`
	Fallback     bool               `json:"fallback" bson:"-"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
}

type ExplainRequest struct {
	Concept  string `json:"concept" validate:"required,min=2,max=200"`
	AgeGroup string `json:"ageGroup,omitempty" validate:"omitempty,oneof=6-8 9-11 12-14 15-17"`
	Language string `json:"language,omitempty" validate:"omitempty,max=40"`
}
