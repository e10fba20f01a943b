package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codequest/internal/database"
	"codequest/internal/models"
)

// HistoryRepository stores per-user AI results. Documents carry user_id and created_at.
type HistoryRepository[T any] interface {
	Create(ctx context.Context, item *T) error
	FindByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]T, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) (bool, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type (
	ConceptRepository     = HistoryRepository[models.Concept]
	CodeReviewRepository  = HistoryRepository[models.CodeReview]
	ProjectIdeaRepository = HistoryRepository[models.ProjectIdea]
)

func NewConceptRepository(db database.Service) ConceptRepository {
	return &historyRepository[models.Concept]{db: db, collectionName: database.ConceptsCollection, name: "concept"}
}

func NewCodeReviewRepository(db database.Service) CodeReviewRepository {
	return &historyRepository[models.CodeReview]{db: db, collectionName: database.CodeReviewsCollection, name: "code_review"}
}

func NewProjectIdeaRepository(db database.Service) ProjectIdeaRepository {
	return &historyRepository[models.ProjectIdea]{db: db, collectionName: database.ProjectIdeasCollection, name: "project_idea"}
}

type historyRepository[T any] struct {
	db             database.Service
	collectionName string
	name           string
}

func (r *historyRepository[T]) collection() *mongo.Collection {
	return r.db.Database().Collection(r.collectionName)
}

func (r *historyRepository[T]) Create(ctx context.Context, item *T) (err error) {
	done := trackQuery("create", r.name)
	defer func() { done(err) }()

	if _, err = r.collection().InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to insert %s: %w", r.name, err)
	}
	return nil
}

func (r *historyRepository[T]) FindByUser(ctx context.Context, userID primitive.ObjectID, limit int64) (_ []T, err error) {
	done := trackQuery("findByUser", r.name)
	defer func() { done(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection().Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s history: %w", r.name, err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("error decoding %s history: %w", r.name, err)
	}
	return items, nil
}

func (r *historyRepository[T]) Delete(ctx context.Context, userID, id primitive.ObjectID) (_ bool, err error) {
	done := trackQuery("delete", r.name)
	defer func() { done(err) }()

	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", r.name, err)
	}
	return result.DeletedCount > 0, nil
}

func (r *historyRepository[T]) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (_ int64, err error) {
	done := trackQuery("deleteByUser", r.name)
	defer func() { done(err) }()

	result, err := r.collection().DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s history: %w", r.name, err)
	}
	return result.DeletedCount, nil
}
