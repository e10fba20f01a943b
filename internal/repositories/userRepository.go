package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"codequest/internal/database"
	"codequest/internal/models"
)

// Reference fields on the user document that point to saved AI results.
const (
	ConceptsField     = "concepts"
	CodeReviewsField  = "code_reviews"
	ProjectIdeasField = "project_ideas"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, userID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error)
	AddReference(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error
	Delete(ctx context.Context, userID primitive.ObjectID) (*mongo.DeleteResult, error)
	CountAll(ctx context.Context) (int64, error)
}

type userRepository struct {
	db database.Service
}

func NewUserRepository(db database.Service) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) collection() *mongo.Collection {
	return r.db.Database().Collection(database.UsersCollection)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (_ *models.User, err error) {
	done := trackQuery("create", "user")
	defer func() { done(err) }()

	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Concepts == nil {
		user.Concepts = []primitive.ObjectID{}
	}
	if user.CodeReviews == nil {
		user.CodeReviews = []primitive.ObjectID{}
	}
	if user.ProjectIdeas == nil {
		user.ProjectIdeas = []primitive.ObjectID{}
	}

	if _, err = r.collection().InsertOne(ctx, user); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to insert user into database")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	return r.findOne(ctx, "findByEmail", bson.M{"email": email})
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "findByUsername", bson.M{"username": username})
}

func (r *userRepository) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, "findById", bson.M{"_id": userID})
}

// findOne returns mongo.ErrNoDocuments unwrapped when nothing matches.
func (r *userRepository) findOne(ctx context.Context, queryType string, filter bson.M) (_ *models.User, err error) {
	done := trackQuery(queryType, "user")
	defer func() {
		if errors.Is(err, mongo.ErrNoDocuments) {
			done(nil)
			return
		}
		done(err)
	}()

	var user models.User
	if err = r.collection().FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, userID primitive.ObjectID, updateFields bson.M) (_ *mongo.UpdateResult, err error) {
	done := trackQuery("update", "user")
	defer func() { done(err) }()

	updateFields["updated_at"] = time.Now().UTC()
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": updateFields})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error updating user")
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return result, nil
}

func (r *userRepository) AddReference(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) (err error) {
	done := trackQuery("addReference", "user")
	defer func() { done(err) }()

	switch field {
	case ConceptsField, CodeReviewsField, ProjectIdeasField:
	default:
		return fmt.Errorf("unknown reference field %q", field)
	}

	update := bson.M{
		"$addToSet": bson.M{field: refID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to link %s to user: %w", field, err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, userID primitive.ObjectID) (_ *mongo.DeleteResult, err error) {
	done := trackQuery("delete", "user")
	defer func() { done(err) }()

	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error deleting user account")
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}
	return result, nil
}

func (r *userRepository) CountAll(ctx context.Context) (_ int64, err error) {
	done := trackQuery("countAll", "user")
	defer func() { done(err) }()

	count, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to count total users")
		return 0, fmt.Errorf("failed to count total users: %w", err)
	}
	return count, nil
}
