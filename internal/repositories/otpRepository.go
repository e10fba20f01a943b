package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"codequest/internal/database"
	"codequest/internal/models"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) (*models.OTP, error)
	FindActive(ctx context.Context, userID primitive.ObjectID, otpCode, purpose string) (*models.OTP, error)
	MarkAsUsed(ctx context.Context, otpID primitive.ObjectID) (bool, error)
	InvalidateAll(ctx context.Context, userID primitive.ObjectID, purpose string) error
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type otpRepository struct {
	db database.Service
}

func NewOTPRepository(db database.Service) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) collection() *mongo.Collection {
	return r.db.Database().Collection(database.OTPsCollection)
}

func (r *otpRepository) Create(ctx context.Context, otp *models.OTP) (_ *models.OTP, err error) {
	done := trackQuery("create", "otp")
	defer func() { done(err) }()

	otp.ID = primitive.NewObjectID()
	otp.CreatedAt = time.Now().UTC()
	otp.UpdatedAt = otp.CreatedAt
	if _, err = r.collection().InsertOne(ctx, otp); err != nil {
		return nil, err
	}
	return otp, nil
}

// FindActive returns the unused, unexpired OTP matching the code, or nil when none does.
func (r *otpRepository) FindActive(ctx context.Context, userID primitive.ObjectID, otpCode, purpose string) (_ *models.OTP, err error) {
	done := trackQuery("findActive", "otp")
	defer func() { done(err) }()

	var otp models.OTP
	filter := bson.M{"user_id": userID, "otp_code": otpCode, "purpose": purpose, "is_used": false, "expires_at": bson.M{"$gt": time.Now().UTC()}}
	err = r.collection().FindOne(ctx, filter).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &otp, nil
}

// MarkAsUsed flips is_used only if it was still false, so a code is consumed at most once.
func (r *otpRepository) MarkAsUsed(ctx context.Context, otpID primitive.ObjectID) (_ bool, err error) {
	done := trackQuery("markAsUsed", "otp")
	defer func() { done(err) }()

	filter := bson.M{"_id": otpID, "is_used": false}
	update := bson.M{"$set": bson.M{"is_used": true, "updated_at": time.Now().UTC()}}
	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *otpRepository) InvalidateAll(ctx context.Context, userID primitive.ObjectID, purpose string) (err error) {
	done := trackQuery("invalidateAll", "otp")
	defer func() { done(err) }()

	filter := bson.M{"user_id": userID, "purpose": purpose, "is_used": false}
	update := bson.M{"$set": bson.M{"is_used": true, "updated_at": time.Now().UTC()}}
	_, err = r.collection().UpdateMany(ctx, filter, update)
	return err
}

func (r *otpRepository) DeleteExpired(ctx context.Context) (_ int64, err error) {
	done := trackQuery("deleteExpired", "otp")
	defer func() { done(err) }()

	filter := bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}},
		bson.M{"is_used": true},
	}}
	result, err := r.collection().DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *otpRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (err error) {
	done := trackQuery("deleteByUser", "otp")
	defer func() { done(err) }()

	_, err = r.collection().DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
