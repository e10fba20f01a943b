package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"codequest/internal/models"
	"codequest/internal/repositories"
	"codequest/internal/utils"
)

func newTestTokens() *utils.TokenManager {
	return utils.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

var errDuplicate = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, errDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	user.Concepts, user.CodeReviews, user.ProjectIdeas = []primitive.ObjectID{}, []primitive.ObjectID{}, []primitive.ObjectID{}
	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByID(_ context.Context, userID primitive.ObjectID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == userID })
}

func (r *fakeUserRepo) Update(_ context.Context, userID primitive.ObjectID, fields bson.M) (*mongo.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return &mongo.UpdateResult{}, nil
	}
	for key, value := range fields {
		switch key {
		case "email":
			u.Email = value.(string)
		case "username":
			u.Username = value.(string)
		case "password":
			u.Password = value.(string)
		case "refresh_token_hash":
			u.RefreshTokenHash = value.(string)
		case "preferences.theme":
			u.Preferences.Theme = value.(string)
		case "preferences.language":
			u.Preferences.Language = value.(string)
		case "preferences.difficulty":
			u.Preferences.Difficulty = value.(string)
		case "preferences.sound_enabled":
			u.Preferences.SoundEnabled = value.(bool)
		case "preferences.daily_goal_minutes":
			u.Preferences.DailyGoalMinutes = value.(int)
		case "preferences.avatar":
			u.Preferences.Avatar = value.(string)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *fakeUserRepo) AddReference(_ context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	switch field {
	case repositories.ConceptsField:
		u.Concepts = append(u.Concepts, refID)
	case repositories.CodeReviewsField:
		u.CodeReviews = append(u.CodeReviews, refID)
	case repositories.ProjectIdeasField:
		u.ProjectIdeas = append(u.ProjectIdeas, refID)
	default:
		return errors.New("unknown field")
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID primitive.ObjectID) (*mongo.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return &mongo.DeleteResult{}, nil
	}
	delete(r.users, userID)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (r *fakeUserRepo) CountAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeOTPRepo struct {
	mu   sync.Mutex
	otps []*models.OTP
}

func (r *fakeOTPRepo) Create(_ context.Context, otp *models.OTP) (*models.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp.ID = primitive.NewObjectID()
	otp.CreatedAt = time.Now().UTC()
	stored := *otp
	r.otps = append(r.otps, &stored)
	return otp, nil
}

func (r *fakeOTPRepo) FindActive(_ context.Context, userID primitive.ObjectID, otpCode, purpose string) (*models.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.otps {
		if o.UserID == userID && o.OTPCode == otpCode && o.Purpose == purpose && !o.IsUsed && o.ExpiresAt.After(time.Now()) {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeOTPRepo) MarkAsUsed(_ context.Context, otpID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.otps {
		if o.ID == otpID && !o.IsUsed {
			o.IsUsed = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOTPRepo) InvalidateAll(_ context.Context, userID primitive.ObjectID, purpose string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.otps {
		if o.UserID == userID && o.Purpose == purpose {
			o.IsUsed = true
		}
	}
	return nil
}

func (r *fakeOTPRepo) DeleteExpired(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.otps[:0]
	var deleted int64
	for _, o := range r.otps {
		if o.IsUsed || o.ExpiresAt.Before(time.Now()) {
			deleted++
			continue
		}
		kept = append(kept, o)
	}
	r.otps = kept
	return deleted, nil
}

func (r *fakeOTPRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.otps[:0]
	for _, o := range r.otps {
		if o.UserID != userID {
			kept = append(kept, o)
		}
	}
	r.otps = kept
	return nil
}

type fakeHistoryRepo[T any] struct {
	mu      sync.Mutex
	items   []T
	ownerOf func(T) primitive.ObjectID
	idOf    func(T) primitive.ObjectID
	failErr error
}

func newFakeConcepts() *fakeHistoryRepo[models.Concept] {
	return &fakeHistoryRepo[models.Concept]{ownerOf: func(c models.Concept) primitive.ObjectID { return c.UserID },
		idOf: func(c models.Concept) primitive.ObjectID { return c.ID }}
}

func newFakeReviews() *fakeHistoryRepo[models.CodeReview] {
	return &fakeHistoryRepo[models.CodeReview]{ownerOf: func(c models.CodeReview) primitive.ObjectID { return c.UserID },
		idOf: func(c models.CodeReview) primitive.ObjectID { return c.ID }}
}

func newFakeIdeas() *fakeHistoryRepo[models.ProjectIdea] {
	return &fakeHistoryRepo[models.ProjectIdea]{ownerOf: func(c models.ProjectIdea) primitive.ObjectID { return c.UserID },
		idOf: func(c models.ProjectIdea) primitive.ObjectID { return c.ID }}
}

func (r *fakeHistoryRepo[T]) Create(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeHistoryRepo[T]) FindByUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []T{}
	for i := len(r.items) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.ownerOf(r.items[i]) == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo[T]) Delete(_ context.Context, userID, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if r.idOf(item) == id && r.ownerOf(item) == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeHistoryRepo[T]) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	var deleted int64
	for _, item := range r.items {
		if r.ownerOf(item) == userID {
			deleted++
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
	return deleted, nil
}

func (r *fakeHistoryRepo[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func (g *fakeGenerator) Name() string { return "fake" }

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Health(context.Context) error { return nil }
func (c *memoryCache) Close() error                 { return nil }

func (c *memoryCache) keysWithPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

type sentEmail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) DispatchEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) last() sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}
