package utils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

// UserIDKey is the request context key under which the authenticated user id is stored.
const UserIDKey contextKey = "userID"

const maxBodyBytes = 1 << 20

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext returns the raw user id set by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// GetUserIDFromContext extracts and parses the userID from the request context.
func GetUserIDFromContext(r *http.Request) (primitive.ObjectID, error) {
	userIDStr, ok := UserIDFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, Unauthorized("Invalid user ID")
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, Unauthorized("Invalid user ID format")
	}
	return userID, nil
}

// DecodeJSON decodes a size-limited request body into dst and validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return BadRequest("Request body must not be empty")
		case errors.As(err, &maxErr):
			return NewApiError(http.StatusRequestEntityTooLarge, "Request body too large")
		default:
			return BadRequest("Invalid request body: " + err.Error())
		}
	}

	return ValidateStruct(dst)
}

// ParseLimit reads ?limit= clamped to [1, max]; missing or invalid values yield def.
func ParseLimit(r *http.Request, def, max int64) int64 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
