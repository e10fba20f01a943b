package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleErrorApiError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("signup: %w", Conflict("Email already exists"))

	HandleError(rec, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ApiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, body.StatusCode)
	assert.Equal(t, "Email already exists", body.Message)
	assert.False(t, body.Success)
}

func TestHandleErrorHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, errors.New("connection refused to 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestRespondWithData(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondWithData(rec, http.StatusCreated, map[string]string{"id": "1"}, "created")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body struct {
		StatusCode int               `json:"statusCode"`
		Data       map[string]string `json:"data"`
		Message    string            `json:"message"`
		Success    bool              `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "1", body.Data["id"])
	assert.Equal(t, "created", body.Message)
}

func TestApiErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}
