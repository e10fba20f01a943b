package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&signupPayload{Email: "nope", Password: "short"})
	require.Error(t, err)

	var apiErr *ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Errors, "email must be a valid email address")
	assert.Contains(t, apiErr.Errors, "password must be at least 8")
}

func TestValidateStructPasswordByteLimit(t *testing.T) {
	type payload struct {
		Password string `json:"password" validate:"required,min=8,bcryptmax"`
	}

	// 40 runes, 80 bytes
	err := ValidateStruct(&payload{Password: strings.Repeat("é", 40)})
	var apiErr *ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"password must be at most 72 bytes"}, apiErr.Errors)

	assert.NoError(t, ValidateStruct(&payload{Password: strings.Repeat("é", 36)}))
	assert.NoError(t, ValidateStruct(&payload{Password: strings.Repeat("a", 72)}))
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"email":"kid@example.com","password":"supersecret"}`, 0},
		{"empty", ``, http.StatusBadRequest},
		{"unknown field", `{"email":"kid@example.com","password":"supersecret","admin":true}`, http.StatusBadRequest},
		{"invalid", `{"email":"kid@example.com"}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p signupPayload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			if tc.status == 0 {
				assert.NoError(t, err)
				return
			}
			var apiErr *ApiError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
		})
	}
}

func TestParseLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	assert.Equal(t, int64(100), ParseLimit(req, 20, 100))

	req = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	assert.Equal(t, int64(20), ParseLimit(req, 20, 100))

	req = httptest.NewRequest(http.MethodGet, "/?limit=7", nil)
	assert.Equal(t, int64(7), ParseLimit(req, 20, 100))
}

func TestGenerateSecureOTP(t *testing.T) {
	otp, err := GenerateSecureOTP(6)
	require.NoError(t, err)
	assert.Len(t, otp, 6)
	for _, c := range otp {
		assert.True(t, c >= '0' && c <= '9')
	}

	_, err = GenerateSecureOTP(0)
	assert.Error(t, err)
}
