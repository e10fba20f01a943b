package middlewares

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"codequest/internal/metrics"
	"codequest/internal/utils"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) utils.ApiError {
	t.Helper()
	var body utils.ApiError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestCors(t *testing.T) {
	h := NewCors([]string{"http://localhost:5173", " https://codequest.example/ "})(okHandler)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://codequest.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "https://codequest.example", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	h := limiter.Middleware(okHandler)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1236"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234"), "other clients have their own bucket")

	assert.Equal(t, 0, limiter.Cleanup(time.Hour))
	assert.Equal(t, 2, limiter.Cleanup(0))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1237"), "a pruned client starts with a full bucket")
}

func TestRateLimiterKeysByUser(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	h := limiter.Middleware(okHandler)

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(utils.WithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"))
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	userID := primitive.NewObjectID()
	access, _, err := tokens.GenerateAccessToken(userID)
	require.NoError(t, err)
	refresh, _, err := tokens.GenerateRefreshToken(userID)
	require.NoError(t, err)

	var seen string
	h := NewAuthMiddleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.UserIDFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: access}) }, status: http.StatusOK},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }, status: http.StatusOK},
		{name: "missing", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{name: "refresh token as access", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+refresh) }, status: http.StatusUnauthorized},
		{name: "garbage", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") }, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.Hex(), seen)
			} else {
				assert.Empty(t, seen)
				assert.False(t, decodeError(t, rr).Success)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rr).Message)
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogging(zerolog.New(&buf))(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get(requestIDHeader))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "GET", entry["method"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rr.Header().Get(requestIDHeader), 36)
}

func TestInstrumentUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Instrument)
	r.HandleFunc("/api/v1/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/auth/{provider}", "200")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/auth/google", "200")))
}
