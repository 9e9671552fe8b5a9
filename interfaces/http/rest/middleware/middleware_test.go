package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestUsername_MissingHeaderBody(t *testing.T) {
	handler := Username(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without the user header")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rating", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "X-User-Name header is required"}`, rec.Body.String())
}

func TestUsername_StoresUsernameInContext(t *testing.T) {
	var seen string
	handler := Username(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UsernameFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rating", nil)
	req.Header.Set(UserHeader, "alice")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "alice", seen)
}

func TestCircuitBreaker_RejectionBody(t *testing.T) {
	config := CircuitBreakerConfig{
		Name:             "gateway",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	handler := CircuitBreaker(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/rating", nil))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rating", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"message": "service temporarily unavailable"}`, rec.Body.String())
}
