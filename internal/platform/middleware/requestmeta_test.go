package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credval/pkg/requestcontext"
)

func TestRequestMeta_GeneratesRequestID(t *testing.T) {
	var captured string
	handler := RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = requestcontext.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, captured)
	_, err := uuid.Parse(captured)
	assert.NoError(t, err)
	assert.Equal(t, captured, rec.Header().Get(RequestIDHeader))
}

func TestRequestMeta_HonorsCallerRequestID(t *testing.T) {
	var captured string
	handler := RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = requestcontext.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "corr-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "corr-42", captured)
	assert.Equal(t, "corr-42", rec.Header().Get(RequestIDHeader))
}

func TestRequestMeta_ClientMetadata(t *testing.T) {
	var ip, ua string
	handler := RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	req.Header.Set("User-Agent", "credval-test/1.0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", ip)
	assert.Equal(t, "credval-test/1.0", ua)
}

func TestRequestMeta_ForwardedForWins(t *testing.T) {
	var ip string
	handler := RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.9", ip)
}
