// Package middleware holds the HTTP middleware shared by the router.
package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"credval/pkg/requestcontext"
)

// RequestIDHeader is the header a caller may supply to correlate its own
// request ID with the verdict. Absent or blank, a fresh UUID is assigned.
const RequestIDHeader = "X-Request-Id"

// RequestMeta stamps request-scoped metadata into the context: the
// correlation ID, the client IP, and the user agent. It also echoes the
// request ID on the response so callers can correlate even error replies.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithClientIP(ctx, clientIP(r))
		ctx = requestcontext.WithUserAgent(ctx, r.UserAgent())

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP prefers the leftmost X-Forwarded-For entry, falling back to the
// socket peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
