// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; the validation service reads them without
// importing anything HTTP-shaped. Verdicts reuse the request ID set here so
// a caller-supplied correlation ID survives into the response and the logs.
//
// Usage in services (read values):
//
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithRequestID(ctx, requestID)
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	requestIDKey struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID = requestIDKey{}
	ContextKeyClientIP  = clientIPKey{}
	ContextKeyUserAgent = userAgentKey{}
)

// RequestID retrieves the correlation ID from the context. Returns the empty
// string if not set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// ClientIP retrieves the caller's IP address from the context.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// WithClientIP injects the caller's IP address into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// UserAgent retrieves the caller's user agent from the context.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// WithUserAgent injects the caller's user agent into the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ContextKeyUserAgent, ua)
}
