// Package providers holds the outbound HTTP clients for the third-party
// identity services and the normalized error type they fail with. Each client
// validates input shape before the network call, enforces a per-call timeout,
// and returns the provider's raw response shape; mapping raw shapes to the
// canonical person record is the transform package's job.
package providers

import (
	"log/slog"
	"time"
)

// Provider identifiers as configured in fallback chains.
const (
	ProviderNubarium    = "nubarium"
	ProviderValidaCurp  = "validacurp"
	ProviderVerificamex = "verificamex"
)

// DefaultTimeout bounds every provider call unless overridden per client.
const DefaultTimeout = 45 * time.Second

type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a provider client.
type Option func(*options)

// WithLogger attaches a structured logger. Clients are nil-safe without one.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTimeout overrides the per-call timeout budget.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func applyOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func logDebug(l *slog.Logger, msg string, args ...any) {
	if l != nil {
		l.Debug(msg, args...)
	}
}

func logWarn(l *slog.Logger, msg string, args ...any) {
	if l != nil {
		l.Warn(msg, args...)
	}
}
