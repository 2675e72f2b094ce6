// Package chain implements the generic fallback walker shared by every
// validation capability. Providers are attempted strictly in configured
// order; a later provider is only billed once an earlier one definitively
// fails. The walker advances past transient failures and stops cold on
// authoritative rejections.
package chain

import (
	"context"
	"log/slog"
	"time"

	"credval/internal/validation/models"
	"credval/internal/validation/providers"
)

// Step is one provider operation in a capability chain.
type Step[T any] struct {
	// Provider is the identifier recorded on the attempt log.
	Provider string

	// Run performs the call. Failures must be *providers.Error so the
	// walker can classify them; anything else is treated as UNKNOWN.
	Run func(ctx context.Context) (T, error)
}

// Result carries the winning value together with the full attempt log.
type Result[T any] struct {
	Value    T
	Fallback models.FallbackResult

	// Err is the classified error of the decisive failure: the
	// authoritative rejection that stopped the chain, or the last
	// failure once the chain exhausted. Nil on success.
	Err error
}

// Metrics is the observation hook the walker reports attempts through.
type Metrics interface {
	ObserveAttempt(capability models.Capability, provider string, outcome models.Outcome, latency time.Duration)
	ObserveChainDepth(capability models.Capability, depth int)
}

// Execute walks the chain for one capability. Semantics:
//   - first SUCCESS wins and short-circuits;
//   - retryable failures (NOT_FOUND, SERVICE_UNAVAILABLE, TIMEOUT,
//     NETWORK_ERROR, UNKNOWN) advance to the next provider;
//   - authoritative failures (INVALID_FORMAT, CHECKSUM_MISMATCH) stop the
//     chain immediately, since retrying cannot fix the input;
//   - a cancelled parent context stops the chain after the in-flight call.
//
// Providers whose circuit is open (see BreakerSet) are skipped without an
// attempt record; no call was made, so there is nothing to log against the
// caller. A nil breakers set disables the circuit check.
//
// Every provider call is recorded in the attempt log, including failures.
// The log is owned by this run; nothing else appends to it.
func Execute[T any](ctx context.Context, capability models.Capability, steps []Step[T], logger *slog.Logger, metrics Metrics, breakers *BreakerSet) Result[T] {
	var result Result[T]
	if len(steps) == 0 {
		result.Err = providers.NewError(models.ErrServiceUnavailable, "", capability,
			"no providers configured", providers.ErrNoProvidersConfigured)
		return result
	}

	result.Fallback.Attempts = make([]models.ProviderAttempt, 0, len(steps))

	for _, step := range steps {
		if !breakers.Allow(step.Provider) {
			if logger != nil {
				logger.Warn("provider skipped, circuit open",
					"capability", string(capability),
					"provider", step.Provider,
				)
			}
			continue
		}

		start := time.Now()
		value, err := step.Run(ctx)
		latency := time.Since(start)

		attempt := models.ProviderAttempt{
			Capability: capability,
			Provider:   step.Provider,
			Latency:    latency,
		}

		if err == nil {
			breakers.Record(step.Provider, "", false)
			attempt.Outcome = models.OutcomeSuccess
			result.Fallback.Attempts = append(result.Fallback.Attempts, attempt)
			result.Fallback.Winner = &result.Fallback.Attempts[len(result.Fallback.Attempts)-1]
			result.Fallback.Success = true
			result.Value = value

			observe(metrics, capability, attempt, len(result.Fallback.Attempts))
			logAttempt(logger, attempt, "provider succeeded")
			return result
		}

		code := providers.CodeOf(err)
		breakers.Record(step.Provider, code, true)
		attempt.ErrorCode = code
		attempt.Outcome = models.OutcomeFailure
		if code == models.ErrTimeout {
			attempt.Outcome = models.OutcomeTimeout
		}
		result.Fallback.Attempts = append(result.Fallback.Attempts, attempt)
		result.Err = err

		observe(metrics, capability, attempt, len(result.Fallback.Attempts))
		logAttempt(logger, attempt, "provider failed")

		if !code.Retryable() {
			// Authoritative rejection: a different provider cannot fix
			// caller-supplied input.
			return result
		}
		if ctx.Err() != nil {
			// The enclosing request is gone; advancing would only bill
			// providers for answers nobody will read.
			return result
		}
	}

	if len(result.Fallback.Attempts) == 0 {
		// Every configured provider was circuit-open.
		result.Err = providers.NewError(models.ErrServiceUnavailable, "", capability,
			"all providers circuit-open", providers.ErrChainExhausted)
	}
	return result
}

func observe(m Metrics, capability models.Capability, attempt models.ProviderAttempt, depth int) {
	if m == nil {
		return
	}
	m.ObserveAttempt(capability, attempt.Provider, attempt.Outcome, attempt.Latency)
	if attempt.Outcome == models.OutcomeSuccess {
		m.ObserveChainDepth(capability, depth)
	}
}

func logAttempt(logger *slog.Logger, attempt models.ProviderAttempt, msg string) {
	if logger == nil {
		return
	}
	logger.Debug(msg,
		"capability", string(attempt.Capability),
		"provider", attempt.Provider,
		"outcome", string(attempt.Outcome),
		"error_code", string(attempt.ErrorCode),
		"latency", attempt.Latency,
	)
}
