// Package ocr runs the image-extraction stage of a validation run. A stage
// walks the configured extractors in order; each extractor owns both faces of
// the credential, because machine-readable-zone templates differ by provider
// and mixing faces across providers would produce incoherent records.
package ocr

import (
	"context"
	"log/slog"
	"time"

	"credval/internal/validation/chain"
	"credval/internal/validation/models"
	"credval/internal/validation/providers"
)

// State tracks stage progress for logging and diagnostics.
type State string

const (
	StatePending    State = "PENDING"
	StateExtracting State = "EXTRACTING"
	StateExtracted  State = "EXTRACTED"
	StateFailed     State = "FAILED"
)

// Extractor performs a full two-sided extraction against one provider.
// Implementations record one ProviderAttempt per underlying call, so a
// provider with per-face endpoints reports two attempts.
type Extractor interface {
	ID() string
	Extract(ctx context.Context, front, back []byte) (*models.Extraction, []models.ProviderAttempt, error)
}

// Stage owns one run of the extraction state machine. Not safe for reuse;
// build one per validation run.
type Stage struct {
	extractors []Extractor
	state      State
	logger     *slog.Logger
	metrics    chain.Metrics
}

// Option configures a stage.
type Option func(*Stage)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) { s.logger = logger }
}

func WithMetrics(m chain.Metrics) Option {
	return func(s *Stage) { s.metrics = m }
}

// NewStage builds a stage over the configured extractor order.
func NewStage(extractors []Extractor, opts ...Option) *Stage {
	s := &Stage{extractors: extractors, state: StatePending}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the stage's current position in the state machine.
func (s *Stage) State() State {
	return s.state
}

// Run attempts extraction provider by provider. A failed face fails the
// whole provider; the next provider retries both faces from scratch. The
// returned FallbackResult carries every per-call attempt for diagnostics.
func (s *Stage) Run(ctx context.Context, front, back []byte) (*models.Extraction, models.FallbackResult, error) {
	s.state = StateExtracting
	var fallback models.FallbackResult

	if len(s.extractors) == 0 {
		s.state = StateFailed
		return nil, fallback, providers.NewError(models.ErrServiceUnavailable, "", models.CapabilityOCRCombined,
			"no ocr providers configured", providers.ErrNoProvidersConfigured)
	}

	var lastErr error
	for _, ex := range s.extractors {
		extraction, attempts, err := ex.Extract(ctx, front, back)
		fallback.Attempts = append(fallback.Attempts, attempts...)
		s.observe(attempts)

		if err == nil {
			s.state = StateExtracted
			fallback.Success = true
			if n := len(fallback.Attempts); n > 0 {
				fallback.Winner = &fallback.Attempts[n-1]
			}
			if s.logger != nil {
				s.logger.Info("ocr extraction complete", "provider", ex.ID(), "attempts", len(fallback.Attempts))
			}
			return extraction, fallback, nil
		}

		lastErr = err
		if s.logger != nil {
			s.logger.Warn("ocr extraction failed",
				"provider", ex.ID(),
				"error_code", string(providers.CodeOf(err)),
			)
		}
		if !providers.IsRetryable(err) || ctx.Err() != nil {
			break
		}
	}

	s.state = StateFailed
	return nil, fallback, lastErr
}

func (s *Stage) observe(attempts []models.ProviderAttempt) {
	if s.metrics == nil {
		return
	}
	for _, a := range attempts {
		s.metrics.ObserveAttempt(a.Capability, a.Provider, a.Outcome, a.Latency)
	}
}

// Attempt is a helper for extractors: it wraps one provider call in timing
// and produces the attempt record the stage aggregates.
func Attempt(capability models.Capability, provider string, latency time.Duration, err error) models.ProviderAttempt {
	attempt := models.ProviderAttempt{
		Capability: capability,
		Provider:   provider,
		Latency:    latency,
		Outcome:    models.OutcomeSuccess,
	}
	if err != nil {
		code := providers.CodeOf(err)
		attempt.ErrorCode = code
		attempt.Outcome = models.OutcomeFailure
		if code == models.ErrTimeout {
			attempt.Outcome = models.OutcomeTimeout
		}
	}
	return attempt
}
