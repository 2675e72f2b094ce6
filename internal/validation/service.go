// Package validation orchestrates the capability chains into consolidated
// verdicts. One Service handles all four public operations; every run gets a
// fresh request ID, its own attempt log, and wall-clock timing for each stage.
package validation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"credval/internal/validation/cache"
	"credval/internal/validation/chain"
	"credval/internal/validation/errmap"
	"credval/internal/validation/models"
	"credval/internal/validation/ocr"
	"credval/internal/validation/providers"
	"credval/pkg/domain"
	"credval/pkg/requestcontext"
)

// Metrics is the full observation surface the orchestrator reports through.
type Metrics interface {
	chain.Metrics
	ObserveVerdict(valid bool)
	ObserveStage(stage string, d time.Duration)
}

// Service runs validation flows over the configured provider chains.
type Service struct {
	nubarium    *providers.Nubarium
	verificamex *providers.Verificamex
	validacurp  *providers.ValidaCurp

	verdicts *cache.VerdictCache
	breakers *chain.BreakerSet
	logger   *slog.Logger
	metrics  Metrics

	curpOrder []string
	ineOrder  []string
	ocrOrder  []string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches the metrics sink.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithVerdictCache attaches the confirmed-identity cache.
func WithVerdictCache(c *cache.VerdictCache) ServiceOption {
	return func(s *Service) { s.verdicts = c }
}

// WithBreakers attaches per-provider circuit breakers consulted by every
// capability chain. Without one, unhealthy providers are retried on every
// request.
func WithBreakers(b *chain.BreakerSet) ServiceOption {
	return func(s *Service) { s.breakers = b }
}

// WithChainOrders overrides the default provider order per capability. Nil
// slices keep the default for that capability.
func WithChainOrders(curp, ine, ocrOrder []string) ServiceOption {
	return func(s *Service) {
		if curp != nil {
			s.curpOrder = curp
		}
		if ine != nil {
			s.ineOrder = ine
		}
		if ocrOrder != nil {
			s.ocrOrder = ocrOrder
		}
	}
}

// NewService wires the provider clients into an orchestrator. Any client may
// be nil; chains simply skip providers that are not configured.
func NewService(nubarium *providers.Nubarium, verificamex *providers.Verificamex, validacurp *providers.ValidaCurp, opts ...ServiceOption) *Service {
	s := &Service{
		nubarium:    nubarium,
		verificamex: verificamex,
		validacurp:  validacurp,
		curpOrder:   defaultCURPChain,
		ineOrder:    defaultINEChain,
		ocrOrder:    defaultOCRChain,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) chainMetrics() chain.Metrics {
	if s.metrics == nil {
		return nil
	}
	return s.metrics
}

func newVerdict(ctx context.Context) *models.ValidationVerdict {
	requestID := requestcontext.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &models.ValidationVerdict{
		RequestID: requestID,
		Results:   make(map[models.Capability]models.FallbackResult),
	}
}

func (s *Service) finish(verdict *models.ValidationVerdict, start time.Time) *models.ValidationVerdict {
	verdict.Timing.Total = time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveVerdict(verdict.IsValid)
		if verdict.Timing.OCR > 0 {
			s.metrics.ObserveStage("ocr", verdict.Timing.OCR)
		}
		if verdict.Timing.Validation > 0 {
			s.metrics.ObserveStage("validation", verdict.Timing.Validation)
		}
	}
	if s.logger != nil {
		s.logger.Info("verdict issued",
			"request_id", verdict.RequestID,
			"is_valid", verdict.IsValid,
			"total_ms", verdict.Timing.Total.Milliseconds(),
		)
	}
	return verdict
}

func invalidFormat(verdict *models.ValidationVerdict, capability models.Capability) {
	verdict.Error = &models.VerdictError{
		Kind:    models.ErrInvalidFormat,
		Message: errmap.Message(models.ErrInvalidFormat, capability),
	}
}

// ValidateCURP checks one CURP against the registry chain. A structurally
// invalid code is rejected before any network call.
func (s *Service) ValidateCURP(ctx context.Context, raw string) *models.ValidationVerdict {
	start := time.Now()
	verdict := newVerdict(ctx)

	curp, err := domain.ParseCURP(raw)
	if err != nil {
		invalidFormat(verdict, models.CapabilityCURP)
		return s.finish(verdict, start)
	}

	if identity, provider, hit := s.verdicts.Find(ctx, curp); hit {
		verdict.IsValid = true
		verdict.Identity = identity
		verdict.Results[models.CapabilityCURP] = models.FallbackResult{Success: true}
		if s.logger != nil {
			s.logger.Info("curp served from cache", "request_id", verdict.RequestID, "provider", provider)
		}
		return s.finish(verdict, start)
	}

	vStart := time.Now()
	result := chain.Execute(ctx, models.CapabilityCURP, s.curpSteps(string(curp)), s.logger, s.chainMetrics(), s.breakers)
	verdict.Timing.Validation = time.Since(vStart)
	verdict.Results[models.CapabilityCURP] = result.Fallback

	if result.Fallback.Success {
		verdict.IsValid = true
		verdict.Identity = result.Value
		s.verdicts.Save(ctx, result.Value, result.Fallback.Winner.Provider)
	} else {
		verdict.Error = errmap.FromFallback(models.CapabilityCURP, result.Fallback)
	}
	return s.finish(verdict, start)
}

// GenerateCURP derives a CURP from person data and re-validates the check
// digit locally before trusting the vendor's answer.
func (s *Service) GenerateCURP(ctx context.Context, in providers.CalculateInput) (domain.CURP, models.FallbackResult, error) {
	if in.GivenNames == "" || in.FirstSurname == "" ||
		in.BirthYear == "" || in.BirthMonth == "" || in.BirthDay == "" {
		return "", models.FallbackResult{}, providers.NewError(models.ErrInvalidFormat, "", models.CapabilityCURPGenerate,
			"given names, first surname and full birth date are required", nil)
	}
	if _, err := domain.ParseSex(in.SexKey); err != nil {
		return "", models.FallbackResult{}, providers.NewError(models.ErrInvalidFormat, "", models.CapabilityCURPGenerate,
			"sex must be H or M", nil)
	}
	if !domain.ValidStateCode(in.StateCode) {
		return "", models.FallbackResult{}, providers.NewError(models.ErrInvalidFormat, "", models.CapabilityCURPGenerate,
			"unknown state code", nil)
	}

	result := chain.Execute(ctx, models.CapabilityCURPGenerate, s.generateSteps(in), s.logger, s.chainMetrics(), s.breakers)
	if !result.Fallback.Success {
		return "", result.Fallback, result.Err
	}

	curp, err := domain.ParseCURP(result.Value)
	if err != nil {
		return "", result.Fallback, providers.NewError(models.ErrUnknown, result.Fallback.Winner.Provider, models.CapabilityCURPGenerate,
			"derived curp failed local verification", err)
	}
	return curp, result.Fallback, nil
}

// ValidateRFC checks one RFC against the tax-authority chain.
func (s *Service) ValidateRFC(ctx context.Context, raw string) *models.ValidationVerdict {
	start := time.Now()
	verdict := newVerdict(ctx)

	rfc, err := domain.ParseRFC(raw)
	if err != nil {
		invalidFormat(verdict, models.CapabilityRFC)
		return s.finish(verdict, start)
	}

	vStart := time.Now()
	result := chain.Execute(ctx, models.CapabilityRFC, s.rfcSteps(string(rfc)), s.logger, s.chainMetrics(), s.breakers)
	verdict.Timing.Validation = time.Since(vStart)
	verdict.Results[models.CapabilityRFC] = result.Fallback

	if result.Fallback.Success {
		verdict.IsValid = result.Value
	} else {
		verdict.Error = errmap.FromFallback(models.CapabilityRFC, result.Fallback)
	}
	return s.finish(verdict, start)
}

// Mode selects how ValidateCredentialComplete obtains the identifiers.
const (
	ModeAutomatic = "automatic"
	ModeManual    = "manual"
)

// CompleteRequest is the input to the full credential flow. Automatic mode
// carries the two card faces; manual mode carries the identifiers directly.
type CompleteRequest struct {
	Mode       string
	FrontImage []byte
	BackImage  []byte
	CURP       string
	CIC        string
	CitizenID  string
}

// ValidateCredentialComplete runs the full flow: OCR (automatic mode), then
// the CURP and INE chains in parallel, then consolidation. The verdict is
// valid only when both chains succeed; identity fields come from the single
// winning CURP provider.
func (s *Service) ValidateCredentialComplete(ctx context.Context, req CompleteRequest) *models.ValidationVerdict {
	start := time.Now()
	verdict := newVerdict(ctx)

	curpRaw, cic, citizenID := req.CURP, req.CIC, req.CitizenID

	if req.Mode != ModeManual {
		if len(req.FrontImage) == 0 || len(req.BackImage) == 0 {
			invalidFormat(verdict, models.CapabilityOCRCombined)
			return s.finish(verdict, start)
		}

		ocrStart := time.Now()
		stage := ocr.NewStage(s.extractors(), ocr.WithLogger(s.logger), ocr.WithMetrics(s.chainMetrics()))
		extraction, fallback, err := stage.Run(ctx, req.FrontImage, req.BackImage)
		verdict.Timing.OCR = time.Since(ocrStart)
		verdict.Results[models.CapabilityOCRCombined] = fallback
		if err != nil {
			verdict.Error = errmap.FromFallback(models.CapabilityOCRCombined, fallback)
			return s.finish(verdict, start)
		}
		curpRaw, cic, citizenID = extraction.CURP, extraction.CIC, extraction.CitizenID
	}

	curp, err := domain.ParseCURP(curpRaw)
	if err != nil {
		invalidFormat(verdict, models.CapabilityCURP)
		return s.finish(verdict, start)
	}
	if cic == "" || citizenID == "" {
		invalidFormat(verdict, models.CapabilityINE)
		return s.finish(verdict, start)
	}

	vStart := time.Now()
	var (
		curpResult chain.Result[*models.PersonIdentity]
		ineResult  chain.Result[*models.INEStatus]
	)

	// Plain group: the two chains are independent and both must run to
	// completion so the verdict can report each registry's answer.
	var g errgroup.Group
	g.Go(func() error {
		if identity, provider, hit := s.verdicts.Find(ctx, curp); hit {
			curpResult.Value = identity
			curpResult.Fallback.Success = true
			if s.logger != nil {
				s.logger.Info("curp served from cache", "request_id", verdict.RequestID, "provider", provider)
			}
			return nil
		}
		curpResult = chain.Execute(ctx, models.CapabilityCURP, s.curpSteps(string(curp)), s.logger, s.chainMetrics(), s.breakers)
		return nil
	})
	g.Go(func() error {
		ineResult = chain.Execute(ctx, models.CapabilityINE, s.ineSteps(cic, citizenID), s.logger, s.chainMetrics(), s.breakers)
		return nil
	})
	g.Wait()
	verdict.Timing.Validation = time.Since(vStart)

	verdict.Results[models.CapabilityCURP] = curpResult.Fallback
	verdict.Results[models.CapabilityINE] = ineResult.Fallback

	if ctx.Err() != nil {
		verdict.Error = &models.VerdictError{
			Kind:    models.ErrTimeout,
			Message: errmap.Message(models.ErrTimeout, models.CapabilityCURP),
		}
		return s.finish(verdict, start)
	}

	verdict.IsValid = curpResult.Fallback.Success && ineResult.Fallback.Success
	if curpResult.Fallback.Success {
		verdict.Identity = curpResult.Value
		if w := curpResult.Fallback.Winner; w != nil {
			s.verdicts.Save(ctx, curpResult.Value, w.Provider)
		}
	}
	if ineResult.Fallback.Success {
		verdict.INE = ineResult.Value
	}

	if !verdict.IsValid {
		failed, capability := curpResult.Fallback, models.CapabilityCURP
		if curpResult.Fallback.Success {
			failed, capability = ineResult.Fallback, models.CapabilityINE
		}
		verdict.Error = errmap.FromFallback(capability, failed)
	}
	return s.finish(verdict, start)
}
