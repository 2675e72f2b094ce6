// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// the validation service and encode; every status decision lives in the
// error mapper.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"credval/internal/validation"
	"credval/internal/validation/models"
	"credval/internal/validation/providers"
	"credval/pkg/domain"
	"credval/pkg/requestcontext"
)

// Service is the orchestrator surface the transport depends on.
type Service interface {
	ValidateCURP(ctx context.Context, raw string) *models.ValidationVerdict
	GenerateCURP(ctx context.Context, in providers.CalculateInput) (domain.CURP, models.FallbackResult, error)
	ValidateRFC(ctx context.Context, raw string) *models.ValidationVerdict
	ValidateCredentialComplete(ctx context.Context, req validation.CompleteRequest) *models.ValidationVerdict
}

// HealthChecker reports readiness of an attached dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler wires validation endpoints to the orchestrator.
type Handler struct {
	service Service
	health  HealthChecker
	logger  *slog.Logger
}

// New constructs the handler. health may be nil when no cache is configured.
func New(service Service, health HealthChecker, logger *slog.Logger) *Handler {
	return &Handler{service: service, health: health, logger: logger}
}

// Register mounts validation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/validate-curp", h.HandleValidateCURP)
	r.Post("/generate-curp", h.HandleGenerateCURP)
	r.Post("/validate-rfc", h.HandleValidateRFC)
	r.Post("/validate-credential-complete", h.HandleValidateCredentialComplete)
	r.Get("/healthz", h.HandleHealthz)
}

type validateCURPRequest struct {
	CURP string `json:"curp"`
}

// HandleValidateCURP handles POST /validate-curp.
func (h *Handler) HandleValidateCURP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[validateCURPRequest](w, r)
	if !ok {
		return
	}
	verdict := h.service.ValidateCURP(r.Context(), req.CURP)
	writeVerdict(w, verdict)
}

type generateCURPRequest struct {
	GivenNames    string `json:"given_names"`
	FirstSurname  string `json:"first_surname"`
	SecondSurname string `json:"second_surname"`
	Sex           string `json:"sex"`
	BirthYear     string `json:"birth_year"`
	BirthMonth    string `json:"birth_month"`
	BirthDay      string `json:"birth_day"`
	StateCode     string `json:"state_code"`
}

type generateCURPResponse struct {
	CURP     string                `json:"curp"`
	Fallback models.FallbackResult `json:"fallback"`
}

// HandleGenerateCURP handles POST /generate-curp.
func (h *Handler) HandleGenerateCURP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := decodeJSON[generateCURPRequest](w, r)
	if !ok {
		return
	}

	curp, fallback, err := h.service.GenerateCURP(r.Context(), providers.CalculateInput{
		GivenNames:    req.GivenNames,
		FirstSurname:  req.FirstSurname,
		SecondSurname: req.SecondSurname,
		SexKey:        req.Sex,
		BirthYear:     req.BirthYear,
		BirthMonth:    req.BirthMonth,
		BirthDay:      req.BirthDay,
		StateCode:     req.StateCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if h.logger != nil {
		h.logger.Info("curp generated",
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestcontext.RequestID(r.Context()),
			"client_ip", requestcontext.ClientIP(r.Context()),
			"user_agent", requestcontext.UserAgent(r.Context()),
		)
	}
	writeJSON(w, http.StatusOK, generateCURPResponse{CURP: string(curp), Fallback: fallback})
}

type validateRFCRequest struct {
	RFC string `json:"rfc"`
}

// HandleValidateRFC handles POST /validate-rfc.
func (h *Handler) HandleValidateRFC(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[validateRFCRequest](w, r)
	if !ok {
		return
	}
	verdict := h.service.ValidateRFC(r.Context(), req.RFC)
	writeVerdict(w, verdict)
}

type completeRequest struct {
	FrontImage []byte `json:"front_image"` // base64 in JSON
	BackImage  []byte `json:"back_image"`
	CURP       string `json:"curp"`
	CIC        string `json:"cic"`
	CitizenID  string `json:"citizen_id"`
}

// HandleValidateCredentialComplete handles POST /validate-credential-complete.
// The mode query parameter selects automatic (default, OCR from images) or
// manual (identifiers supplied directly).
func (h *Handler) HandleValidateCredentialComplete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[completeRequest](w, r)
	if !ok {
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = validation.ModeAutomatic
	}

	verdict := h.service.ValidateCredentialComplete(r.Context(), validation.CompleteRequest{
		Mode:       mode,
		FrontImage: req.FrontImage,
		BackImage:  req.BackImage,
		CURP:       req.CURP,
		CIC:        req.CIC,
		CitizenID:  req.CitizenID,
	})
	writeVerdict(w, verdict)
}

// HandleHealthz handles GET /healthz.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
