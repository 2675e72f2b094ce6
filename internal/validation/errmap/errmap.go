// Package errmap translates canonical error codes into user-facing messages
// and HTTP-style status classes. Messages are display-safe Spanish copy; the
// machine-readable detail stays on the verdict for client-side branching.
package errmap

import (
	"credval/internal/validation/models"
	dErrors "credval/pkg/errors"
)

// statusByCode maps the canonical taxonomy to the service error classes the
// transport layer turns into HTTP statuses.
var statusByCode = map[models.ErrorCode]dErrors.Code{
	models.ErrInvalidFormat:      dErrors.CodeBadRequest,
	models.ErrNotFound:           dErrors.CodeUnprocessable,
	models.ErrChecksumMismatch:   dErrors.CodeUnprocessable,
	models.ErrServiceUnavailable: dErrors.CodeUnavailable,
	models.ErrTimeout:            dErrors.CodeUnavailable,
	models.ErrNetwork:            dErrors.CodeUnavailable,
	models.ErrUnknown:            dErrors.CodeInternal,
}

// StatusClass returns the service error class for a canonical code.
func StatusClass(code models.ErrorCode) dErrors.Code {
	if c, ok := statusByCode[code]; ok {
		return c
	}
	return dErrors.CodeInternal
}

type messageKey struct {
	code       models.ErrorCode
	capability models.Capability
}

// capabilityMessages carries the per-capability copy; generic fallbacks live
// in genericMessages.
var capabilityMessages = map[messageKey]string{
	{models.ErrInvalidFormat, models.CapabilityCURP}:    "El CURP tiene un formato inválido. Debe tener exactamente 18 caracteres alfanuméricos.",
	{models.ErrChecksumMismatch, models.CapabilityCURP}: "El CURP proporcionado no es válido. Por favor, verifica que esté correctamente escrito.",
	{models.ErrNotFound, models.CapabilityCURP}:         "No se encontró registro para el CURP proporcionado.",
	{models.ErrChecksumMismatch, models.CapabilityINE}:  "La credencial no es válida según el registro electoral.",
	{models.ErrNotFound, models.CapabilityINE}:          "No se encontró la credencial en el registro electoral.",
	{models.ErrInvalidFormat, models.CapabilityRFC}:     "El RFC tiene un formato inválido. Debe tener entre 10 y 13 caracteres.",
	{models.ErrChecksumMismatch, models.CapabilityRFC}:  "El RFC proporcionado no es válido ante el SAT.",
}

var genericMessages = map[models.ErrorCode]string{
	models.ErrInvalidFormat:      "Los datos proporcionados tienen un formato inválido.",
	models.ErrNotFound:           "No se encontró el registro solicitado.",
	models.ErrChecksumMismatch:   "Los datos proporcionados no son válidos.",
	models.ErrServiceUnavailable: "El servicio de validación está temporalmente sobrecargado. Por favor, intenta nuevamente en unos minutos.",
	models.ErrTimeout:            "El servicio de validación no respondió a tiempo. Por favor, intenta nuevamente.",
	models.ErrNetwork:            "No fue posible contactar al servicio de validación. Por favor, intenta nuevamente.",
	models.ErrUnknown:            "Error de validación desconocido. Por favor, contacta al soporte.",
}

// Message returns the display-safe copy for a code within a capability.
func Message(code models.ErrorCode, capability models.Capability) string {
	if msg, ok := capabilityMessages[messageKey{code, capability}]; ok {
		return msg
	}
	if msg, ok := genericMessages[code]; ok {
		return msg
	}
	return genericMessages[models.ErrUnknown]
}

// FromFallback builds the structured verdict error for an exhausted chain.
// The last attempt's code explains the failure, since later providers in
// the configured order are the more conclusive ones. Two exceptions: an
// all-timeout chain, and an empty attempt log, both of which collapse to
// SERVICE_UNAVAILABLE.
func FromFallback(capability models.Capability, fallback models.FallbackResult) *models.VerdictError {
	if fallback.Success {
		return nil
	}

	// An empty attempt log means no provider could even be tried: none
	// configured, or every circuit open. That is an availability problem,
	// not an internal error.
	if len(fallback.Attempts) == 0 {
		return &models.VerdictError{
			Kind:    models.ErrServiceUnavailable,
			Message: Message(models.ErrServiceUnavailable, capability),
		}
	}

	code := fallback.LastCode()
	provider := fallback.Attempts[len(fallback.Attempts)-1].Provider
	if fallback.AllTimedOut() {
		code = models.ErrServiceUnavailable
	}

	return &models.VerdictError{
		Kind:     code,
		Message:  Message(code, capability),
		Provider: provider,
	}
}
