// Package models defines the entities owned by a single validation run:
// the canonical person record, the per-call attempt log, and the consolidated
// verdict. Nothing here persists beyond the run that created it.
package models

import (
	"time"

	"credval/pkg/domain"
)

// Capability names one kind of provider operation. Fallback chains are
// configured per capability.
type Capability string

const (
	CapabilityOCRFront     Capability = "ocr_front"
	CapabilityOCRBack      Capability = "ocr_back"
	CapabilityOCRCombined  Capability = "ocr_combined" // single-call two-sided extraction
	CapabilityCURP         Capability = "curp"
	CapabilityCURPGenerate Capability = "curp_generate"
	CapabilityINE          Capability = "ine"
	CapabilityRFC          Capability = "rfc"
)

// ErrorCode is the canonical failure taxonomy. Every provider outcome is
// normalized to one of these before it leaves the client/transformer boundary.
type ErrorCode string

const (
	// ErrInvalidFormat marks caller input that failed structural validation.
	// Authoritative: retrying another provider cannot fix it.
	ErrInvalidFormat ErrorCode = "INVALID_FORMAT"

	// ErrNotFound marks a record absent at one provider. Retryable across
	// the chain because registries lag each other.
	ErrNotFound ErrorCode = "NOT_FOUND"

	// ErrChecksumMismatch marks a provider-confirmed structural rejection.
	// Authoritative.
	ErrChecksumMismatch ErrorCode = "CHECKSUM_MISMATCH"

	// ErrServiceUnavailable marks a reachable but erroring provider. Retryable.
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// ErrTimeout marks no response within the per-call budget. Retryable.
	ErrTimeout ErrorCode = "TIMEOUT"

	// ErrNetwork marks a connection-level failure. Retryable.
	ErrNetwork ErrorCode = "NETWORK_ERROR"

	// ErrUnknown marks an unparseable provider response. Treated as retryable:
	// an unreadable answer is not evidence about the input itself.
	ErrUnknown ErrorCode = "UNKNOWN"
)

// Retryable reports whether a chain may advance past this failure.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrNotFound, ErrServiceUnavailable, ErrTimeout, ErrNetwork, ErrUnknown:
		return true
	default:
		return false
	}
}

// Outcome is the recorded result of one provider call.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeTimeout Outcome = "TIMEOUT"
)

// ProviderAttempt records exactly one call to one provider for one
// capability. Immutable once recorded; the run owns the log.
type ProviderAttempt struct {
	Capability Capability    `json:"capability"`
	Provider   string        `json:"provider"`
	Outcome    Outcome       `json:"outcome"`
	ErrorCode  ErrorCode     `json:"error_code,omitempty"`
	Latency    time.Duration `json:"latency"`
}

// FallbackResult is the outcome of walking one capability chain.
type FallbackResult struct {
	Success  bool              `json:"success"`
	Winner   *ProviderAttempt  `json:"winner,omitempty"`
	Attempts []ProviderAttempt `json:"attempts"`
}

// LastCode returns the error code of the final attempt, or ErrUnknown when
// the chain recorded nothing. Later providers are configured as more
// conclusive, so their refusal best explains a total failure.
func (r FallbackResult) LastCode() ErrorCode {
	if len(r.Attempts) == 0 {
		return ErrUnknown
	}
	last := r.Attempts[len(r.Attempts)-1]
	if last.ErrorCode == "" {
		return ErrUnknown
	}
	return last.ErrorCode
}

// AllTimedOut reports whether every attempt in the chain timed out.
func (r FallbackResult) AllTimedOut() bool {
	if len(r.Attempts) == 0 {
		return false
	}
	for _, a := range r.Attempts {
		if a.Outcome != OutcomeTimeout {
			return false
		}
	}
	return true
}

// PersonIdentity is the canonical person record. All fields come from one
// authoritative provider response; fragments from different providers are
// never merged because CURP and RFC must share a single source.
type PersonIdentity struct {
	GivenNames    string      `json:"given_names"`
	FirstSurname  string      `json:"first_surname"`
	SecondSurname string      `json:"second_surname,omitempty"`
	Sex           domain.Sex  `json:"sex"`
	BirthDate     string      `json:"birth_date"` // ISO 8601 date
	StateCode     string      `json:"state_code"`
	CURP          domain.CURP `json:"curp"`
	RFC           domain.RFC  `json:"rfc,omitempty"`
	Nationality   string      `json:"nationality,omitempty"`
}

// Extraction is the canonical OCR outcome. The front face yields the
// demographic fields; the back face yields the machine-readable-zone numbers
// needed for INE validation.
type Extraction struct {
	CURP          string `json:"curp"`
	GivenNames    string `json:"given_names"`
	FirstSurname  string `json:"first_surname"`
	SecondSurname string `json:"second_surname,omitempty"`
	CIC           string `json:"cic"`        // MRZ document number
	CitizenID     string `json:"citizen_id"` // MRZ optional field
}

// INEStatus is the normalized INE registry answer from the winning provider.
type INEStatus struct {
	Valid       bool   `json:"valid"`
	MessageKey  string `json:"message_key,omitempty"`
	Message     string `json:"message,omitempty"`
	UserMessage string `json:"user_message,omitempty"`
}

// Timing captures wall-clock metrics for one orchestration run.
type Timing struct {
	OCR        time.Duration `json:"ocr"`
	Validation time.Duration `json:"validation"`
	Total      time.Duration `json:"total"`
}

// VerdictError is the structured failure surfaced to callers: machine-readable
// kind, display-safe message, and the provider whose refusal explains it.
type VerdictError struct {
	Kind     ErrorCode `json:"kind"`
	Message  string    `json:"message"`
	Provider string    `json:"provider,omitempty"`
}

// ValidationVerdict is the consolidated top-level output of a run.
type ValidationVerdict struct {
	RequestID string                        `json:"request_id"`
	IsValid   bool                          `json:"is_valid"`
	Identity  *PersonIdentity               `json:"identity,omitempty"`
	INE       *INEStatus                    `json:"ine,omitempty"`
	Results   map[Capability]FallbackResult `json:"results"`
	Timing    Timing                        `json:"timing"`
	Error     *VerdictError                 `json:"error,omitempty"`
}
