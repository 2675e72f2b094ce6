package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"credval/internal/validation/errmap"
	"credval/internal/validation/models"
	"credval/internal/validation/providers"
	dErrors "credval/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorEnvelope struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Provider  string `json:"provider,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError centralizes error translation so status decisions never leak
// into handlers. Provider errors carry the canonical taxonomy; anything else
// falls through the service error codes.
func writeError(w http.ResponseWriter, err error) {
	var pErr *providers.Error
	if errors.As(err, &pErr) {
		code := providers.CodeOf(err)
		writeJSON(w, dErrors.ToHTTPStatus(errmap.StatusClass(code)), errorEnvelope{
			Error:    string(code),
			Message:  errmap.Message(code, pErr.Capability),
			Provider: pErr.Provider,
		})
		return
	}
	code := dErrors.CodeOf(err)
	writeJSON(w, dErrors.ToHTTPStatus(code), errorEnvelope{Error: string(code)})
}

// writeVerdict returns the consolidated verdict with the status class of its
// structured error, or 200 on success.
func writeVerdict(w http.ResponseWriter, verdict *models.ValidationVerdict) {
	status := http.StatusOK
	if verdict.Error != nil {
		status = dErrors.ToHTTPStatus(errmap.StatusClass(verdict.Error.Kind))
	}
	writeJSON(w, status, verdict)
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed request body"))
		var zero T
		return zero, false
	}
	return req, true
}
