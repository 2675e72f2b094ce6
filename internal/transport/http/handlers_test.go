package httptransport

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credval/internal/validation"
	"credval/internal/validation/models"
	"credval/internal/validation/providers"
	"credval/pkg/domain"
	"credval/pkg/testutil"
)

// fakeService scripts the orchestrator responses and records inputs.
type fakeService struct {
	verdict     *models.ValidationVerdict
	generated   domain.CURP
	generateErr error

	lastCURP     string
	lastRFC      string
	lastComplete validation.CompleteRequest
}

func (f *fakeService) ValidateCURP(ctx context.Context, raw string) *models.ValidationVerdict {
	f.lastCURP = raw
	return f.verdict
}

func (f *fakeService) GenerateCURP(ctx context.Context, in providers.CalculateInput) (domain.CURP, models.FallbackResult, error) {
	return f.generated, models.FallbackResult{Success: f.generateErr == nil}, f.generateErr
}

func (f *fakeService) ValidateRFC(ctx context.Context, raw string) *models.ValidationVerdict {
	f.lastRFC = raw
	return f.verdict
}

func (f *fakeService) ValidateCredentialComplete(ctx context.Context, req validation.CompleteRequest) *models.ValidationVerdict {
	f.lastComplete = req
	return f.verdict
}

type fakeHealth struct{ err error }

func (f fakeHealth) Health(ctx context.Context) error { return f.err }

func validVerdict() *models.ValidationVerdict {
	return &models.ValidationVerdict{
		RequestID: "req-1",
		IsValid:   true,
		Results:   map[models.Capability]models.FallbackResult{},
	}
}

func TestHandleValidateCURP(t *testing.T) {
	t.Run("success returns 200 with the verdict", func(t *testing.T) {
		svc := &fakeService{verdict: validVerdict()}
		router := NewRouter(New(svc, nil, nil))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/validate-curp", map[string]string{"curp": "GOAP780710HVZNRD06"})
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "GOAP780710HVZNRD06", svc.lastCURP)

		verdict := testutil.DecodeResponse[models.ValidationVerdict](t, rr)
		assert.True(t, verdict.IsValid)
		assert.Equal(t, "req-1", verdict.RequestID)
	})

	t.Run("verdict error drives the status class", func(t *testing.T) {
		cases := []struct {
			kind models.ErrorCode
			want int
		}{
			{models.ErrInvalidFormat, http.StatusBadRequest},
			{models.ErrNotFound, http.StatusUnprocessableEntity},
			{models.ErrChecksumMismatch, http.StatusUnprocessableEntity},
			{models.ErrServiceUnavailable, http.StatusServiceUnavailable},
			{models.ErrTimeout, http.StatusServiceUnavailable},
			{models.ErrUnknown, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			verdict := validVerdict()
			verdict.IsValid = false
			verdict.Error = &models.VerdictError{Kind: tc.kind, Message: "m"}
			router := NewRouter(New(&fakeService{verdict: verdict}, nil, nil))

			req := testutil.NewJSONRequest(t, http.MethodPost, "/validate-curp", map[string]string{"curp": "x"})
			rr := testutil.DoRequest(router, req)

			assert.Equal(t, tc.want, rr.Code, string(tc.kind))
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router := NewRouter(New(&fakeService{}, nil, nil))

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/validate-curp", "{not json")
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleGenerateCURP(t *testing.T) {
	t.Run("returns the derived code", func(t *testing.T) {
		svc := &fakeService{generated: domain.CURP("GOAP780710HVZNRD06")}
		router := NewRouter(New(svc, nil, nil))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/generate-curp", map[string]string{
			"given_names":   "PEDRO",
			"first_surname": "GOMEZ",
			"sex":           "H",
			"birth_year":    "1978",
			"birth_month":   "07",
			"birth_day":     "10",
			"state_code":    "VZ",
		})
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := testutil.DecodeResponse[generateCURPResponse](t, rr)
		assert.Equal(t, "GOAP780710HVZNRD06", resp.CURP)
	})

	t.Run("provider failure maps through the taxonomy", func(t *testing.T) {
		svc := &fakeService{generateErr: providers.NewError(models.ErrInvalidFormat, "", models.CapabilityCURPGenerate, "missing fields", nil)}
		router := NewRouter(New(svc, nil, nil))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/generate-curp", map[string]string{})
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		envelope := testutil.DecodeResponse[map[string]any](t, rr)
		assert.Equal(t, string(models.ErrInvalidFormat), envelope["error"])
	})
}

func TestHandleValidateCredentialComplete(t *testing.T) {
	t.Run("defaults to automatic mode and decodes base64 faces", func(t *testing.T) {
		svc := &fakeService{verdict: validVerdict()}
		router := NewRouter(New(svc, nil, nil))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/validate-credential-complete", map[string]any{
			"front_image": []byte("front-bytes"),
			"back_image":  []byte("back-bytes"),
		})
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, validation.ModeAutomatic, svc.lastComplete.Mode)
		assert.Equal(t, []byte("front-bytes"), svc.lastComplete.FrontImage)
		assert.Equal(t, []byte("back-bytes"), svc.lastComplete.BackImage)
	})

	t.Run("manual mode passes identifiers through", func(t *testing.T) {
		svc := &fakeService{verdict: validVerdict()}
		router := NewRouter(New(svc, nil, nil))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/validate-credential-complete?mode=manual", map[string]string{
			"curp":       "GOAP780710HVZNRD06",
			"cic":        "123",
			"citizen_id": "456",
		})
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, validation.ModeManual, svc.lastComplete.Mode)
		assert.Equal(t, "123", svc.lastComplete.CIC)
	})
}

func TestHandleHealthz(t *testing.T) {
	t.Run("ok without dependencies", func(t *testing.T) {
		router := NewRouter(New(&fakeService{}, nil, nil))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("degraded when the cache is down", func(t *testing.T) {
		router := NewRouter(New(&fakeService{}, fakeHealth{err: assert.AnError}, nil))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	router := NewRouter(New(&fakeService{}, nil, nil))
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/validate-curp"))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
