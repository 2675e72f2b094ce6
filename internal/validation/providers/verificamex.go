package providers

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"credval/internal/validation/models"
)

// VerificamexConfig carries the single base URL and bearer token.
type VerificamexConfig struct {
	BaseURL string
	Token   string
}

// Verificamex is the fallback provider: per-face OCR (front and back are
// separate endpoints, so the stage can run them concurrently), RENAPO
// scraping for CURP, nominal-roll scraping for INE, and SAT lookup for RFC.
type Verificamex struct {
	http   *resty.Client
	logger *slog.Logger
}

// VerificamexOCRField is one recognized value from the front face.
type VerificamexOCRField struct {
	Value string `json:"value"`
}

// VerificamexFrontResponse is the raw shape of /identity/v1/ocr/obverse.
type VerificamexFrontResponse struct {
	Error string `json:"error,omitempty"`
	Data  struct {
		ParseOCR []VerificamexOCRField `json:"parse_ocr"`
	} `json:"data"`
}

// VerificamexBackResponse is the raw shape of /identity/v1/ocr/reverse.
type VerificamexBackResponse struct {
	Error string `json:"error,omitempty"`
	Data  struct {
		MRZ struct {
			DocNumber     string `json:"doc_number"`
			FirstOptional string `json:"first_optional"`
		} `json:"mrz"`
	} `json:"data"`
}

// VerificamexCitizenRecord is one RENAPO registry entry.
type VerificamexCitizenRecord struct {
	CURP            string `json:"curp"`
	Nombres         string `json:"nombres"`
	PrimerApellido  string `json:"primerApellido"`
	SegundoApellido string `json:"segundoApellido"`
	Sexo            string `json:"sexo"`
	FechaNacimiento string `json:"fechaNacimiento"`
	ClaveEntidad    string `json:"claveEntidad"`
	Entidad         string `json:"entidad"`
	Nacionalidad    string `json:"nacionalidad"`
	StatusCurp      string `json:"statusCurp"`
}

// VerificamexCURPResponse is the raw shape of /v1/scraping/renapo.
type VerificamexCURPResponse struct {
	Error string `json:"error,omitempty"`
	Data  struct {
		Citizen struct {
			Registros []VerificamexCitizenRecord `json:"registros"`
		} `json:"citizen"`
	} `json:"data"`
}

// VerificamexINEResponse is the raw shape of /v1/scraping/ine.
type VerificamexINEResponse struct {
	Error string `json:"error,omitempty"`
	Data  struct {
		IneNominalList map[string]any `json:"ineNominalList"`
	} `json:"data"`
}

// VerificamexRFCResponse is the raw shape of /v1/miscellaneous/sat/rfc.
type VerificamexRFCResponse struct {
	Error string `json:"error,omitempty"`
	Data  struct {
		Valid bool   `json:"valid"`
		RFC   string `json:"rfc"`
	} `json:"data"`
}

// NewVerificamex builds the client with bearer-token auth.
func NewVerificamex(cfg VerificamexConfig, opts ...Option) *Verificamex {
	o := applyOptions(opts)
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(o.timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Verificamex{http: client, logger: o.logger}
}

// ID returns the chain-configurable provider identifier.
func (v *Verificamex) ID() string {
	return ProviderVerificamex
}

// OCRObverse extracts the demographic fields from the front face.
func (v *Verificamex) OCRObverse(ctx context.Context, front []byte) (*VerificamexFrontResponse, error) {
	const capability = models.CapabilityOCRFront
	if len(front) == 0 {
		return nil, NewError(models.ErrInvalidFormat, ProviderVerificamex, capability, "front image is required", nil)
	}

	var out VerificamexFrontResponse
	resp, err := v.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"ine_front": base64.StdEncoding.EncodeToString(front)}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/identity/v1/ocr/obverse")
	if err := v.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// OCRReverse extracts the machine-readable zone from the back face.
func (v *Verificamex) OCRReverse(ctx context.Context, back []byte) (*VerificamexBackResponse, error) {
	const capability = models.CapabilityOCRBack
	if len(back) == 0 {
		return nil, NewError(models.ErrInvalidFormat, ProviderVerificamex, capability, "back image is required", nil)
	}

	var out VerificamexBackResponse
	resp, err := v.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"ine_back": base64.StdEncoding.EncodeToString(back)}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/identity/v1/ocr/reverse")
	if err := v.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCURP queries the RENAPO registry.
func (v *Verificamex) ValidateCURP(ctx context.Context, curp string) (*VerificamexCURPResponse, error) {
	const capability = models.CapabilityCURP
	if len(curp) != 18 {
		return nil, NewError(models.ErrInvalidFormat, ProviderVerificamex, capability, "curp must be 18 characters", nil)
	}

	var out VerificamexCURPResponse
	resp, err := v.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"curp": curp}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1/scraping/renapo")
	if err := v.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateINE checks a credential against the nominal roll. Model "E" is the
// current credential layout; the MRZ document number doubles as the CIC.
func (v *Verificamex) ValidateINE(ctx context.Context, cic, citizenID string) (*VerificamexINEResponse, error) {
	const capability = models.CapabilityINE
	if cic == "" || citizenID == "" {
		return nil, NewError(models.ErrInvalidFormat, ProviderVerificamex, capability, "cic and citizen identifier are required", nil)
	}

	body := map[string]string{
		"cic":        cic,
		"id_citizen": citizenID,
		"model":      "E",
	}

	var out VerificamexINEResponse
	resp, err := v.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1/scraping/ine")
	if err := v.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateRFC checks a tax identifier against the SAT registry.
func (v *Verificamex) ValidateRFC(ctx context.Context, rfc string) (*VerificamexRFCResponse, error) {
	const capability = models.CapabilityRFC
	if len(rfc) < 10 || len(rfc) > 13 {
		return nil, NewError(models.ErrInvalidFormat, ProviderVerificamex, capability, "rfc must be 10 to 13 characters", nil)
	}

	var out VerificamexRFCResponse
	resp, err := v.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"rfc": rfc}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1/miscellaneous/sat/rfc")
	if err := v.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *Verificamex) checkResponse(capability models.Capability, resp *resty.Response, err error) error {
	if err != nil {
		cErr := classifyTransport(ProviderVerificamex, capability, err)
		logWarn(v.logger, "verificamex call failed", "capability", string(capability), "code", string(cErr.Code), "error", err)
		return cErr
	}
	if resp.IsError() {
		cErr := classifyStatus(ProviderVerificamex, capability, resp.StatusCode())
		logWarn(v.logger, "verificamex call rejected", "capability", string(capability), "status", resp.StatusCode())
		return cErr
	}
	if len(resp.Body()) == 0 {
		return NewError(models.ErrUnknown, ProviderVerificamex, capability, "empty response body", nil)
	}
	return nil
}
