package providers

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"credval/internal/validation/models"
)

// NubariumConfig carries the credentials and the three service base URLs.
// The vendor splits OCR, INE and CURP across separate hosts.
type NubariumConfig struct {
	Username string
	Password string
	OCRURL   string
	INEURL   string
	CURPURL  string
}

// Nubarium is the primary provider: single-call two-sided OCR, RENAPO CURP
// validation with RFC generation, and INE roll validation.
type Nubarium struct {
	ocr    *resty.Client
	ine    *resty.Client
	curp   *resty.Client
	logger *slog.Logger
}

// NubariumOCRResponse is the raw shape of /ocr/v1/obtener_datos_id.
type NubariumOCRResponse struct {
	Estatus                string `json:"estatus"`
	Mensaje                string `json:"mensaje,omitempty"`
	CURP                   string `json:"curp"`
	Nombre                 string `json:"nombre"`
	ApellidoPaterno        string `json:"apellidoPaterno"`
	ApellidoMaterno        string `json:"apellidoMaterno"`
	CIC                    string `json:"cic"`
	IdentificadorCiudadano string `json:"identificadorCiudadano"`
}

// NubariumCURPResponse is the raw shape of /renapo/v3/valida_curp.
type NubariumCURPResponse struct {
	Estatus          string `json:"estatus"`
	CodigoMensaje    string `json:"codigoMensaje,omitempty"`
	Mensaje          string `json:"mensaje,omitempty"`
	CURP             string `json:"curp"`
	Nombre           string `json:"nombre"`
	ApellidoPaterno  string `json:"apellidoPaterno"`
	ApellidoMaterno  string `json:"apellidoMaterno"`
	Sexo             string `json:"sexo"`
	FechaNacimiento  string `json:"fechaNacimiento"`
	EstadoNacimiento string `json:"estadoNacimiento"`
	PaisNacimiento   string `json:"paisNacimiento"`
	EstatusCurp      string `json:"estatusCurp"`
	RFCGenerado      string `json:"rfcGenerado"`
	DocProbatorio    string `json:"docProbatorio"`

	DatosDocProbatorio struct {
		AnioReg                string `json:"anioReg"`
		ClaveEntidadRegistro   string `json:"claveEntidadRegistro"`
		ClaveMunicipioRegistro string `json:"claveMunicipioRegistro"`
		EntidadRegistro        string `json:"entidadRegistro"`
		MunicipioRegistro      string `json:"municipioRegistro"`
		NumActa                string `json:"numActa"`
	} `json:"datosDocProbatorio"`
}

// NubariumINEResponse is the raw shape of /ine/v2/valida_ine.
type NubariumINEResponse struct {
	Estatus        string `json:"estatus"`
	ClaveMensaje   string `json:"claveMensaje"`
	Mensaje        string `json:"mensaje"`
	MensajeUsuario string `json:"mensajeUsuario"`
}

// NewNubarium builds the client. Credentials go out as HTTP basic auth on
// every call.
func NewNubarium(cfg NubariumConfig, opts ...Option) *Nubarium {
	o := applyOptions(opts)
	build := func(baseURL string) *resty.Client {
		return resty.New().
			SetBaseURL(baseURL).
			SetTimeout(o.timeout).
			SetBasicAuth(cfg.Username, cfg.Password).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json")
	}
	return &Nubarium{
		ocr:    build(cfg.OCRURL),
		ine:    build(cfg.INEURL),
		curp:   build(cfg.CURPURL),
		logger: o.logger,
	}
}

// ID returns the chain-configurable provider identifier.
func (n *Nubarium) ID() string {
	return ProviderNubarium
}

// ExtractID runs the combined front+back OCR extraction.
func (n *Nubarium) ExtractID(ctx context.Context, front, back []byte) (*NubariumOCRResponse, error) {
	const capability = models.CapabilityOCRCombined
	if len(front) == 0 || len(back) == 0 {
		return nil, NewError(models.ErrInvalidFormat, ProviderNubarium, capability, "both image faces are required", nil)
	}

	body := map[string]string{
		"id":        base64.StdEncoding.EncodeToString(front),
		"idReverso": base64.StdEncoding.EncodeToString(back),
	}

	var out NubariumOCRResponse
	resp, err := n.ocr.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/ocr/v1/obtener_datos_id")
	if err := n.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}

	logDebug(n.logger, "nubarium ocr extraction complete", "estatus", out.Estatus)
	return &out, nil
}

// ValidateCURP queries RENAPO through the vendor, requesting RFC generation
// alongside the person record.
func (n *Nubarium) ValidateCURP(ctx context.Context, curp string) (*NubariumCURPResponse, error) {
	const capability = models.CapabilityCURP
	if len(curp) != 18 {
		return nil, NewError(models.ErrInvalidFormat, ProviderNubarium, capability, "curp must be 18 characters", nil)
	}

	body := map[string]any{
		"curp":       curp,
		"generarRFC": true,
	}

	var out NubariumCURPResponse
	resp, err := n.curp.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/renapo/v3/valida_curp")
	if err := n.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}

	logDebug(n.logger, "nubarium curp validation complete", "estatus", out.Estatus)
	return &out, nil
}

// ValidateINE checks a credential against the nominal roll by CIC and citizen
// identifier, both read from the card's machine-readable zone.
func (n *Nubarium) ValidateINE(ctx context.Context, cic, citizenID string) (*NubariumINEResponse, error) {
	const capability = models.CapabilityINE
	if cic == "" || citizenID == "" {
		return nil, NewError(models.ErrInvalidFormat, ProviderNubarium, capability, "cic and citizen identifier are required", nil)
	}

	body := map[string]string{
		"cic":                    cic,
		"identificadorCiudadano": citizenID,
	}

	var out NubariumINEResponse
	resp, err := n.ine.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/ine/v2/valida_ine")
	if err := n.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}

	logDebug(n.logger, "nubarium ine validation complete", "clave_mensaje", out.ClaveMensaje)
	return &out, nil
}

func (n *Nubarium) checkResponse(capability models.Capability, resp *resty.Response, err error) error {
	if err != nil {
		cErr := classifyTransport(ProviderNubarium, capability, err)
		logWarn(n.logger, "nubarium call failed", "capability", string(capability), "code", string(cErr.Code), "error", err)
		return cErr
	}
	if resp.IsError() {
		cErr := classifyStatus(ProviderNubarium, capability, resp.StatusCode())
		logWarn(n.logger, "nubarium call rejected", "capability", string(capability), "status", resp.StatusCode())
		return cErr
	}
	if len(resp.Body()) == 0 {
		return NewError(models.ErrUnknown, ProviderNubarium, capability, "empty response body", nil)
	}
	return nil
}
