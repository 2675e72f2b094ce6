package providers

import (
	"context"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"credval/internal/validation/models"
)

// ValidaCurpConfig carries the base URL and the token passed as a query
// parameter; this vendor has no header auth.
type ValidaCurpConfig struct {
	BaseURL string
	Token   string
}

// ValidaCurp is the secondary CURP provider. It is also the only vendor with
// a CURP calculation endpoint, so it anchors the generation chain.
type ValidaCurp struct {
	http   *resty.Client
	token  string
	logger *slog.Logger
}

// ValidaCurpSolicitante is the person block of a lookup response.
type ValidaCurpSolicitante struct {
	CURP                   string `json:"CURP"`
	Nombres                string `json:"Nombres"`
	ApellidoPaterno        string `json:"ApellidoPaterno"`
	ApellidoMaterno        string `json:"ApellidoMaterno"`
	Sexo                   string `json:"Sexo"`
	ClaveSexo              string `json:"ClaveSexo"`
	FechaNacimiento        string `json:"FechaNacimiento"`
	EntidadNacimiento      string `json:"EntidadNacimiento"`
	ClaveEntidadNacimiento string `json:"ClaveEntidadNacimiento"`
	Nacionalidad           string `json:"Nacionalidad"`
	StatusCurp             string `json:"StatusCurp"`
	ClaveStatusCurp        string `json:"ClaveStatusCurp"`
}

// ValidaCurpResponse is the raw shape of /curp/obtener_datos.
type ValidaCurpResponse struct {
	Error    bool   `json:"error"`
	Message  string `json:"message,omitempty"`
	Response struct {
		Solicitante ValidaCurpSolicitante `json:"Solicitante"`
	} `json:"response"`
}

// ValidaCurpCalculateResponse is the raw shape of /curp/calcular_curp.
type ValidaCurpCalculateResponse struct {
	Error    bool   `json:"error"`
	Message  string `json:"message,omitempty"`
	Response struct {
		CURP string `json:"CURP"`
	} `json:"response"`
}

// CalculateInput is the person data a CURP is derived from.
type CalculateInput struct {
	GivenNames    string
	FirstSurname  string
	SecondSurname string
	SexKey        string // H or M
	BirthYear     string
	BirthMonth    string
	BirthDay      string
	StateCode     string
}

// NewValidaCurp builds the client.
func NewValidaCurp(cfg ValidaCurpConfig, opts ...Option) *ValidaCurp {
	o := applyOptions(opts)
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json")
	return &ValidaCurp{http: client, token: cfg.Token, logger: o.logger}
}

// ID returns the chain-configurable provider identifier.
func (c *ValidaCurp) ID() string {
	return ProviderValidaCurp
}

// GetCURPData fetches the registry record behind a CURP.
func (c *ValidaCurp) GetCURPData(ctx context.Context, curp string) (*ValidaCurpResponse, error) {
	const capability = models.CapabilityCURP
	if len(curp) != 18 {
		return nil, NewError(models.ErrInvalidFormat, ProviderValidaCurp, capability, "curp must be 18 characters", nil)
	}

	var out ValidaCurpResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"token": c.token, "curp": curp}).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/curp/obtener_datos/")
	if err := c.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}

	logDebug(c.logger, "validacurp lookup complete", "error_flag", out.Error)
	return &out, nil
}

// CalculateCURP derives a CURP from person data.
func (c *ValidaCurp) CalculateCURP(ctx context.Context, in CalculateInput) (*ValidaCurpCalculateResponse, error) {
	const capability = models.CapabilityCURPGenerate
	if in.GivenNames == "" || in.FirstSurname == "" || in.SexKey == "" ||
		in.BirthYear == "" || in.BirthMonth == "" || in.BirthDay == "" || in.StateCode == "" {
		return nil, NewError(models.ErrInvalidFormat, ProviderValidaCurp, capability, "all person fields except second surname are required", nil)
	}

	var out ValidaCurpCalculateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"token":            c.token,
			"entidad":          in.StateCode,
			"sexo":             in.SexKey,
			"anio_nacimiento":  in.BirthYear,
			"mes_nacimiento":   in.BirthMonth,
			"dia_nacimiento":   in.BirthDay,
			"apellido_paterno": in.FirstSurname,
			"apellido_materno": in.SecondSurname,
			"nombres":          in.GivenNames,
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/curp/calcular_curp")
	if err := c.checkResponse(capability, resp, err); err != nil {
		return nil, err
	}

	logDebug(c.logger, "validacurp calculation complete", "error_flag", out.Error)
	return &out, nil
}

func (c *ValidaCurp) checkResponse(capability models.Capability, resp *resty.Response, err error) error {
	if err != nil {
		cErr := classifyTransport(ProviderValidaCurp, capability, err)
		logWarn(c.logger, "validacurp call failed", "capability", string(capability), "code", string(cErr.Code), "error", err)
		return cErr
	}
	if resp.IsError() {
		cErr := classifyStatus(ProviderValidaCurp, capability, resp.StatusCode())
		logWarn(c.logger, "validacurp call rejected", "capability", string(capability), "status", resp.StatusCode())
		return cErr
	}
	if len(resp.Body()) == 0 {
		return NewError(models.ErrUnknown, ProviderValidaCurp, capability, "empty response body", nil)
	}
	return nil
}
