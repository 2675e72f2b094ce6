package transform

import (
	"credval/internal/validation/models"
	"credval/internal/validation/providers"
)

// ValidaCurpData maps a registry lookup to the canonical record. The vendor
// signals failure with a boolean rather than HTTP status, so an error flag
// here means the record was not found.
func ValidaCurpData(resp *providers.ValidaCurpResponse) (*models.PersonIdentity, models.ErrorCode) {
	if resp == nil {
		return nil, models.ErrUnknown
	}
	if resp.Error {
		return nil, models.ErrNotFound
	}

	sol := resp.Response.Solicitante
	sex := sol.ClaveSexo
	if sex == "" {
		sex = sol.Sexo
	}
	return identity(
		sol.Nombres,
		sol.ApellidoPaterno,
		sol.ApellidoMaterno,
		sex,
		sol.FechaNacimiento,
		sol.ClaveEntidadNacimiento,
		sol.CURP,
		"", // this vendor does not derive the RFC
		sol.Nacionalidad,
	)
}

// ValidaCurpCalculated extracts the generated code from a calculation
// response.
func ValidaCurpCalculated(resp *providers.ValidaCurpCalculateResponse) (string, models.ErrorCode) {
	if resp == nil {
		return "", models.ErrUnknown
	}
	if resp.Error {
		return "", models.ErrNotFound
	}
	if len(resp.Response.CURP) != 18 {
		return "", models.ErrUnknown
	}
	return resp.Response.CURP, ok
}
