package transform

import (
	"strings"

	"credval/internal/validation/models"
	"credval/internal/validation/providers"
)

// nubariumCURPCodes maps the vendor's codigoMensaje to the canonical
// taxonomy. Codes 1/2/3/5 are registry-confirmed rejections of the code
// itself, which is authoritative; no point retrying another provider. -1 is the
// vendor shedding load.
var nubariumCURPCodes = map[string]models.ErrorCode{
	"1":  models.ErrChecksumMismatch,
	"2":  models.ErrChecksumMismatch,
	"3":  models.ErrChecksumMismatch,
	"5":  models.ErrChecksumMismatch,
	"-1": models.ErrServiceUnavailable,
}

// NubariumCURP maps a RENAPO validation response to the canonical record.
func NubariumCURP(resp *providers.NubariumCURPResponse) (*models.PersonIdentity, models.ErrorCode) {
	if resp == nil {
		return nil, models.ErrUnknown
	}
	if resp.Estatus != "OK" {
		if code, known := nubariumCURPCodes[resp.CodigoMensaje]; known {
			return nil, code
		}
		return nil, models.ErrNotFound
	}
	return identity(
		resp.Nombre,
		resp.ApellidoPaterno,
		resp.ApellidoMaterno,
		resp.Sexo,
		resp.FechaNacimiento,
		resp.DatosDocProbatorio.ClaveEntidadRegistro,
		resp.CURP,
		resp.RFCGenerado,
		resp.PaisNacimiento,
	)
}

// nubariumINEClaves is the set of conclusive nominal-roll answers. "3" is the
// only valid one; the rest mean the credential was checked and rejected.
// Claves outside this set are inconclusive and the chain may fall back.
var nubariumINEClaves = map[string]bool{
	"0": true, "1": true, "3": true, "5": true,
	"6": true, "7": true, "8": true, "9": true,
}

// NubariumINE maps a nominal-roll response to the normalized INE status.
// A conclusive rejection carries ErrChecksumMismatch so the chain stops; an
// unrecognized clave carries ErrUnknown so the fallback provider gets a try.
func NubariumINE(resp *providers.NubariumINEResponse) (*models.INEStatus, models.ErrorCode) {
	if resp == nil {
		return nil, models.ErrUnknown
	}
	status := &models.INEStatus{
		MessageKey:  resp.ClaveMensaje,
		Message:     resp.Mensaje,
		UserMessage: resp.MensajeUsuario,
	}
	if resp.Estatus == "OK" || resp.ClaveMensaje == "3" {
		status.Valid = true
		return status, ok
	}
	if nubariumINEClaves[resp.ClaveMensaje] {
		return status, models.ErrChecksumMismatch
	}
	return status, models.ErrUnknown
}

// NubariumExtraction maps a combined OCR response to the canonical
// extraction. The vendor reads both faces in one call, so demographic and
// machine-readable-zone fields arrive together.
func NubariumExtraction(resp *providers.NubariumOCRResponse) (*models.Extraction, models.ErrorCode) {
	if resp == nil {
		return nil, models.ErrUnknown
	}
	if resp.Estatus == "ERROR" {
		return nil, models.ErrServiceUnavailable
	}
	ex := &models.Extraction{
		CURP:          strings.ToUpper(strings.TrimSpace(resp.CURP)),
		GivenNames:    strings.TrimSpace(resp.Nombre),
		FirstSurname:  strings.TrimSpace(resp.ApellidoPaterno),
		SecondSurname: strings.TrimSpace(resp.ApellidoMaterno),
		CIC:           strings.TrimSpace(resp.CIC),
		CitizenID:     strings.TrimSpace(resp.IdentificadorCiudadano),
	}
	if ex.CURP == "" && (ex.CIC == "" || ex.CitizenID == "") {
		return nil, models.ErrUnknown
	}
	return ex, ok
}
