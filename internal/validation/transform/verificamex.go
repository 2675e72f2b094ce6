package transform

import (
	"strings"

	"credval/internal/validation/models"
	"credval/internal/validation/providers"
)

// frontFieldCURP is the position of the CURP in the front-face OCR field
// list for this vendor's credential template.
const frontFieldCURP = 8

// VerificamexCURP maps a RENAPO scraping response to the canonical record.
// The registry answer is a list; the first entry is the current one.
func VerificamexCURP(resp *providers.VerificamexCURPResponse) (*models.PersonIdentity, models.ErrorCode) {
	if resp == nil {
		return nil, models.ErrUnknown
	}
	if resp.Error != "" {
		return nil, models.ErrServiceUnavailable
	}
	registros := resp.Data.Citizen.Registros
	if len(registros) == 0 {
		return nil, models.ErrNotFound
	}

	rec := registros[0]
	return identity(
		rec.Nombres,
		rec.PrimerApellido,
		rec.SegundoApellido,
		rec.Sexo,
		rec.FechaNacimiento,
		rec.ClaveEntidad,
		rec.CURP,
		"", // RFC is a separate SAT capability for this vendor
		rec.Nacionalidad,
	)
}

// VerificamexINE maps a nominal-roll scraping response. A populated nominal
// list means the credential is registered; an empty one means the roll has
// no matching entry.
func VerificamexINE(resp *providers.VerificamexINEResponse) (*models.INEStatus, models.ErrorCode) {
	if resp == nil {
		return nil, models.ErrUnknown
	}
	if resp.Error != "" {
		return nil, models.ErrServiceUnavailable
	}
	if len(resp.Data.IneNominalList) == 0 {
		return nil, models.ErrNotFound
	}
	return &models.INEStatus{Valid: true}, ok
}

// VerificamexRFC maps a SAT lookup. An explicit invalid answer is
// authoritative.
func VerificamexRFC(resp *providers.VerificamexRFCResponse) (models.ErrorCode, bool) {
	if resp == nil {
		return models.ErrUnknown, false
	}
	if resp.Error != "" {
		return models.ErrServiceUnavailable, false
	}
	if !resp.Data.Valid {
		return models.ErrChecksumMismatch, false
	}
	return ok, true
}

// VerificamexExtraction merges the two per-face OCR responses into the
// canonical extraction. This vendor's template exposes the CURP as a
// positional front field and the validation identifiers in the back MRZ;
// demographic names are left to the CURP registry, which is authoritative
// for them anyway.
func VerificamexExtraction(front *providers.VerificamexFrontResponse, back *providers.VerificamexBackResponse) (*models.Extraction, models.ErrorCode) {
	if front == nil || back == nil {
		return nil, models.ErrUnknown
	}
	if front.Error != "" || back.Error != "" {
		return nil, models.ErrServiceUnavailable
	}
	if len(front.Data.ParseOCR) == 0 || back.Data.MRZ.DocNumber == "" {
		return nil, models.ErrUnknown
	}

	ex := &models.Extraction{
		CIC: strings.TrimSpace(back.Data.MRZ.DocNumber),
		// MRZ pads the optional field with filler characters.
		CitizenID: strings.ReplaceAll(strings.TrimSpace(back.Data.MRZ.FirstOptional), "<", ""),
	}
	if len(front.Data.ParseOCR) > frontFieldCURP {
		ex.CURP = strings.ToUpper(strings.TrimSpace(front.Data.ParseOCR[frontFieldCURP].Value))
	}
	if ex.CURP == "" && (ex.CIC == "" || ex.CitizenID == "") {
		return nil, models.ErrUnknown
	}
	return ex, ok
}
