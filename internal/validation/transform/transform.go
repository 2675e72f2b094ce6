// Package transform maps each provider's raw response shape to the canonical
// person record or a canonical error code. Functions here are pure: no I/O,
// no panics on malformed input: an unexpected shape becomes ErrUnknown so
// the orchestrator never sees a provider-specific decoding fault.
package transform

import (
	"strings"

	"credval/internal/validation/models"
	"credval/pkg/domain"
)

// ok is the zero error code meaning the transform succeeded.
const ok = models.ErrorCode("")

// isoDate normalizes the DD/MM/YYYY form the registries use to ISO 8601.
// Values already in ISO form pass through.
func isoDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "/") {
		return raw, true
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return "", false
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0], true
}

// identity assembles a PersonIdentity once the source fields are extracted,
// enforcing that the CURP is structurally coherent. A record the registry
// returned with an incoherent code is an unexpected shape, not a caller error.
func identity(givenNames, firstSurname, secondSurname, sexRaw, birthRaw, stateCode, curpRaw, rfcRaw, nationality string) (*models.PersonIdentity, models.ErrorCode) {
	curp, err := domain.ParseCURP(curpRaw)
	if err != nil {
		return nil, models.ErrUnknown
	}
	sex, err := domain.ParseSex(sexRaw)
	if err != nil {
		return nil, models.ErrUnknown
	}
	birth, okDate := isoDate(birthRaw)
	if !okDate {
		return nil, models.ErrUnknown
	}
	if stateCode == "" {
		stateCode = curp.StateCode()
	}

	p := &models.PersonIdentity{
		GivenNames:    strings.TrimSpace(givenNames),
		FirstSurname:  strings.TrimSpace(firstSurname),
		SecondSurname: strings.TrimSpace(secondSurname),
		Sex:           sex,
		BirthDate:     birth,
		StateCode:     strings.ToUpper(strings.TrimSpace(stateCode)),
		CURP:          curp,
		Nationality:   normalizeNationality(nationality),
	}
	if p.GivenNames == "" || p.FirstSurname == "" {
		return nil, models.ErrUnknown
	}
	if rfcRaw != "" {
		if rfc, err := domain.ParseRFC(rfcRaw); err == nil {
			p.RFC = rfc
		}
	}
	return p, ok
}

func normalizeNationality(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "MEX" || raw == "" {
		return "MEXICO"
	}
	return raw
}
