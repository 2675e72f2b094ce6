// Package domain holds the identifier value objects shared across the
// validation services. Constructors enforce the structural rules at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"regexp"
	"strings"
	"time"

	dErrors "credval/pkg/errors"
)

// CURP is the 18-character national personal identifier.
// Invariant: the value matches the official structural pattern and its check
// digit is consistent with the 17-character prefix.
//
// Usage: construct via ParseCURP at trust boundaries before any provider is
// called; a structurally invalid code must never reach the network.
type CURP string

// curpPattern is the official structural pattern: four name letters, birth
// date, sex, state code, three internal consonants, homoclave, check digit.
var curpPattern = regexp.MustCompile(
	`^[A-Z][AEIOUX][A-Z]{2}\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])` +
		`[HM](AS|BC|BS|CC|CL|CM|CS|CH|DF|DG|GT|GR|HG|JC|MC|MN|MS|NT|NL|OC|PL|QT|QR|SP|SL|SR|TC|TS|TL|VZ|YN|ZS|NE)` +
		`[B-DF-HJ-NP-TV-Z]{3}[A-Z0-9]\d$`)

// curpAlphabet assigns the official verification value to each character.
// Ñ occupies position 24; the check digit algorithm depends on it.
const curpAlphabet = "0123456789ABCDEFGHIJKLMNÑOPQRSTUVWXYZ"

// ParseCURP constructs a CURP from external input.
//
// Errors: CodeBadRequest when the code is empty, not 18 characters, fails the
// structural pattern, or carries an inconsistent check digit.
func ParseCURP(s string) (CURP, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "curp cannot be empty")
	}
	if len(code) != 18 {
		return "", dErrors.New(dErrors.CodeBadRequest, "curp must be exactly 18 characters")
	}
	if !curpPattern.MatchString(code) {
		return "", dErrors.New(dErrors.CodeBadRequest, "curp does not match the official pattern")
	}
	if !checkDigitValid(code) {
		return "", dErrors.New(dErrors.CodeBadRequest, "curp check digit is inconsistent")
	}
	return CURP(code), nil
}

// curpValues maps each alphabet character to its verification value. The
// value is the rune position, not the byte offset: the two-byte Ñ sits at
// 24, so byte offsets would overshoot by one for every letter after it.
var curpValues = func() map[rune]int {
	m := make(map[rune]int, len(curpAlphabet))
	for i, r := range []rune(curpAlphabet) {
		m[r] = i
	}
	return m
}()

// checkDigitValid recomputes the mod-10 check digit over the first 17
// characters using the official character table.
func checkDigitValid(code string) bool {
	runes := []rune(code)
	sum := 0
	for i := 0; i < 17; i++ {
		v, ok := curpValues[runes[i]]
		if !ok {
			return false
		}
		sum += v * (18 - i)
	}
	expected := (10 - sum%10) % 10
	return int(runes[17]-'0') == expected
}

func (c CURP) String() string {
	return string(c)
}

// Sex reports the holder's sex as encoded in position 11.
func (c CURP) Sex() Sex {
	if c[10] == 'H' {
		return SexMale
	}
	return SexFemale
}

// StateCode reports the two-letter issuing state code in positions 12-13.
func (c CURP) StateCode() string {
	return string(c[11:13])
}

// BirthDate decodes the embedded birth date. Two-digit years at or above 30
// resolve to the 1900s; the homoclave position distinguishes centuries for
// ambiguous codes, which is beyond what the embedded digits can express, so
// the conventional cutoff is used.
func (c CURP) BirthDate() (time.Time, error) {
	year := int(c[4]-'0')*10 + int(c[5]-'0')
	if year >= 30 {
		year += 1900
	} else {
		year += 2000
	}
	month := time.Month(int(c[6]-'0')*10 + int(c[7]-'0'))
	day := int(c[8]-'0')*10 + int(c[9]-'0')
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "curp encodes an impossible birth date")
	}
	return t, nil
}

// RFCPrefix derives the 10-character RFC stem shared with the tax identifier.
// The full RFC appends a homoclave the tax authority assigns, so only the
// stem is derivable offline.
func (c CURP) RFCPrefix() string {
	return string(c[:10])
}

// Sex is the person sex enumeration used across provider responses.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

// ParseSex normalizes the provider encodings (H/M single letters and the
// spelled-out Spanish forms) to the canonical enum.
func ParseSex(s string) (Sex, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "H", "HOMBRE", "MALE":
		return SexMale, nil
	case "M", "MUJER", "FEMALE":
		return SexFemale, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unrecognized sex value")
	}
}

// stateCodes is the single source of truth for valid issuing-state codes,
// including NE for citizens born abroad.
var stateCodes = map[string]bool{
	"AS": true, "BC": true, "BS": true, "CC": true, "CL": true, "CM": true,
	"CS": true, "CH": true, "DF": true, "DG": true, "GT": true, "GR": true,
	"HG": true, "JC": true, "MC": true, "MN": true, "MS": true, "NT": true,
	"NL": true, "OC": true, "PL": true, "QT": true, "QR": true, "SP": true,
	"SL": true, "SR": true, "TC": true, "TS": true, "TL": true, "VZ": true,
	"YN": true, "ZS": true, "NE": true,
}

// ValidStateCode reports whether the two-letter code names an issuing state.
func ValidStateCode(code string) bool {
	return stateCodes[strings.ToUpper(code)]
}

// RFC is the 10-13 character tax identifier.
// Invariant: 12 characters for companies, 13 for persons; the 10-character
// stem form is accepted because providers derive it from the CURP.
type RFC string

var rfcPattern = regexp.MustCompile(`^[A-ZÑ&]{3,4}\d{6}([A-Z0-9]{3})?$`)

// ParseRFC constructs an RFC from external input.
//
// Errors: CodeBadRequest when the value is empty or structurally invalid.
func ParseRFC(s string) (RFC, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "rfc cannot be empty")
	}
	if len(code) < 10 || len(code) > 13 || !rfcPattern.MatchString(code) {
		return "", dErrors.New(dErrors.CodeBadRequest, "rfc does not match the official pattern")
	}
	return RFC(code), nil
}

func (r RFC) String() string {
	return string(r)
}
