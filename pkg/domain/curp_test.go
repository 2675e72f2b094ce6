package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Codes with verified check digits, used across the test files.
const (
	curpVeracruzMale   = "GOAP780710HVZNRD06"
	curpJaliscoMale    = "PEGJ850315HJCRRL02"
	curpCDMXFemale     = "MAHA990102MDFRRN02"
	curpBadCheckDigit  = "GOAP780710HVZNRD07"
	curpBadStateCode   = "GOAP780710HXXNRD06"
	curpConsonantVowel = "GOAP780710HVZARD06"
)

func TestParseCURP(t *testing.T) {
	t.Run("accepts structurally valid codes", func(t *testing.T) {
		for _, raw := range []string{curpVeracruzMale, curpJaliscoMale, curpCDMXFemale} {
			curp, err := ParseCURP(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, raw, curp.String())
		}
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		curp, err := ParseCURP("  goap780710hvznrd06 ")
		require.NoError(t, err)
		assert.Equal(t, CURP(curpVeracruzMale), curp)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseCURP("")
		assert.Error(t, err)
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseCURP("GOAP780710HVZNRD0")
		assert.Error(t, err)

		_, err = ParseCURP(curpVeracruzMale + "X")
		assert.Error(t, err)
	})

	t.Run("rejects inconsistent check digit", func(t *testing.T) {
		_, err := ParseCURP(curpBadCheckDigit)
		assert.Error(t, err)
	})

	t.Run("rejects unknown state code", func(t *testing.T) {
		_, err := ParseCURP(curpBadStateCode)
		assert.Error(t, err)
	})

	t.Run("rejects vowel in internal consonants", func(t *testing.T) {
		_, err := ParseCURP(curpConsonantVowel)
		assert.Error(t, err)
	})

	t.Run("rejects invalid calendar fields", func(t *testing.T) {
		_, err := ParseCURP("GOAP781310HVZNRD06") // month 13
		assert.Error(t, err)

		_, err = ParseCURP("GOAP780732HVZNRD06") // day 32
		assert.Error(t, err)
	})
}

func TestCheckDigitTableUsesRunePositions(t *testing.T) {
	// Ñ is two bytes in UTF-8; the verification values for every letter
	// after it must not be shifted by the extra byte.
	assert.Equal(t, 23, curpValues['N'])
	assert.Equal(t, 24, curpValues['Ñ'])
	assert.Equal(t, 25, curpValues['O'])
	assert.Equal(t, 36, curpValues['Z'])

	// Sum over GOAP780710HVZNRD0 with official values is 2394, so the
	// expected digit is 6. A byte-offset table would demand 7.
	assert.True(t, checkDigitValid(curpVeracruzMale))
	assert.False(t, checkDigitValid(curpBadCheckDigit))
}

func TestCURPAccessors(t *testing.T) {
	curp, err := ParseCURP(curpVeracruzMale)
	require.NoError(t, err)

	t.Run("sex", func(t *testing.T) {
		assert.Equal(t, SexMale, curp.Sex())

		female, err := ParseCURP(curpCDMXFemale)
		require.NoError(t, err)
		assert.Equal(t, SexFemale, female.Sex())
	})

	t.Run("state code", func(t *testing.T) {
		assert.Equal(t, "VZ", curp.StateCode())
	})

	t.Run("birth date resolves the century window", func(t *testing.T) {
		born, err := curp.BirthDate()
		require.NoError(t, err)
		assert.Equal(t, 1978, born.Year())

		young, err := ParseCURP(curpCDMXFemale)
		require.NoError(t, err)
		bornYoung, err := young.BirthDate()
		require.NoError(t, err)
		assert.Equal(t, 1999, bornYoung.Year())
	})

	t.Run("rfc prefix is the first ten characters", func(t *testing.T) {
		assert.Equal(t, "GOAP780710", curp.RFCPrefix())
	})
}

func TestParseSex(t *testing.T) {
	cases := []struct {
		in   string
		want Sex
	}{
		{"H", SexMale},
		{"h", SexMale},
		{"HOMBRE", SexMale},
		{"M", SexFemale},
		{"MUJER", SexFemale},
	}
	for _, tc := range cases {
		got, err := ParseSex(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseSex("X")
	assert.Error(t, err)
	_, err = ParseSex("")
	assert.Error(t, err)
}

func TestValidStateCode(t *testing.T) {
	assert.True(t, ValidStateCode("VZ"))
	assert.True(t, ValidStateCode("NE")) // born abroad
	assert.False(t, ValidStateCode("XX"))
	assert.False(t, ValidStateCode(""))
}

func TestParseRFC(t *testing.T) {
	t.Run("accepts physical person formats", func(t *testing.T) {
		for _, raw := range []string{"GOAP780710AB1", "GOAP780710", "pegj850315xy2"} {
			rfc, err := ParseRFC(raw)
			require.NoError(t, err, raw)
			assert.NotEmpty(t, rfc.String())
		}
	})

	t.Run("accepts legal entity format", func(t *testing.T) {
		_, err := ParseRFC("ABC991231XY9")
		assert.NoError(t, err)
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, raw := range []string{"", "GOAP", "GOAP78071", "GOAP78071X", "12345678901234"} {
			_, err := ParseRFC(raw)
			assert.Error(t, err, raw)
		}
	})
}
