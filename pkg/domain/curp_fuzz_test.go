//go:build go1.18

package domain

import "testing"

// FuzzParseCURP tests that parsing never panics on arbitrary input and always
// returns either a valid code or an error.
//
// Justification: Trust boundary functions must handle arbitrary input safely.
// Fuzz tests verify no panics and consistent invariants.
func FuzzParseCURP(f *testing.F) {
	// Seed corpus with interesting inputs
	f.Add("")
	f.Add("GOAP780710HVZNRD06")
	f.Add("goap780710hvznrd06")
	f.Add("GOAP780710HVZNRD07")
	f.Add("not-a-curp")
	f.Add("ÑÑÑÑ000000HVZNRD00")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("GOAP780710HVZNRD06\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		curp, err := ParseCURP(input)

		if err == nil {
			// A valid code must round-trip unchanged
			roundTrip, err2 := ParseCURP(curp.String())
			if err2 != nil {
				t.Errorf("valid curp failed round-trip: %v", err2)
			}
			if roundTrip != curp {
				t.Error("round-trip changed the value")
			}
			if len(curp.String()) != 18 {
				t.Errorf("accepted a %d-character code", len(curp.String()))
			}
		}
	})
}

// FuzzParseRFC mirrors FuzzParseCURP for the tax identifier.
func FuzzParseRFC(f *testing.F) {
	f.Add("")
	f.Add("GOAP780710AB1")
	f.Add("ABC991231XY9")
	f.Add("&ÑA991231XY9")
	f.Add("1234567890123")

	f.Fuzz(func(t *testing.T, input string) {
		rfc, err := ParseRFC(input)
		if err == nil {
			roundTrip, err2 := ParseRFC(rfc.String())
			if err2 != nil {
				t.Errorf("valid rfc failed round-trip: %v", err2)
			}
			if roundTrip != rfc {
				t.Error("round-trip changed the value")
			}
		}
	})
}
