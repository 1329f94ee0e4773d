//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseReference checks that parsing never panics on arbitrary input and
// that every accepted reference round-trips through String. References arrive
// from URLs and stored rows.
func FuzzParseReference(f *testing.F) {
	f.Add("CROWN/2024/0000005")
	f.Add("")
	f.Add("CROWN/2024")
	f.Add("CROWN//0000005")
	f.Add("CROWN/2024/0000005/extra")
	f.Add("'; DROP TABLE cases;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		ref, err := ParseReference(input)
		if err != nil {
			return
		}
		roundTrip, err2 := ParseReference(ref.String())
		if err2 != nil {
			t.Errorf("accepted reference failed round-trip: %v", err2)
		}
		if roundTrip != ref {
			t.Error("round-trip changed reference value")
		}
	})
}
