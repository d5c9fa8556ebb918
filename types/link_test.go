package types

import (
	"testing"

	"loranode-go/x/fmtx"
)

// Log lines pass these through the MCU formatter, which only knows
// Stringers and plain strings.
func TestNamedStringsAreStringers(t *testing.T) {
	for _, c := range []struct {
		v    interface{ String() string }
		want string
	}{
		{StateJoined, "joined"},
		{StateSleeping, "sleeping"},
		{FormatLPP, "lpp"},
		{RemainderTimer, "timer"},
	} {
		if got := c.v.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
	if got := fmtx.Sprintf("status %s: format %s", StateJoined, FormatRaw); got != "status joined: format raw" {
		t.Fatalf("formatted %q", got)
	}
}
