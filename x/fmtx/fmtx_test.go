package fmtx

import (
	"bytes"
	"errors"
	"testing"
)

type stateName string

func (s stateName) String() string { return string(s) }

func TestSprintfVerbs(t *testing.T) {
	type C struct {
		fmt  string
		args []any
		want string
	}
	for _, c := range []C{
		{"sleeping %d of 8 seconds, rest %d", []any{2, 4}, "sleeping 2 of 8 seconds, rest 4"},
		{"hex %x HEX %X", []any{255, 255}, "hex ff HEX FF"},
		{"ack=%t", []any{true}, "ack=true"},
		{"literal %%", nil, "literal %"},
		{"event %s", []any{"joined"}, "event joined"},
		{"v=%v", []any{-3700}, "v=-3700"},
		{"status %s", []any{stateName("joined")}, "status joined"},
	} {
		got := Sprintf(c.fmt, c.args...)
		if got != c.want {
			t.Fatalf("Sprintf(%q, ...) = %q, want %q", c.fmt, got, c.want)
		}
	}
}

func TestPrintUsesDefaultOutput(t *testing.T) {
	var buf bytes.Buffer
	old := DefaultOutput
	DefaultOutput = &buf
	t.Cleanup(func() { DefaultOutput = old })

	if got, want := Sprint("a", 1, true), "a 1 true"; got != want {
		t.Fatalf("Sprint = %q, want %q", got, want)
	}
	if got, want := Sprint("x", "y"), "x y"; got != want {
		t.Fatalf("Sprint = %q, want %q", got, want)
	}

	_, _ = Print("n", 2)
	if got, want := buf.String(), "n 2"; got != want {
		t.Fatalf("Print wrote %q, want %q", got, want)
	}
	buf.Reset()

	_, _ = Printf("v=%d", 7)
	if got, want := buf.String(), "v=7"; got != want {
		t.Fatalf("Printf wrote %q, want %q", got, want)
	}
}

func TestFprintf(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Fprintf(&buf, "hi %s", "there"); err != nil {
		t.Fatalf("Fprintf error: %v", err)
	}
	if got, want := buf.String(), "hi there"; got != want {
		t.Fatalf("Fprintf wrote %q, want %q", got, want)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("bad %s: %d", "thing", 3)
	if err == nil || err.Error() != "bad thing: 3" {
		t.Fatalf("Errorf = %v, want %q", err, "bad thing: 3")
	}
	if !errors.Is(err, err) {
		t.Fatalf("errors.Is should be true on itself")
	}
}
