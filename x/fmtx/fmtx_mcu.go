//go:build rp2040 || rp2350

package fmtx

import (
	"io"

	"loranode-go/x/conv"
)

// DefaultOutput is used by Print/Printf on MCU builds.
// Set this from the platform bootstrap (e.g. a UART writer).
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// --- Public API (signatures match fmt) ---

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a...)
	return string(b.buf)
}

func Printf(format string, a ...any) (int, error) {
	return Fprintf(DefaultOutput, format, a...)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	var b builder
	b.format(format, a...)
	return w.Write(b.buf)
}

func Errorf(format string, a ...any) error {
	return &stringError{Sprintf(format, a...)}
}

func Sprint(a ...any) string {
	var b builder
	b.list(a)
	return string(b.buf)
}

func Fprint(w io.Writer, a ...any) (int, error) {
	var b builder
	b.list(a)
	return w.Write(b.buf)
}

func Print(a ...any) (int, error) { return Fprint(DefaultOutput, a...) }

// --- Internals ---
// Supports %s %d %x %X %v %t %% with no width, precision or flags.
// Log lines are the only consumer; keep MCU cost low.

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

type builder struct {
	buf []byte
	num [20]byte
}

func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

func (b *builder) list(a []any) {
	for i, v := range a {
		if i > 0 {
			b.buf = append(b.buf, ' ')
		}
		b.any(v)
	}
}

func (b *builder) int(n int64) {
	if n < 0 {
		b.buf = append(b.buf, '-')
		b.buf = append(b.buf, conv.Utoa(b.num[:], uint64(-n))...)
		return
	}
	b.buf = append(b.buf, conv.Utoa(b.num[:], uint64(n))...)
}

func (b *builder) uint(n uint64) { b.buf = append(b.buf, conv.Utoa(b.num[:], n)...) }

func (b *builder) any(v any) {
	switch x := v.(type) {
	case string:
		b.str(x)
	case []byte:
		b.buf = conv.AppendHex(b.buf, x)
	case error:
		b.str(x.Error())
	case interface{ String() string }:
		b.str(x.String())
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	case int:
		b.int(int64(x))
	case int8:
		b.int(int64(x))
	case int16:
		b.int(int64(x))
	case int32:
		b.int(int64(x))
	case int64:
		b.int(x)
	case uint, uint8, uint16, uint32, uint64:
		b.uint(toU64(x))
	default:
		b.str("<?>")
	}
}

func toU64(v any) uint64 {
	switch t := v.(type) {
	case uint:
		return uint64(t)
	case uint8:
		return uint64(t)
	case uint16:
		return uint64(t)
	case uint32:
		return uint64(t)
	case uint64:
		return t
	}
	return 0
}

func (b *builder) hex(v any, upper bool) {
	var u uint64
	switch t := v.(type) {
	case []byte:
		start := len(b.buf)
		b.buf = conv.AppendHex(b.buf, t)
		if !upper {
			lower(b.buf[start:])
		}
		return
	case int:
		u = uint64(t)
	case int32:
		u = uint64(t)
	case int64:
		u = uint64(t)
	default:
		u = toU64(v)
	}
	if u == 0 {
		b.buf = append(b.buf, '0')
		return
	}
	const digits = "0123456789ABCDEF"
	i := len(b.num)
	for u > 0 {
		i--
		b.num[i] = digits[u&0xF]
		u >>= 4
	}
	start := len(b.buf)
	b.buf = append(b.buf, b.num[i:]...)
	if !upper {
		lower(b.buf[start:])
	}
}

func lower(p []byte) {
	for i, c := range p {
		if 'A' <= c && c <= 'F' {
			p[i] = c + ('a' - 'A')
		}
	}
}

func (b *builder) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.buf = append(b.buf, c)
			continue
		}
		i++
		verb := format[i]
		if verb == '%' {
			b.buf = append(b.buf, '%')
			continue
		}
		if ai >= len(args) {
			b.str("%!")
			b.buf = append(b.buf, verb)
			continue
		}
		arg := args[ai]
		ai++
		switch verb {
		case 'x':
			b.hex(arg, false)
		case 'X':
			b.hex(arg, true)
		case 't', 's', 'd', 'v':
			b.any(arg)
		default:
			b.buf = append(b.buf, '%', verb)
		}
	}
}
