package conv

import "loranode-go/errcode"

const hexd = "0123456789ABCDEF"

// AppendHex appends uppercase hex of b to dst, no separators.
func AppendHex(dst, b []byte) []byte {
	for _, x := range b {
		dst = append(dst, hexd[x>>4], hexd[x&0xF])
	}
	return dst
}

// DecodeHex fills dst from a hex string of exactly 2*len(dst) digits.
// Either case is accepted; ':' and '-' separators are skipped.
func DecodeHex(dst []byte, s string) error {
	n := 0
	hi := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ':' || c == '-' {
			continue
		}
		v := nibble(c)
		if v < 0 {
			return errcode.InvalidParams
		}
		if hi < 0 {
			hi = v
			continue
		}
		if n >= len(dst) {
			return errcode.InvalidParams
		}
		dst[n] = byte(hi<<4 | v)
		n++
		hi = -1
	}
	if hi >= 0 || n != len(dst) {
		return errcode.InvalidParams
	}
	return nil
}

func nibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
