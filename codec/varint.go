package codec

import "fmt"

// maxUvarintLen is the longest canonical LEB128 encoding of a 64-bit
// value.
const maxUvarintLen = 10

// AppendUvarint appends the canonical LEB128 encoding of v to dst: seven
// bits per byte, least significant group first, high bit set on every
// byte but the last.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Uvarint decodes a canonical LEB128 value from the front of b,
// returning the value and the number of bytes consumed. Truncated,
// overlong and non-minimal encodings fail with ErrMalformedVarint.
func Uvarint(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(b); i++ {
		c := b[i]
		if i == maxUvarintLen-1 && c > 1 {
			return 0, 0, fmt.Errorf("%w: value exceeds 64 bits",
				ErrMalformedVarint)
		}
		v |= uint64(c&0x7f) << (7 * i)
		if c&0x80 != 0 {
			continue
		}
		if c == 0 && i > 0 {
			return 0, 0, fmt.Errorf("%w: non-minimal encoding",
				ErrMalformedVarint)
		}
		return v, i + 1, nil
	}
	return 0, 0, fmt.Errorf("%w: unterminated value", ErrMalformedVarint)
}
