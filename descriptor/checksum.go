package descriptor

import (
	"fmt"
	"strings"
)

var (
	inputCharset = "0123456789()[],'/*abcdefgh@:$%{}IJKLMNOPQRSTUVWXYZ" +
		"&+-.;<=>?!^_|~ijklmnopqrstuvwxyzABCDEFGH`#\"\\ "
	checksumCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	generator       = []uint64{
		0xf5dee51989, 0xa9fdca3312, 0x1bab10e32d, 0x3706b1677a,
		0x644d626ffd,
	}
)

func checksumPolymod(symbols []uint64) uint64 {
	chk := uint64(1)
	for _, value := range symbols {
		top := chk >> 35
		chk = (chk&0x7ffffffff)<<5 ^ value
		for i := 0; i < 5; i++ {
			if (top>>i)&1 != 0 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func checksumExpand(s string) ([]uint64, bool) {
	var groups, symbols []uint64
	for _, c := range s {
		v := strings.IndexRune(inputCharset, c)
		if v < 0 {
			return nil, false
		}
		symbols = append(symbols, uint64(v&31))
		groups = append(groups, uint64(v>>5))
		if len(groups) == 3 {
			symbols = append(
				symbols, groups[0]*9+groups[1]*3+groups[2],
			)
			groups = groups[:0]
		}
	}
	switch len(groups) {
	case 1:
		symbols = append(symbols, groups[0])
	case 2:
		symbols = append(symbols, groups[0]*3+groups[1])
	}
	return symbols, true
}

// Checksum computes the BIP-380 checksum of a descriptor body, without the
// '#' separator. It fails if the body contains characters outside the
// descriptor charset.
func Checksum(s string) (string, error) {
	symbols, ok := checksumExpand(s)
	if !ok {
		return "", fmt.Errorf("descriptor: invalid character in %q", s)
	}
	symbols = append(symbols, 0, 0, 0, 0, 0, 0, 0, 0)
	sum := checksumPolymod(symbols) ^ 1
	builder := strings.Builder{}
	for i := 0; i < 8; i++ {
		builder.WriteByte(checksumCharset[(sum>>(5*(7-i)))&31])
	}
	return builder.String(), nil
}

// validChecksum reports whether sum is the checksum of the descriptor
// body s.
func validChecksum(s, sum string) bool {
	if len(sum) != 8 {
		return false
	}
	symbols, ok := checksumExpand(s)
	if !ok {
		return false
	}
	for i := 0; i < len(sum); i++ {
		v := strings.IndexByte(checksumCharset, sum[i])
		if v < 0 {
			return false
		}
		symbols = append(symbols, uint64(v))
	}
	return checksumPolymod(symbols) == 1
}
