package descriptor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// HardenedKeyStart is the child index at which hardened derivation begins.
const HardenedKeyStart = hdkeychain.HardenedKeyStart

// Path is a BIP32 derivation path. Hardened elements carry the
// HardenedKeyStart offset.
type Path []uint32

// ParsePathElement parses a single derivation path element, accepting
// both the "h" and the "'" hardened markers.
func ParsePathElement(s string) (uint32, error) {
	offset := uint32(0)
	if strings.HasSuffix(s, "h") || strings.HasSuffix(s, "'") {
		offset = HardenedKeyStart
		s = s[:len(s)-1]
	}
	idx, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("descriptor: invalid path element %q", s)
	}
	if idx >= uint64(HardenedKeyStart) {
		return 0, fmt.Errorf("descriptor: path element out of range: %q",
			s)
	}
	return uint32(idx) + offset, nil
}

// ParsePath parses a slash-separated derivation path without a leading
// "m/" prefix, the form used inside key origins.
func ParsePath(path string) (Path, error) {
	var res Path
	for _, p := range strings.Split(path, "/") {
		e, err := ParsePathElement(p)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func pathElementString(e uint32) string {
	if e >= HardenedKeyStart {
		return strconv.FormatUint(uint64(e-HardenedKeyStart), 10) + "h"
	}
	return strconv.FormatUint(uint64(e), 10)
}

// String encodes the path with a leading slash per element, hardened
// elements marked with "h". The empty path encodes as "".
func (p Path) String() string {
	var sb strings.Builder
	for _, e := range p {
		sb.WriteByte('/')
		sb.WriteString(pathElementString(e))
	}
	return sb.String()
}
