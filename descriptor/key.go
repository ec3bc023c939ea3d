package descriptor

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Wildcard is the terminal derivation step of an extended key.
type Wildcard int

const (
	NoWildcard Wildcard = iota
	UnhardenedWildcard
	HardenedWildcard
)

// Origin is the key-origin prefix of a descriptor key: the fingerprint of
// an ancestor key and the derivation path from it.
type Origin struct {
	Fingerprint []byte // 4 bytes
	Path        Path
}

func (o *Origin) String() string {
	return "[" + hex.EncodeToString(o.Fingerprint) + o.Path.String() + "]"
}

// Key is a descriptor key reference: an optional origin followed by the
// key material itself.
type Key struct {
	Origin *Origin
	Data   KeyData
}

func (k *Key) String() string {
	var sb strings.Builder
	if k.Origin != nil {
		sb.WriteString(k.Origin.String())
	}
	sb.WriteString(k.Data.String())
	return sb.String()
}

// KeyData is the key material of a descriptor key, one of SingleFull,
// XOnly, SinglePriv or Extended.
type KeyData interface {
	fmt.Stringer

	keyData()
}

// SingleFull is a raw SEC encoded public key, 33 bytes compressed or 65
// bytes uncompressed.
type SingleFull struct {
	Raw []byte
}

func (k *SingleFull) keyData() {}

func (k *SingleFull) String() string {
	return hex.EncodeToString(k.Raw)
}

// XOnly is a raw 32-byte BIP-340 public key.
type XOnly struct {
	Raw []byte
}

func (k *XOnly) keyData() {}

func (k *XOnly) String() string {
	return hex.EncodeToString(k.Raw)
}

// SinglePriv is a WIF encoded private key. The WIF network byte and the
// compression flag are retained so the exact input string reproduces.
type SinglePriv struct {
	NetID      byte
	Compressed bool
	Raw        []byte // 32-byte scalar
}

func (k *SinglePriv) keyData() {}

func (k *SinglePriv) String() string {
	payload := make([]byte, 0, 38)
	payload = append(payload, k.NetID)
	payload = append(payload, k.Raw...)
	if k.Compressed {
		payload = append(payload, 0x01)
	}
	sum := chainhash.DoubleHashB(payload)[:4]
	return base58.Encode(append(payload, sum...))
}

// Extended is a BIP32 extended key, public or private. The 78-byte
// serialization is retained verbatim, so version bytes, depth, parent
// fingerprint and child index survive a round trip untouched. The
// post-key derivation is split around an optional multipath step
// ("<a;b;...>"): Prefix holds the steps before it, Suffix the steps
// after it, and Branches is nil for single-path keys.
type Extended struct {
	Private  bool
	Raw      []byte // 78 bytes
	Prefix   Path
	Branches []uint32
	Suffix   Path
	Wildcard Wildcard
}

func (k *Extended) keyData() {}

func (k *Extended) String() string {
	var sb strings.Builder
	sb.WriteString(extendedKeyString(k.Raw, k.Private))
	sb.WriteString(k.Prefix.String())
	if k.Branches != nil {
		sb.WriteString("/<")
		for i, b := range k.Branches {
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(pathElementString(b))
		}
		sb.WriteByte('>')
		sb.WriteString(k.Suffix.String())
	}
	switch k.Wildcard {
	case UnhardenedWildcard:
		sb.WriteString("/*")
	case HardenedWildcard:
		sb.WriteString("/*h")
	}
	return sb.String()
}

// extendedKeyString re-encodes a raw 78-byte BIP32 serialization as
// base58check.
func extendedKeyString(raw []byte, private bool) string {
	version := raw[0:4]
	depth := raw[4]
	parentFP := raw[5:9]
	childNum := binary.BigEndian.Uint32(raw[9:13])
	chainCode := raw[13:45]
	keyData := raw[45:78]
	if private {
		keyData = keyData[1:]
	}
	key := hdkeychain.NewExtendedKey(
		version, keyData, chainCode, parentFP, depth, childNum,
		private,
	)
	return key.String()
}

var wifNetworks = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
	&chaincfg.SimNetParams,
}

// ParseKey parses a descriptor key reference, including its optional
// origin prefix and, for extended keys, its post-key derivation steps.
// The script context restricts the admissible key shapes: x-only keys
// are Tapscript only, uncompressed keys legacy only.
func ParseKey(s string, ctx Context) (*Key, error) {
	key := &Key{}
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("descriptor: missing ']' in key "+
				"%q", s)
		}
		origin := s[1:end]
		s = s[end+1:]
		fpHex := origin
		pathPart := ""
		if i := strings.IndexByte(origin, '/'); i >= 0 {
			fpHex, pathPart = origin[:i], origin[i+1:]
		}
		fp, err := hex.DecodeString(fpHex)
		if err != nil || len(fp) != 4 {
			return nil, fmt.Errorf("descriptor: invalid origin "+
				"fingerprint %q", fpHex)
		}
		key.Origin = &Origin{Fingerprint: fp}
		if pathPart != "" {
			path, err := ParsePath(pathPart)
			if err != nil {
				return nil, err
			}
			key.Origin.Path = path
		}
	}

	body := s
	steps := ""
	hasSteps := false
	if i := strings.IndexByte(s, '/'); i >= 0 {
		body, steps, hasSteps = s[:i], s[i+1:], true
	}
	data, err := parseKeyBody(body, ctx)
	if err != nil {
		return nil, err
	}
	key.Data = data

	if !hasSteps {
		return key, nil
	}
	if steps == "" {
		return nil, fmt.Errorf("descriptor: trailing '/' on key %q", s)
	}
	extended, ok := data.(*Extended)
	if !ok {
		return nil, fmt.Errorf("descriptor: derivation steps on "+
			"non-extended key %q", s)
	}
	if err := parseKeySteps(extended, steps); err != nil {
		return nil, err
	}
	return key, nil
}

func parseKeyBody(body string, ctx Context) (KeyData, error) {
	if raw, err := hex.DecodeString(body); err == nil {
		switch len(raw) {
		case 32:
			if ctx != Tapscript {
				return nil, fmt.Errorf("descriptor: x-only "+
					"key %q outside taproot", body)
			}
			if _, err := schnorr.ParsePubKey(raw); err != nil {
				return nil, fmt.Errorf("descriptor: invalid "+
					"x-only key %q: %w", body, err)
			}
			return &XOnly{Raw: raw}, nil

		case 33, 65:
			if len(raw) == 65 && ctx != Legacy {
				return nil, fmt.Errorf("descriptor: "+
					"uncompressed key %q outside legacy "+
					"context", body)
			}
			if _, err := btcec.ParsePubKey(raw); err != nil {
				return nil, fmt.Errorf("descriptor: invalid "+
					"public key %q: %w", body, err)
			}
			return &SingleFull{Raw: raw}, nil

		default:
			return nil, fmt.Errorf("descriptor: invalid key "+
				"length %d", len(raw))
		}
	}

	decoded := base58.Decode(body)
	if len(decoded) == 82 {
		xkey, err := hdkeychain.NewKeyFromString(body)
		if err != nil {
			return nil, fmt.Errorf("descriptor: invalid extended "+
				"key %q: %w", body, err)
		}
		raw := make([]byte, 78)
		copy(raw, decoded[:78])
		return &Extended{
			Private: xkey.IsPrivate(),
			Raw:     raw,
		}, nil
	}

	wif, err := btcutil.DecodeWIF(body)
	if err != nil {
		return nil, fmt.Errorf("descriptor: unrecognized key %q", body)
	}
	netID := decoded[0]
	known := false
	for _, params := range wifNetworks {
		if netID == params.PrivateKeyID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("descriptor: unknown WIF network "+
			"0x%02x", netID)
	}
	scalar := wif.PrivKey.Serialize()
	var mod secp256k1.ModNScalar
	if overflow := mod.SetByteSlice(scalar); overflow || mod.IsZero() {
		return nil, fmt.Errorf("descriptor: WIF key %q out of range",
			body)
	}
	if !wif.CompressPubKey && ctx != Legacy {
		return nil, fmt.Errorf("descriptor: uncompressed WIF key "+
			"outside legacy context")
	}
	return &SinglePriv{
		NetID:      netID,
		Compressed: wif.CompressPubKey,
		Raw:        scalar,
	}, nil
}

// parseKeySteps parses the post-key derivation of an extended key: plain
// steps, at most one multipath step, and an optional trailing wildcard.
func parseKeySteps(key *Extended, steps string) error {
	parts := strings.Split(steps, "/")
	for i, p := range parts {
		switch {
		case p == "*" || p == "*h" || p == "*'":
			if i != len(parts)-1 {
				return fmt.Errorf("descriptor: wildcard not "+
					"at end of path %q", steps)
			}
			if p == "*" {
				key.Wildcard = UnhardenedWildcard
			} else {
				key.Wildcard = HardenedWildcard
			}

		case len(p) > 1 && p[0] == '<' && p[len(p)-1] == '>':
			if key.Branches != nil {
				return fmt.Errorf("descriptor: multiple "+
					"multipath steps in %q", steps)
			}
			for _, b := range strings.Split(p[1:len(p)-1], ";") {
				e, err := ParsePathElement(b)
				if err != nil {
					return err
				}
				key.Branches = append(key.Branches, e)
			}
			if len(key.Branches) < 2 {
				return fmt.Errorf("descriptor: multipath "+
					"step %q needs at least two branches",
					p)
			}

		default:
			e, err := ParsePathElement(p)
			if err != nil {
				return err
			}
			if key.Branches != nil {
				key.Suffix = append(key.Suffix, e)
			} else {
				key.Prefix = append(key.Prefix, e)
			}
		}
	}
	return nil
}
