package codec

import (
	"fmt"

	"github.com/joshdoman/descriptor-codec/descriptor"
)

// maxPathLen bounds serialized derivation paths; BIP32 limits key depth
// to 255.
const maxPathLen = 255

// pathStep folds the hardened bit of a derivation step into the varint
// value: 2c for unhardened child c, 2c+1 for hardened.
func pathStep(step uint32) uint64 {
	if step >= descriptor.HardenedKeyStart {
		return 2*uint64(step-descriptor.HardenedKeyStart) + 1
	}
	return 2 * uint64(step)
}

func stepFromUvarint(v uint64) (uint32, error) {
	if v >= 1<<32 {
		return 0, fmt.Errorf("%w: path element %d out of range",
			ErrMalformedVarint, v)
	}
	step := uint32(v >> 1)
	if v&1 != 0 {
		step += descriptor.HardenedKeyStart
	}
	return step, nil
}

func encodePath(e *encoder, path descriptor.Path) {
	e.uvarint(uint64(len(path)))
	for _, step := range path {
		e.uvarint(pathStep(step))
	}
}

func decodePath(d *decoder) (descriptor.Path, error) {
	n, err := d.uvarint()
	if err != nil {
		return nil, err
	}
	if n > maxPathLen {
		return nil, fmt.Errorf("%w: path length %d out of range",
			ErrMalformedVarint, n)
	}
	var path descriptor.Path
	for i := uint64(0); i < n; i++ {
		v, err := d.uvarint()
		if err != nil {
			return nil, err
		}
		step, err := stepFromUvarint(v)
		if err != nil {
			return nil, err
		}
		path = append(path, step)
	}
	return path, nil
}

var wildcardTags = map[descriptor.Wildcard]Tag{
	descriptor.NoWildcard:         TagNoWildcard,
	descriptor.UnhardenedWildcard: TagUnhardenedWildcard,
	descriptor.HardenedWildcard:   TagHardenedWildcard,
}

func encodeKey(e *encoder, key *descriptor.Key) error {
	if o := key.Origin; o != nil {
		e.tag(TagOrigin)
		e.bytes(o.Fingerprint)
		encodePath(e, o.Path)
	} else {
		e.tag(TagNoOrigin)
	}

	switch kd := key.Data.(type) {
	case *descriptor.SingleFull:
		switch len(kd.Raw) {
		case 33:
			e.tag(TagCompressedFullKey)
		case 65:
			e.tag(TagUncompressedFullKey)
		default:
			return fmt.Errorf("%w: %d-byte public key",
				ErrUnsupportedFragment, len(kd.Raw))
		}
		e.bytes(kd.Raw)

	case *descriptor.XOnly:
		e.tag(TagXOnly)
		e.bytes(kd.Raw)

	case *descriptor.SinglePriv:
		if kd.Compressed {
			e.tag(TagCompressedSinglePriv)
		} else {
			e.tag(TagUncompressedSinglePriv)
		}
		e.bytes(kd.Raw)
		e.bytes([]byte{kd.NetID})

	case *descriptor.Extended:
		multipath := kd.Branches != nil
		switch {
		case kd.Private && multipath:
			e.tag(TagMultiXPriv)
		case kd.Private:
			e.tag(TagXPriv)
		case multipath:
			e.tag(TagMultiXPub)
		default:
			e.tag(TagXPub)
		}
		e.bytes(kd.Raw)
		encodePath(e, kd.Prefix)
		if multipath {
			e.uvarint(uint64(len(kd.Branches)))
			for _, b := range kd.Branches {
				e.uvarint(pathStep(b))
			}
			e.tag(wildcardTags[kd.Wildcard])
			encodePath(e, kd.Suffix)
		} else {
			e.tag(wildcardTags[kd.Wildcard])
		}

	default:
		return fmt.Errorf("%w: unknown key shape",
			ErrUnsupportedFragment)
	}
	return nil
}

func decodeKey(d *decoder, ctx descriptor.Context) (*descriptor.Key,
	error) {

	key := &descriptor.Key{}
	t, err := d.readTag()
	if err != nil {
		return nil, err
	}
	switch t {
	case TagOrigin:
		origin := &descriptor.Origin{}
		d.bytes(4, &origin.Fingerprint)
		path, err := decodePath(d)
		if err != nil {
			return nil, err
		}
		origin.Path = path
		key.Origin = origin
	case TagNoOrigin:
	default:
		return nil, fmt.Errorf("%w: %v in key origin position",
			ErrUnexpectedTag, t)
	}

	t, err = d.readTag()
	if err != nil {
		return nil, err
	}
	switch t {
	case TagCompressedFullKey, TagUncompressedFullKey:
		n := 33
		if t == TagUncompressedFullKey {
			if ctx != descriptor.Legacy {
				return nil, fmt.Errorf("%w: uncompressed "+
					"key in %v context",
					ErrContextViolation, ctx)
			}
			n = 65
		}
		kd := &descriptor.SingleFull{}
		d.bytes(n, &kd.Raw)
		key.Data = kd

	case TagXOnly:
		if ctx != descriptor.Tapscript {
			return nil, fmt.Errorf("%w: x-only key in %v context",
				ErrContextViolation, ctx)
		}
		kd := &descriptor.XOnly{}
		d.bytes(32, &kd.Raw)
		key.Data = kd

	case TagCompressedSinglePriv, TagUncompressedSinglePriv:
		if t == TagUncompressedSinglePriv &&
			ctx != descriptor.Legacy {

			return nil, fmt.Errorf("%w: uncompressed key in %v "+
				"context", ErrContextViolation, ctx)
		}
		kd := &descriptor.SinglePriv{
			Compressed: t == TagCompressedSinglePriv,
		}
		d.bytesFunc(33, func(b []byte) {
			kd.Raw = b[:32]
			kd.NetID = b[32]
		})
		key.Data = kd

	case TagXPub, TagXPriv, TagMultiXPub, TagMultiXPriv:
		kd := &descriptor.Extended{
			Private: t == TagXPriv || t == TagMultiXPriv,
		}
		d.bytes(78, &kd.Raw)
		prefix, err := decodePath(d)
		if err != nil {
			return nil, err
		}
		kd.Prefix = prefix
		if t == TagMultiXPub || t == TagMultiXPriv {
			m, err := d.uvarint()
			if err != nil {
				return nil, err
			}
			if m < 2 || m > maxPathLen {
				return nil, fmt.Errorf("%w: multipath "+
					"branch count %d out of range",
					ErrMalformedVarint, m)
			}
			for i := uint64(0); i < m; i++ {
				v, err := d.uvarint()
				if err != nil {
					return nil, err
				}
				step, err := stepFromUvarint(v)
				if err != nil {
					return nil, err
				}
				kd.Branches = append(kd.Branches, step)
			}
			wildcard, err := decodeWildcard(d)
			if err != nil {
				return nil, err
			}
			kd.Wildcard = wildcard
			suffix, err := decodePath(d)
			if err != nil {
				return nil, err
			}
			kd.Suffix = suffix
		} else {
			wildcard, err := decodeWildcard(d)
			if err != nil {
				return nil, err
			}
			kd.Wildcard = wildcard
		}
		key.Data = kd

	default:
		return nil, fmt.Errorf("%w: %v in key position",
			ErrUnexpectedTag, t)
	}
	return key, nil
}

func decodeWildcard(d *decoder) (descriptor.Wildcard, error) {
	t, err := d.readTag()
	if err != nil {
		return 0, err
	}
	switch t {
	case TagNoWildcard:
		return descriptor.NoWildcard, nil
	case TagUnhardenedWildcard:
		return descriptor.UnhardenedWildcard, nil
	case TagHardenedWildcard:
		return descriptor.HardenedWildcard, nil
	default:
		return 0, fmt.Errorf("%w: %v in wildcard position",
			ErrUnexpectedTag, t)
	}
}
