package codec

import (
	"fmt"

	"github.com/joshdoman/descriptor-codec/descriptor"
)

// maxFragments bounds the element counts of thresh and multi_a so a
// hostile template cannot demand absurd allocations.
const maxFragments = 999999

var wrapperTags = map[descriptor.Wrapper]Tag{
	descriptor.WrapAlt:          TagAlt,
	descriptor.WrapSwap:         TagSwap,
	descriptor.WrapCheck:        TagCheck,
	descriptor.WrapDupIf:        TagDupIf,
	descriptor.WrapVerify:       TagVerify,
	descriptor.WrapNonZero:      TagNonZero,
	descriptor.WrapZeroNotEqual: TagZeroNotEqual,
}

var wrapperFromTag = map[Tag]descriptor.Wrapper{
	TagAlt:          descriptor.WrapAlt,
	TagSwap:         descriptor.WrapSwap,
	TagCheck:        descriptor.WrapCheck,
	TagDupIf:        descriptor.WrapDupIf,
	TagVerify:       descriptor.WrapVerify,
	TagNonZero:      descriptor.WrapNonZero,
	TagZeroNotEqual: descriptor.WrapZeroNotEqual,
}

var fragmentTags = map[descriptor.FragmentKind]Tag{
	descriptor.False:     TagFalse,
	descriptor.True:      TagTrue,
	descriptor.PkK:       TagPkK,
	descriptor.PkH:       TagPkH,
	descriptor.RawPkH:    TagRawPkH,
	descriptor.After:     TagAfter,
	descriptor.Older:     TagOlder,
	descriptor.Sha256:    TagSha256,
	descriptor.Hash256:   TagHash256,
	descriptor.Ripemd160: TagRipemd160,
	descriptor.Hash160:   TagHash160,
	descriptor.AndV:      TagAndV,
	descriptor.AndB:      TagAndB,
	descriptor.AndOr:     TagAndOr,
	descriptor.OrB:       TagOrB,
	descriptor.OrC:       TagOrC,
	descriptor.OrD:       TagOrD,
	descriptor.OrI:       TagOrI,
	descriptor.Thresh:    TagThresh,
	descriptor.Multi:     TagMulti,
	descriptor.MultiA:    TagMultiA,
}

func encodeMiniscript(e *encoder, m *descriptor.Miniscript,
	ctx descriptor.Context, depth int) error {

	if depth > MaxRecursionDepth {
		return ErrDepthExceeded
	}
	for _, w := range m.Wrappers {
		t, ok := wrapperTags[w]
		if !ok {
			return fmt.Errorf("%w: wrapper %q",
				ErrUnsupportedFragment, string(w))
		}
		e.tag(t)
	}
	t, ok := fragmentTags[m.Kind]
	if !ok {
		return fmt.Errorf("%w: fragment kind %d",
			ErrUnsupportedFragment, m.Kind)
	}
	if m.Kind == descriptor.Multi && ctx == descriptor.Tapscript {
		return fmt.Errorf("%w: multi in tapscript",
			ErrContextViolation)
	}
	if m.Kind == descriptor.MultiA && ctx != descriptor.Tapscript {
		return fmt.Errorf("%w: multi_a in %v context",
			ErrContextViolation, ctx)
	}
	e.tag(t)

	switch m.Kind {
	case descriptor.False, descriptor.True:

	case descriptor.PkK, descriptor.PkH:
		return encodeKey(e, m.Key)

	case descriptor.RawPkH, descriptor.Sha256, descriptor.Hash256,
		descriptor.Ripemd160, descriptor.Hash160:

		e.bytes(m.Hash)

	case descriptor.After, descriptor.Older:
		e.uvarint(m.Value)

	case descriptor.Thresh:
		e.uvarint(uint64(m.K))
		e.uvarint(uint64(len(m.Subs)))
		for _, sub := range m.Subs {
			err := encodeMiniscript(e, sub, ctx, depth+1)
			if err != nil {
				return err
			}
		}

	case descriptor.Multi, descriptor.MultiA:
		e.uvarint(uint64(m.K))
		e.uvarint(uint64(len(m.Keys)))
		for _, key := range m.Keys {
			if err := encodeKey(e, key); err != nil {
				return err
			}
		}

	default:
		for _, sub := range m.Subs {
			err := encodeMiniscript(e, sub, ctx, depth+1)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeMiniscript(d *decoder, ctx descriptor.Context,
	depth int) (*descriptor.Miniscript, error) {

	if depth > MaxRecursionDepth {
		return nil, ErrDepthExceeded
	}
	var wrappers []descriptor.Wrapper
	for {
		t, err := d.readTag()
		if err != nil {
			return nil, err
		}
		if t.isWrapper() {
			wrappers = append(wrappers, wrapperFromTag[t])
			continue
		}
		m, err := decodeFragment(d, t, ctx, depth)
		if err != nil {
			return nil, err
		}
		m.Wrappers = wrappers
		return m, nil
	}
}

func decodeFragment(d *decoder, t Tag, ctx descriptor.Context,
	depth int) (*descriptor.Miniscript, error) {

	m := &descriptor.Miniscript{}
	subs := func(n int) error {
		for i := 0; i < n; i++ {
			sub, err := decodeMiniscript(d, ctx, depth+1)
			if err != nil {
				return err
			}
			m.Subs = append(m.Subs, sub)
		}
		return nil
	}

	switch t {
	case TagFalse:
		m.Kind = descriptor.False

	case TagTrue:
		m.Kind = descriptor.True

	case TagPkK, TagPkH:
		if t == TagPkK {
			m.Kind = descriptor.PkK
		} else {
			m.Kind = descriptor.PkH
		}
		key, err := decodeKey(d, ctx)
		if err != nil {
			return nil, err
		}
		m.Key = key

	case TagRawPkH:
		m.Kind = descriptor.RawPkH
		d.bytes(20, &m.Hash)

	case TagAfter, TagOlder:
		if t == TagAfter {
			m.Kind = descriptor.After
		} else {
			m.Kind = descriptor.Older
		}
		v, err := d.uvarint()
		if err != nil {
			return nil, err
		}
		if v < 1 || v > 0x7fffffff {
			return nil, fmt.Errorf("%w: locktime %d out of "+
				"range", ErrMalformedVarint, v)
		}
		m.Value = v

	case TagSha256, TagHash256:
		if t == TagSha256 {
			m.Kind = descriptor.Sha256
		} else {
			m.Kind = descriptor.Hash256
		}
		d.bytes(32, &m.Hash)

	case TagRipemd160, TagHash160:
		if t == TagRipemd160 {
			m.Kind = descriptor.Ripemd160
		} else {
			m.Kind = descriptor.Hash160
		}
		d.bytes(20, &m.Hash)

	case TagAndV, TagAndB, TagOrB, TagOrC, TagOrD, TagOrI:
		switch t {
		case TagAndV:
			m.Kind = descriptor.AndV
		case TagAndB:
			m.Kind = descriptor.AndB
		case TagOrB:
			m.Kind = descriptor.OrB
		case TagOrC:
			m.Kind = descriptor.OrC
		case TagOrD:
			m.Kind = descriptor.OrD
		case TagOrI:
			m.Kind = descriptor.OrI
		}
		if err := subs(2); err != nil {
			return nil, err
		}

	case TagAndOr:
		m.Kind = descriptor.AndOr
		if err := subs(3); err != nil {
			return nil, err
		}

	case TagThresh:
		m.Kind = descriptor.Thresh
		k, n, err := decodeThreshold(d, maxFragments)
		if err != nil {
			return nil, err
		}
		m.K = k
		if err := subs(int(n)); err != nil {
			return nil, err
		}

	case TagMulti, TagMultiA:
		if t == TagMulti {
			if ctx == descriptor.Tapscript {
				return nil, fmt.Errorf("%w: multi in "+
					"tapscript", ErrContextViolation)
			}
			m.Kind = descriptor.Multi
		} else {
			if ctx != descriptor.Tapscript {
				return nil, fmt.Errorf("%w: multi_a in %v "+
					"context", ErrContextViolation, ctx)
			}
			m.Kind = descriptor.MultiA
		}
		maxKeys := uint64(20)
		if t == TagMultiA {
			maxKeys = maxFragments
		}
		k, n, err := decodeThreshold(d, maxKeys)
		if err != nil {
			return nil, err
		}
		m.K = k
		for i := uint64(0); i < n; i++ {
			key, err := decodeKey(d, ctx)
			if err != nil {
				return nil, err
			}
			m.Keys = append(m.Keys, key)
		}

	default:
		return nil, fmt.Errorf("%w: %v in fragment position",
			ErrUnexpectedTag, t)
	}
	return m, nil
}

// decodeThreshold reads the k and n fields of thresh, multi and
// multi_a, enforcing 1 <= k <= n and, when max is nonzero, n <= max.
func decodeThreshold(d *decoder, max uint64) (uint32, uint64, error) {
	k, err := d.uvarint()
	if err != nil {
		return 0, 0, err
	}
	n, err := d.uvarint()
	if err != nil {
		return 0, 0, err
	}
	if k < 1 || k > n {
		return 0, 0, fmt.Errorf("%w: threshold %d out of range for "+
			"%d elements", ErrMalformedVarint, k, n)
	}
	if max > 0 && n > max {
		return 0, 0, fmt.Errorf("%w: %d elements exceeds maximum %d",
			ErrMalformedVarint, n, max)
	}
	return uint32(k), n, nil
}
