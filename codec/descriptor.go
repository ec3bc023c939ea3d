package codec

import (
	"fmt"

	"github.com/joshdoman/descriptor-codec/descriptor"
)

func encodeDescriptor(e *encoder, d *descriptor.Descriptor) error {
	switch d.Kind {
	case descriptor.KindPkh:
		e.tag(TagPkh)
		return encodeKey(e, d.Key)

	case descriptor.KindWpkh:
		e.tag(TagWpkh)
		return encodeKey(e, d.Key)

	case descriptor.KindSh:
		e.tag(TagSh)
		switch {
		case d.Nested != nil &&
			d.Nested.Kind == descriptor.KindWsh:

			e.tag(TagWsh)
			return encodeWshBody(e, d.Nested)

		case d.Nested != nil &&
			d.Nested.Kind == descriptor.KindWpkh:

			e.tag(TagWpkh)
			return encodeKey(e, d.Nested.Key)

		case d.Sorted != nil:
			return encodeSortedMulti(e, d.Sorted)

		default:
			return encodeMiniscript(
				e, d.Script, descriptor.Legacy, 0,
			)
		}

	case descriptor.KindWsh:
		e.tag(TagWsh)
		return encodeWshBody(e, d)

	case descriptor.KindTr:
		e.tag(TagTr)
		if err := encodeKey(e, d.Key); err != nil {
			return err
		}
		if d.Tree == nil {
			e.tag(TagFalse)
			return nil
		}
		if d.Tree.Leaf != nil && d.Tree.Leaf.Kind == descriptor.False &&
			len(d.Tree.Leaf.Wrappers) == 0 {

			// A lone false leaf is indistinguishable from the
			// absent-tree marker.
			return fmt.Errorf("%w: single false tap leaf",
				ErrUnsupportedFragment)
		}
		return encodeTapTree(e, d.Tree, 0)

	case descriptor.KindBare:
		e.tag(TagBare)
		return encodeMiniscript(e, d.Script, descriptor.Legacy, 0)

	default:
		return fmt.Errorf("%w: descriptor kind %d",
			ErrUnsupportedFragment, d.Kind)
	}
}

func encodeWshBody(e *encoder, d *descriptor.Descriptor) error {
	if d.Sorted != nil {
		return encodeSortedMulti(e, d.Sorted)
	}
	return encodeMiniscript(e, d.Script, descriptor.SegwitV0, 0)
}

func encodeSortedMulti(e *encoder, sm *descriptor.SortedMulti) error {
	e.tag(TagSortedMulti)
	e.uvarint(uint64(sm.K))
	e.uvarint(uint64(len(sm.Keys)))
	for _, key := range sm.Keys {
		if err := encodeKey(e, key); err != nil {
			return err
		}
	}
	return nil
}

func encodeTapTree(e *encoder, t *descriptor.TapTree, depth int) error {
	if depth > MaxRecursionDepth {
		return ErrDepthExceeded
	}
	if t.Leaf != nil {
		return encodeMiniscript(
			e, t.Leaf, descriptor.Tapscript, depth,
		)
	}
	e.tag(TagTapTree)
	if err := encodeTapTree(e, t.Left, depth+1); err != nil {
		return err
	}
	return encodeTapTree(e, t.Right, depth+1)
}

func decodeDescriptor(d *decoder) (*descriptor.Descriptor, error) {
	t, err := d.readTag()
	if err != nil {
		return nil, err
	}
	switch t {
	case TagPkh, TagWpkh:
		kind, ctx := descriptor.KindPkh, descriptor.Legacy
		if t == TagWpkh {
			kind, ctx = descriptor.KindWpkh, descriptor.SegwitV0
		}
		key, err := decodeKey(d, ctx)
		if err != nil {
			return nil, err
		}
		return &descriptor.Descriptor{Kind: kind, Key: key}, nil

	case TagSh:
		inner, err := d.peekTag()
		if err != nil {
			return nil, err
		}
		switch inner {
		case TagWsh:
			d.pos++
			body, err := decodeWshBody(d)
			if err != nil {
				return nil, err
			}
			return &descriptor.Descriptor{
				Kind:   descriptor.KindSh,
				Nested: body,
			}, nil

		case TagWpkh:
			d.pos++
			key, err := decodeKey(d, descriptor.SegwitV0)
			if err != nil {
				return nil, err
			}
			return &descriptor.Descriptor{
				Kind: descriptor.KindSh,
				Nested: &descriptor.Descriptor{
					Kind: descriptor.KindWpkh,
					Key:  key,
				},
			}, nil

		case TagSortedMulti:
			d.pos++
			sm, err := decodeSortedMulti(d, descriptor.Legacy)
			if err != nil {
				return nil, err
			}
			return &descriptor.Descriptor{
				Kind:   descriptor.KindSh,
				Sorted: sm,
			}, nil

		default:
			m, err := decodeMiniscript(d, descriptor.Legacy, 0)
			if err != nil {
				return nil, err
			}
			return &descriptor.Descriptor{
				Kind:   descriptor.KindSh,
				Script: m,
			}, nil
		}

	case TagWsh:
		return decodeWshBody(d)

	case TagTr:
		key, err := decodeKey(d, descriptor.Tapscript)
		if err != nil {
			return nil, err
		}
		desc := &descriptor.Descriptor{
			Kind: descriptor.KindTr,
			Key:  key,
		}
		next, err := d.peekTag()
		if err != nil {
			return nil, err
		}
		if next == TagFalse {
			d.pos++
			return desc, nil
		}
		tree, err := decodeTapTree(d, 0)
		if err != nil {
			return nil, err
		}
		desc.Tree = tree
		return desc, nil

	case TagBare:
		m, err := decodeMiniscript(d, descriptor.Legacy, 0)
		if err != nil {
			return nil, err
		}
		return &descriptor.Descriptor{
			Kind:   descriptor.KindBare,
			Script: m,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %v at descriptor top level",
			ErrUnexpectedTag, t)
	}
}

func decodeWshBody(d *decoder) (*descriptor.Descriptor, error) {
	inner, err := d.peekTag()
	if err != nil {
		return nil, err
	}
	if inner == TagSortedMulti {
		d.pos++
		sm, err := decodeSortedMulti(d, descriptor.SegwitV0)
		if err != nil {
			return nil, err
		}
		return &descriptor.Descriptor{
			Kind:   descriptor.KindWsh,
			Sorted: sm,
		}, nil
	}
	m, err := decodeMiniscript(d, descriptor.SegwitV0, 0)
	if err != nil {
		return nil, err
	}
	return &descriptor.Descriptor{
		Kind:   descriptor.KindWsh,
		Script: m,
	}, nil
}

func decodeSortedMulti(d *decoder,
	ctx descriptor.Context) (*descriptor.SortedMulti, error) {

	k, n, err := decodeThreshold(d, 20)
	if err != nil {
		return nil, err
	}
	sm := &descriptor.SortedMulti{K: k}
	for i := uint64(0); i < n; i++ {
		key, err := decodeKey(d, ctx)
		if err != nil {
			return nil, err
		}
		sm.Keys = append(sm.Keys, key)
	}
	return sm, nil
}

func decodeTapTree(d *decoder, depth int) (*descriptor.TapTree, error) {
	if depth > MaxRecursionDepth {
		return nil, ErrDepthExceeded
	}
	next, err := d.peekTag()
	if err != nil {
		return nil, err
	}
	if next != TagTapTree {
		leaf, err := decodeMiniscript(d, descriptor.Tapscript, depth)
		if err != nil {
			return nil, err
		}
		return &descriptor.TapTree{Leaf: leaf}, nil
	}
	d.pos++
	left, err := decodeTapTree(d, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := decodeTapTree(d, depth+1)
	if err != nil {
		return nil, err
	}
	return &descriptor.TapTree{Left: left, Right: right}, nil
}
