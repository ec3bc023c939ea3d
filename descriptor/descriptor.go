// Package descriptor implements parsing and printing of bitcoin output
// descriptors as described in [BIP380], including the miniscript
// expression language and taproot script trees.
//
// [BIP380]: https://bips.dev/380/
package descriptor

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the outermost shape of a descriptor.
type Kind int

const (
	KindBare Kind = iota
	KindPkh
	KindWpkh
	KindSh
	KindWsh
	KindTr
)

// SortedMulti is the descriptor-level sortedmulti(k,keys...) construct.
type SortedMulti struct {
	K    uint32
	Keys []*Key
}

// TapTree is a node of a taproot script tree: either an internal branch
// with two children, or a leaf holding a tapscript miniscript.
type TapTree struct {
	Left, Right *TapTree
	Leaf        *Miniscript
}

// Descriptor is a parsed output descriptor. Exactly one of Key, Script,
// Sorted and Nested is set depending on Kind; Tree is the optional
// script tree of a tr() descriptor.
type Descriptor struct {
	Kind   Kind
	Key    *Key         // pkh, wpkh and the tr internal key
	Script *Miniscript  // miniscript body of bare, sh and wsh
	Sorted *SortedMulti // sortedmulti body of sh and wsh
	Nested *Descriptor  // the wsh or wpkh inside sh(...)
	Tree   *TapTree     // tr script tree, nil if absent
}

// Parse parses a textual output descriptor. A trailing #checksum is
// verified and stripped; a descriptor without one is accepted.
func Parse(desc string) (*Descriptor, error) {
	s := desc
	if i := strings.LastIndexByte(s, '#'); i >= 0 {
		if !validChecksum(s[:i], s[i+1:]) {
			return nil, fmt.Errorf("descriptor: invalid checksum "+
				"%q", s[i+1:])
		}
		s = s[:i]
	}
	p := &parser{s: s}
	d, err := p.descriptor()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("descriptor: unexpected %q at offset "+
			"%d", string(p.peek()), p.pos)
	}
	return d, nil
}

func (p *parser) descriptor() (*Descriptor, error) {
	start := p.pos
	name := p.ident()
	if p.peek() != '(' {
		name = ""
	}
	switch name {
	case "pkh", "wpkh":
		ctx := Legacy
		kind := KindPkh
		if name == "wpkh" {
			ctx, kind = SegwitV0, KindWpkh
		}
		p.advance()
		key, err := p.keyArg(ctx)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Descriptor{Kind: kind, Key: key}, nil

	case "sh":
		p.advance()
		d, err := p.shBody()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return d, nil

	case "wsh":
		p.advance()
		d, err := p.wshBody()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return d, nil

	case "tr":
		p.advance()
		d, err := p.trBody()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return d, nil

	default:
		p.pos = start
		m, err := p.miniscript(Legacy, 0)
		if err != nil {
			return nil, err
		}
		if err := m.checkTopLevel(); err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindBare, Script: m}, nil
	}
}

func (p *parser) shBody() (*Descriptor, error) {
	start := p.pos
	name := p.ident()
	if p.peek() != '(' {
		name = ""
	}
	switch name {
	case "wsh":
		p.advance()
		inner, err := p.wshBody()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindSh, Nested: inner}, nil

	case "wpkh":
		p.advance()
		key, err := p.keyArg(SegwitV0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Descriptor{
			Kind:   KindSh,
			Nested: &Descriptor{Kind: KindWpkh, Key: key},
		}, nil

	case "sortedmulti":
		p.advance()
		sm, err := p.sortedMulti(Legacy)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindSh, Sorted: sm}, nil

	default:
		p.pos = start
		m, err := p.miniscript(Legacy, 0)
		if err != nil {
			return nil, err
		}
		if err := m.checkTopLevel(); err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindSh, Script: m}, nil
	}
}

func (p *parser) wshBody() (*Descriptor, error) {
	start := p.pos
	name := p.ident()
	if p.peek() != '(' {
		name = ""
	}
	if name == "sortedmulti" {
		p.advance()
		sm, err := p.sortedMulti(SegwitV0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindWsh, Sorted: sm}, nil
	}
	p.pos = start
	m, err := p.miniscript(SegwitV0, 0)
	if err != nil {
		return nil, err
	}
	if err := m.checkTopLevel(); err != nil {
		return nil, err
	}
	return &Descriptor{Kind: KindWsh, Script: m}, nil
}

func (p *parser) trBody() (*Descriptor, error) {
	key, err := p.keyArg(Tapscript)
	if err != nil {
		return nil, err
	}
	d := &Descriptor{Kind: KindTr, Key: key}
	if p.peek() != ',' {
		return d, nil
	}
	p.advance()
	tree, err := p.tapTree(0)
	if err != nil {
		return nil, err
	}
	d.Tree = tree
	return d, nil
}

func (p *parser) tapTree(depth int) (*TapTree, error) {
	if depth > maxRecursionDepth {
		return nil, fmt.Errorf("descriptor: maximum recursion depth " +
			"exceeded")
	}
	if p.peek() != '{' {
		m, err := p.miniscript(Tapscript, depth)
		if err != nil {
			return nil, err
		}
		if err := m.checkTopLevel(); err != nil {
			return nil, err
		}
		return &TapTree{Leaf: m}, nil
	}
	p.advance()
	left, err := p.tapTree(depth + 1)
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	right, err := p.tapTree(depth + 1)
	if err != nil {
		return nil, err
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return &TapTree{Left: left, Right: right}, nil
}

func (p *parser) sortedMulti(ctx Context) (*SortedMulti, error) {
	k, err := p.number()
	if err != nil {
		return nil, err
	}
	sm := &SortedMulti{}
	for p.peek() == ',' {
		p.advance()
		key, err := p.keyArg(ctx)
		if err != nil {
			return nil, err
		}
		sm.Keys = append(sm.Keys, key)
	}
	if k < 1 || k > uint64(len(sm.Keys)) {
		return nil, fmt.Errorf("descriptor: threshold %d out of "+
			"range for %d keys", k, len(sm.Keys))
	}
	if len(sm.Keys) > 20 {
		return nil, fmt.Errorf("descriptor: sortedmulti supports at "+
			"most 20 keys, got %d", len(sm.Keys))
	}
	sm.K = uint32(k)
	return sm, nil
}

// String encodes the descriptor without a checksum suffix.
func (d *Descriptor) String() string {
	var sb strings.Builder
	d.write(&sb)
	return sb.String()
}

// Encode encodes the descriptor with a freshly derived checksum.
func (d *Descriptor) Encode() (string, error) {
	body := d.String()
	sum, err := Checksum(body)
	if err != nil {
		return "", err
	}
	return body + "#" + sum, nil
}

func (d *Descriptor) write(sb *strings.Builder) {
	switch d.Kind {
	case KindBare:
		d.Script.write(sb)

	case KindPkh, KindWpkh:
		if d.Kind == KindPkh {
			sb.WriteString("pkh(")
		} else {
			sb.WriteString("wpkh(")
		}
		sb.WriteString(d.Key.String())
		sb.WriteByte(')')

	case KindSh, KindWsh:
		if d.Kind == KindSh {
			sb.WriteString("sh(")
		} else {
			sb.WriteString("wsh(")
		}
		switch {
		case d.Nested != nil:
			d.Nested.write(sb)
		case d.Sorted != nil:
			d.Sorted.write(sb)
		default:
			d.Script.write(sb)
		}
		sb.WriteByte(')')

	case KindTr:
		sb.WriteString("tr(")
		sb.WriteString(d.Key.String())
		if d.Tree != nil {
			sb.WriteByte(',')
			d.Tree.write(sb)
		}
		sb.WriteByte(')')
	}
}

func (sm *SortedMulti) write(sb *strings.Builder) {
	sb.WriteString("sortedmulti(")
	sb.WriteString(strconv.FormatUint(uint64(sm.K), 10))
	for _, key := range sm.Keys {
		sb.WriteByte(',')
		sb.WriteString(key.String())
	}
	sb.WriteByte(')')
}

func (t *TapTree) write(sb *strings.Builder) {
	if t.Leaf != nil {
		t.Leaf.write(sb)
		return
	}
	sb.WriteByte('{')
	t.Left.write(sb)
	sb.WriteByte(',')
	t.Right.write(sb)
	sb.WriteByte('}')
}
