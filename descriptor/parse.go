package descriptor

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// maxRecursionDepth bounds the nesting of parsed expressions so
// adversarial input cannot exhaust the stack.
const maxRecursionDepth = 256

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return fmt.Errorf("descriptor: expected %q at offset %d",
			string(c), p.pos)
	}
	p.advance()
	return nil
}

// ident consumes a run of lower-case letters, digits and underscores.
func (p *parser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' {
			p.advance()
			continue
		}
		break
	}
	return p.s[start:p.pos]
}

// until consumes characters up to, but excluding, the next occurrence of
// one of the stop characters.
func (p *parser) until(stop string) string {
	start := p.pos
	for !p.eof() && strings.IndexByte(stop, p.peek()) < 0 {
		p.advance()
	}
	return p.s[start:p.pos]
}

func (p *parser) number() (uint64, error) {
	raw := p.until(",)}")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("descriptor: invalid number %q", raw)
	}
	return n, nil
}

func (p *parser) hashArg(size int) ([]byte, error) {
	raw := p.until(",)}")
	h, err := hex.DecodeString(raw)
	if err != nil || len(h) != size {
		return nil, fmt.Errorf("descriptor: expected %d hex bytes, "+
			"got %q", size, raw)
	}
	return h, nil
}

func (p *parser) keyArg(ctx Context) (*Key, error) {
	return ParseKey(p.until(",)}"), ctx)
}

const (
	wrapperChars = "ascdvjn"
	sugarChars   = "tlu"
)

// miniscript parses one expression, including an optional wrapper group.
func (p *parser) miniscript(ctx Context, depth int) (*Miniscript, error) {
	if depth > maxRecursionDepth {
		return nil, fmt.Errorf("descriptor: maximum recursion depth " +
			"exceeded")
	}
	name := p.ident()
	if name == "" {
		return nil, fmt.Errorf("descriptor: expected expression at "+
			"offset %d", p.pos)
	}
	if p.peek() != ':' {
		return p.fragment(name, ctx, depth)
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		if strings.IndexByte(wrapperChars, c) < 0 &&
			strings.IndexByte(sugarChars, c) < 0 {

			return nil, fmt.Errorf("descriptor: unknown wrapper "+
				"%q", string(c))
		}
	}
	p.advance()
	inner := p.ident()
	if inner == "" || p.peek() == ':' {
		return nil, fmt.Errorf("descriptor: expected fragment after "+
			"wrappers %q", name)
	}
	node, err := p.fragment(inner, ctx, depth+1)
	if err != nil {
		return nil, err
	}

	// Apply wrappers innermost first. The sugar wrappers expand to
	// their canonical forms: t:X = and_v(X,1), l:X = or_i(0,X),
	// u:X = or_i(X,0).
	for i := len(name) - 1; i >= 0; i-- {
		switch name[i] {
		case 't':
			node = &Miniscript{
				Kind: AndV,
				Subs: []*Miniscript{node, {Kind: True}},
			}
		case 'l':
			node = &Miniscript{
				Kind: OrI,
				Subs: []*Miniscript{{Kind: False}, node},
			}
		case 'u':
			node = &Miniscript{
				Kind: OrI,
				Subs: []*Miniscript{node, {Kind: False}},
			}
		default:
			node.Wrappers = append(
				[]Wrapper{Wrapper(name[i])}, node.Wrappers...,
			)
		}
	}
	return node, nil
}

func (p *parser) fragment(name string, ctx Context,
	depth int) (*Miniscript, error) {

	switch name {
	case "0":
		return &Miniscript{Kind: False}, nil
	case "1":
		return &Miniscript{Kind: True}, nil
	}
	if err := p.expect('('); err != nil {
		return nil, fmt.Errorf("descriptor: unknown fragment %q",
			name)
	}

	node := &Miniscript{}
	switch name {
	case "pk", "pkh", "pk_k", "pk_h":
		key, err := p.keyArg(ctx)
		if err != nil {
			return nil, err
		}
		node.Key = key
		switch name {
		case "pk":
			node.Kind, node.Wrappers = PkK, []Wrapper{WrapCheck}
		case "pkh":
			node.Kind, node.Wrappers = PkH, []Wrapper{WrapCheck}
		case "pk_k":
			node.Kind = PkK
		case "pk_h":
			node.Kind = PkH
		}

	case "raw_pkh":
		h, err := p.hashArg(20)
		if err != nil {
			return nil, err
		}
		node.Kind, node.Hash = RawPkH, h

	case "after", "older":
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if n < 1 || n > 0x7fffffff {
			return nil, fmt.Errorf("descriptor: locktime %d out "+
				"of range", n)
		}
		node.Value = n
		if name == "after" {
			node.Kind = After
		} else {
			node.Kind = Older
		}

	case "sha256", "hash256", "ripemd160", "hash160":
		size := 32
		if name == "ripemd160" || name == "hash160" {
			size = 20
		}
		h, err := p.hashArg(size)
		if err != nil {
			return nil, err
		}
		node.Hash = h
		switch name {
		case "sha256":
			node.Kind = Sha256
		case "hash256":
			node.Kind = Hash256
		case "ripemd160":
			node.Kind = Ripemd160
		case "hash160":
			node.Kind = Hash160
		}

	case "and_v", "and_b", "and_n", "or_b", "or_c", "or_d", "or_i":
		x, err := p.miniscript(ctx, depth+1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		y, err := p.miniscript(ctx, depth+1)
		if err != nil {
			return nil, err
		}
		node.Subs = []*Miniscript{x, y}
		switch name {
		case "and_v":
			node.Kind = AndV
		case "and_b":
			node.Kind = AndB
		case "and_n":
			// and_n(X,Y) = andor(X,Y,0).
			node.Kind = AndOr
			node.Subs = append(node.Subs, &Miniscript{Kind: False})
		case "or_b":
			node.Kind = OrB
		case "or_c":
			node.Kind = OrC
		case "or_d":
			node.Kind = OrD
		case "or_i":
			node.Kind = OrI
		}

	case "andor":
		node.Kind = AndOr
		for i := 0; i < 3; i++ {
			if i > 0 {
				if err := p.expect(','); err != nil {
					return nil, err
				}
			}
			sub, err := p.miniscript(ctx, depth+1)
			if err != nil {
				return nil, err
			}
			node.Subs = append(node.Subs, sub)
		}

	case "thresh":
		node.Kind = Thresh
		k, err := p.number()
		if err != nil {
			return nil, err
		}
		for p.peek() == ',' {
			p.advance()
			sub, err := p.miniscript(ctx, depth+1)
			if err != nil {
				return nil, err
			}
			node.Subs = append(node.Subs, sub)
		}
		if k < 1 || k > uint64(len(node.Subs)) {
			return nil, fmt.Errorf("descriptor: threshold %d out "+
				"of range for %d subexpressions", k,
				len(node.Subs))
		}
		node.K = uint32(k)

	case "multi", "multi_a":
		if name == "multi" && ctx == Tapscript {
			return nil, fmt.Errorf("descriptor: multi is not " +
				"available in taproot scripts")
		}
		if name == "multi_a" && ctx != Tapscript {
			return nil, fmt.Errorf("descriptor: multi_a is only " +
				"available in taproot scripts")
		}
		if name == "multi" {
			node.Kind = Multi
		} else {
			node.Kind = MultiA
		}
		k, err := p.number()
		if err != nil {
			return nil, err
		}
		for p.peek() == ',' {
			p.advance()
			key, err := p.keyArg(ctx)
			if err != nil {
				return nil, err
			}
			node.Keys = append(node.Keys, key)
		}
		if k < 1 || k > uint64(len(node.Keys)) {
			return nil, fmt.Errorf("descriptor: threshold %d out "+
				"of range for %d keys", k, len(node.Keys))
		}
		if node.Kind == Multi && len(node.Keys) > 20 {
			return nil, fmt.Errorf("descriptor: multi supports "+
				"at most 20 keys, got %d", len(node.Keys))
		}
		node.K = uint32(k)

	default:
		return nil, fmt.Errorf("descriptor: unknown fragment %q",
			name)
	}

	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return node, nil
}
