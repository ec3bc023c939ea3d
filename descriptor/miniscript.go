package descriptor

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Context is the script context a miniscript expression compiles to. It
// is a property of the enclosing descriptor and determines which
// fragments and key shapes are legal.
type Context int

const (
	Legacy Context = iota
	SegwitV0
	Tapscript
)

func (c Context) String() string {
	switch c {
	case Legacy:
		return "legacy"
	case SegwitV0:
		return "segwit-v0"
	case Tapscript:
		return "tapscript"
	default:
		return "unknown"
	}
}

// FragmentKind identifies a miniscript fragment.
type FragmentKind int

const (
	False FragmentKind = iota
	True
	PkK
	PkH
	RawPkH
	After
	Older
	Sha256
	Hash256
	Ripemd160
	Hash160
	AndV
	AndB
	AndOr
	OrB
	OrC
	OrD
	OrI
	Thresh
	Multi
	MultiA
)

// Wrapper is a single-letter miniscript wrapper. The sugar wrappers t, l
// and u are expanded at parse time and never appear here.
type Wrapper byte

const (
	WrapAlt          Wrapper = 'a'
	WrapSwap         Wrapper = 's'
	WrapCheck        Wrapper = 'c'
	WrapDupIf        Wrapper = 'd'
	WrapVerify       Wrapper = 'v'
	WrapNonZero      Wrapper = 'j'
	WrapZeroNotEqual Wrapper = 'n'
)

// Miniscript is a single miniscript node: a fragment with an optional
// chain of wrappers, outermost first.
type Miniscript struct {
	Wrappers []Wrapper
	Kind     FragmentKind
	K        uint32        // threshold of thresh/multi/multi_a
	Value    uint64        // locktime of after/older
	Hash     []byte        // preimage hash, or the raw_pkh key hash
	Key      *Key          // key of pk_k/pk_h
	Keys     []*Key        // keys of multi/multi_a
	Subs     []*Miniscript // subexpressions
}

func (m *Miniscript) String() string {
	var sb strings.Builder
	m.write(&sb)
	return sb.String()
}

// bare reports whether the node is the given fragment with no wrappers,
// used to detect the canonical expansions of the t, l and u sugar forms.
func (m *Miniscript) bare(kind FragmentKind) bool {
	return m.Kind == kind && len(m.Wrappers) == 0
}

func (m *Miniscript) write(sb *strings.Builder) {
	node := m
	var chars []byte
	for {
		for _, w := range node.Wrappers {
			chars = append(chars, byte(w))
		}
		switch {
		case node.Kind == AndV && node.Subs[1].bare(True):
			chars = append(chars, 't')
			node = node.Subs[0]

		case node.Kind == OrI && node.Subs[0].bare(False):
			chars = append(chars, 'l')
			node = node.Subs[1]

		case node.Kind == OrI && node.Subs[1].bare(False):
			chars = append(chars, 'u')
			node = node.Subs[0]

		default:
			node.writeBody(sb, chars)
			return
		}
	}
}

func (m *Miniscript) writeBody(sb *strings.Builder, chars []byte) {
	name := ""
	switch m.Kind {
	case False:
		name = "0"
	case True:
		name = "1"
	case PkK:
		name = "pk_k"
	case PkH:
		name = "pk_h"
	case RawPkH:
		name = "raw_pkh"
	case After:
		name = "after"
	case Older:
		name = "older"
	case Sha256:
		name = "sha256"
	case Hash256:
		name = "hash256"
	case Ripemd160:
		name = "ripemd160"
	case Hash160:
		name = "hash160"
	case AndV:
		name = "and_v"
	case AndB:
		name = "and_b"
	case AndOr:
		name = "andor"
	case OrB:
		name = "or_b"
	case OrC:
		name = "or_c"
	case OrD:
		name = "or_d"
	case OrI:
		name = "or_i"
	case Thresh:
		name = "thresh"
	case Multi:
		name = "multi"
	case MultiA:
		name = "multi_a"
	}

	// pk and pkh are aliases for c:pk_k and c:pk_h.
	if n := len(chars); n > 0 && chars[n-1] == 'c' {
		switch m.Kind {
		case PkK:
			name, chars = "pk", chars[:n-1]
		case PkH:
			name, chars = "pkh", chars[:n-1]
		}
	}
	subs := m.Subs
	if m.Kind == AndOr && m.Subs[2].bare(False) {
		name, subs = "and_n", m.Subs[:2]
	}

	if len(chars) > 0 {
		sb.Write(chars)
		sb.WriteByte(':')
	}
	sb.WriteString(name)
	if m.Kind == False || m.Kind == True {
		return
	}
	sb.WriteByte('(')
	switch m.Kind {
	case PkK, PkH:
		sb.WriteString(m.Key.String())
	case RawPkH, Sha256, Hash256, Ripemd160, Hash160:
		sb.WriteString(hex.EncodeToString(m.Hash))
	case After, Older:
		sb.WriteString(strconv.FormatUint(m.Value, 10))
	case Thresh:
		sb.WriteString(strconv.FormatUint(uint64(m.K), 10))
		for _, sub := range subs {
			sb.WriteByte(',')
			sub.write(sb)
		}
	case Multi, MultiA:
		sb.WriteString(strconv.FormatUint(uint64(m.K), 10))
		for _, key := range m.Keys {
			sb.WriteByte(',')
			sb.WriteString(key.String())
		}
	default:
		for i, sub := range subs {
			if i > 0 {
				sb.WriteByte(',')
			}
			sub.write(sb)
		}
	}
	sb.WriteByte(')')
}
