package descriptor

import "fmt"

// Miniscript expressions have one of four correctness types: B (base), V
// (verify), K (key) and W (wrapped). The checker below implements the
// base type table; malleability and resource properties are not tracked.
type baseType int

const (
	typeB baseType = iota
	typeV
	typeK
	typeW
)

func (t baseType) String() string {
	return [...]string{"B", "V", "K", "W"}[t]
}

// checkTopLevel verifies that the expression is a well-typed script of
// type B, the only type valid at the top of a script.
func (m *Miniscript) checkTopLevel() error {
	t, err := m.typeOf()
	if err != nil {
		return err
	}
	if t != typeB {
		return fmt.Errorf("descriptor: top-level expression has "+
			"type %v, expected B", t)
	}
	return nil
}

func (m *Miniscript) typeOf() (baseType, error) {
	t, err := m.fragmentType()
	if err != nil {
		return 0, err
	}
	for i := len(m.Wrappers) - 1; i >= 0; i-- {
		w := m.Wrappers[i]
		from, to, ok := wrapperType(w)
		if !ok {
			return 0, fmt.Errorf("descriptor: unknown wrapper "+
				"%q", string(w))
		}
		if t != from {
			return 0, fmt.Errorf("descriptor: wrapper %q "+
				"applied to type %v, expected %v", string(w),
				t, from)
		}
		t = to
	}
	return t, nil
}

func wrapperType(w Wrapper) (from, to baseType, ok bool) {
	switch w {
	case WrapAlt, WrapSwap:
		return typeB, typeW, true
	case WrapCheck:
		return typeK, typeB, true
	case WrapDupIf:
		return typeV, typeB, true
	case WrapVerify:
		return typeB, typeV, true
	case WrapNonZero, WrapZeroNotEqual:
		return typeB, typeB, true
	default:
		return 0, 0, false
	}
}

func (m *Miniscript) fragmentType() (baseType, error) {
	sub := func(i int) (baseType, error) {
		return m.Subs[i].typeOf()
	}
	need := func(i int, want baseType) error {
		t, err := sub(i)
		if err != nil {
			return err
		}
		if t != want {
			return fmt.Errorf("descriptor: argument %d of %s "+
				"has type %v, expected %v", i+1,
				m.fragmentName(), t, want)
		}
		return nil
	}

	switch m.Kind {
	case False, True, After, Older, Sha256, Hash256, Ripemd160, Hash160,
		Multi, MultiA:

		return typeB, nil

	case PkK, PkH, RawPkH:
		return typeK, nil

	case AndV:
		if err := need(0, typeV); err != nil {
			return 0, err
		}
		t, err := sub(1)
		if err != nil {
			return 0, err
		}
		if t == typeW {
			return 0, fmt.Errorf("descriptor: second argument " +
				"of and_v cannot have type W")
		}
		return t, nil

	case AndB, OrB:
		if err := need(0, typeB); err != nil {
			return 0, err
		}
		if err := need(1, typeW); err != nil {
			return 0, err
		}
		return typeB, nil

	case AndOr:
		if err := need(0, typeB); err != nil {
			return 0, err
		}
		ty, err := sub(1)
		if err != nil {
			return 0, err
		}
		if ty == typeW {
			return 0, fmt.Errorf("descriptor: branches of andor " +
				"cannot have type W")
		}
		if err := need(2, ty); err != nil {
			return 0, err
		}
		return ty, nil

	case OrC:
		if err := need(0, typeB); err != nil {
			return 0, err
		}
		if err := need(1, typeV); err != nil {
			return 0, err
		}
		return typeV, nil

	case OrD:
		if err := need(0, typeB); err != nil {
			return 0, err
		}
		if err := need(1, typeB); err != nil {
			return 0, err
		}
		return typeB, nil

	case OrI:
		tx, err := sub(0)
		if err != nil {
			return 0, err
		}
		if tx == typeW {
			return 0, fmt.Errorf("descriptor: branches of or_i " +
				"cannot have type W")
		}
		if err := need(1, tx); err != nil {
			return 0, err
		}
		return tx, nil

	case Thresh:
		if err := need(0, typeB); err != nil {
			return 0, err
		}
		for i := 1; i < len(m.Subs); i++ {
			if err := need(i, typeW); err != nil {
				return 0, err
			}
		}
		return typeB, nil

	default:
		return 0, fmt.Errorf("descriptor: unknown fragment kind %d",
			m.Kind)
	}
}

func (m *Miniscript) fragmentName() string {
	names := map[FragmentKind]string{
		False: "0", True: "1", PkK: "pk_k", PkH: "pk_h",
		RawPkH: "raw_pkh", After: "after", Older: "older",
		Sha256: "sha256", Hash256: "hash256", Ripemd160: "ripemd160",
		Hash160: "hash160", AndV: "and_v", AndB: "and_b",
		AndOr: "andor", OrB: "or_b", OrC: "or_c", OrD: "or_d",
		OrI: "or_i", Thresh: "thresh", Multi: "multi",
		MultiA: "multi_a",
	}
	return names[m.Kind]
}
