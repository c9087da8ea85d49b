package types

import "fmt"

// Engine is the analyzer's layout engine (spec.md §4.1): it owns the
// platform parameters (pointer size, canonical integer width) that pure
// type-algebra functions like Convert/Equals don't need, and it
// performs the idempotent, flag-gated layout computation for
// aggregates.
//
// Grounded on the teacher's InferenceContext pattern (internal/types):
// a small context struct threading configuration through otherwise
// stateless type operations, constructed once per compilation and
// reused across every CheckType call.
type Engine struct {
	PointerSize int64 // bytes
	IntegerSize int64 // bytes, canonical `integer` primitive
	Signed      bool  // canonical `integer` primitive's signedness
}

// NewEngine builds an Engine from analyzer configuration (internal/config).
func NewEngine(pointerSize, integerSize int64, signed bool) *Engine {
	return &Engine{PointerSize: pointerSize, IntegerSize: integerSize, Signed: signed}
}

// CanonicalInteger returns the Primitive for the platform's `integer` type.
func (e *Engine) CanonicalInteger() *Primitive {
	return &Primitive{Kind: IntegerCanonical, ByteSize: e.IntegerSize, Signed: e.Signed}
}

// SizeOf returns the byte size of t, computing and caching aggregate
// layouts as needed. It errors if t is incomplete (spec.md §4.1: "size
// of an incomplete type is an error, not zero").
func (e *Engine) SizeOf(t Type) (int64, error) {
	if err := e.CheckType(t); err != nil {
		return 0, err
	}
	if !IsComplete(t) {
		return 0, fmt.Errorf("size of incomplete type %s", t.String())
	}
	switch v := Canonicalize(t).(type) {
	case *Primitive:
		switch v.Kind {
		case Void:
			return 0, nil
		case Byte:
			return 1, nil
		case IntegerCanonical:
			return e.IntegerSize, nil
		default:
			return 0, fmt.Errorf("size of %s is undefined", t.String())
		}
	case *Integer:
		return bitsToBytes(v.Bits), nil
	case *Pointer:
		return e.PointerSize, nil
	case *Reference:
		return e.SizeOf(v.Referent)
	case *Array:
		elemSize, err := e.SizeOf(v.Elem)
		if err != nil {
			return 0, err
		}
		return elemSize * v.Count, nil
	case *Struct:
		return v.Size, nil
	case *Function:
		return 0, fmt.Errorf("function types have no size")
	default:
		return 0, fmt.Errorf("size of %s is undefined", t.String())
	}
}

// AlignOf returns the byte alignment of t (spec.md §4.1: "alignment of
// a scalar equals its size, capped by nothing; alignment of an
// aggregate is the max of its members' alignment unless pre-set").
func (e *Engine) AlignOf(t Type) (int64, error) {
	if err := e.CheckType(t); err != nil {
		return 0, err
	}
	switch v := Canonicalize(t).(type) {
	case *Struct:
		if v.PresetAlign != 0 {
			return v.PresetAlign, nil
		}
		return v.Align, nil
	case *Array:
		return e.AlignOf(v.Elem)
	case *Reference:
		return e.AlignOf(v.Referent)
	default:
		return e.SizeOf(t)
	}
}

// CheckType runs the idempotent layout/validity pass over t (spec.md
// §4.1): rejects Integer variants outside 1..=64 bits (reported via
// UNI001 by the caller, not here — this function returns a plain error
// for internal/check to translate into a diagnostic), rejects
// zero-element arrays, and computes Struct member offsets/size/align.
// Each variant's own `checked` flag makes repeat calls on an
// already-checked type a no-op, matching spec.md's "the layout engine
// must not redo work" invariant.
func (e *Engine) CheckType(t Type) error {
	switch v := t.(type) {
	case *Integer:
		if v.checked {
			return nil
		}
		if v.Bits < 1 || v.Bits > 64 {
			return fmt.Errorf("integer width %d out of range 1..=64", v.Bits)
		}
		v.checked = true
		return nil
	case *Array:
		if v.checked {
			return nil
		}
		if v.Count <= 0 {
			return fmt.Errorf("array of zero or negative size")
		}
		if err := e.CheckType(v.Elem); err != nil {
			return err
		}
		v.checked = true
		return nil
	case *Function:
		if v.checked {
			return nil
		}
		if err := v.Attrs.Validate(); err != nil {
			return err
		}
		for _, p := range v.Params {
			if err := e.CheckType(p.Type); err != nil {
				return err
			}
		}
		if err := e.CheckType(v.Return); err != nil {
			return err
		}
		v.checked = true
		return nil
	case *Struct:
		return e.checkStruct(v)
	case *Pointer:
		return e.CheckType(v.Elem)
	case *Reference:
		return e.CheckType(v.Referent)
	case *Named:
		if v.Target == nil || v.checking {
			return nil
		}
		v.checking = true
		defer func() { v.checking = false }()
		return e.CheckType(v.Target)
	default:
		return nil
	}
}

func (e *Engine) checkStruct(s *Struct) error {
	if s.checked || s.checking {
		// s.checking means this exact Struct is already mid-layout
		// further up the call stack (reached again through a pointer
		// member, spec.md §5/§9's self-referential-alias fence): the
		// re-entrant call short-circuits rather than recursing forever,
		// and the outer call still finishes the computation and sets
		// checked.
		return nil
	}
	if !s.membersTypechecked {
		// Incomplete: not an error by itself, just nothing to compute yet.
		return nil
	}
	s.checking = true
	defer func() { s.checking = false }()
	var offset int64
	var maxAlign int64 = 1
	for i := range s.Members {
		m := &s.Members[i]
		if err := e.CheckType(m.Type); err != nil {
			return fmt.Errorf("member %s: %w", m.Name, err)
		}
		align, err := e.AlignOf(m.Type)
		if err != nil {
			return err
		}
		size, err := e.SizeOf(m.Type)
		if err != nil {
			return err
		}
		offset = alignUp(offset, align)
		m.Offset = offset
		offset += size
		if align > maxAlign {
			maxAlign = align
		}
	}
	structAlign := maxAlign
	if s.PresetAlign != 0 {
		structAlign = s.PresetAlign
	}
	s.Size = alignUp(offset, structAlign)
	s.Align = maxAlign
	s.checked = true
	return nil
}

func alignUp(offset, align int64) int64 {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

func bitsToBytes(bits int) int64 {
	return int64((bits + 7) / 8)
}
