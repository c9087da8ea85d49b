package types

// Score is the result of a convertibility check (spec.md §4.1):
// ScoreIdentity means no conversion is needed, ScoreConversion means a
// conversion must be inserted, and ScoreNone means the types are not
// convertible at all.
type Score int

const (
	ScoreNone Score = iota - 1
	ScoreIdentity
	ScoreConversion
)

func (s Score) String() string {
	switch s {
	case ScoreNone:
		return "none"
	case ScoreIdentity:
		return "identity"
	case ScoreConversion:
		return "conversion"
	default:
		return "invalid"
	}
}

// asIntegerLike reports whether t is one of the integer-ish types (the
// Byte/IntegerCanonical Primitive sentinels, or the arbitrary-width
// Integer variant) and returns its bit width and signedness so the
// convertibility rules below can treat them uniformly, per spec.md
// §4.1's "Integer -> Integer" rule which does not distinguish the
// built-in integer/byte primitives from user-written widths.
func asIntegerLike(t Type) (bits int, signed bool, ok bool) {
	switch v := t.(type) {
	case *Integer:
		return v.Bits, v.Signed, true
	case *Primitive:
		switch v.Kind {
		case Byte:
			return 8, false, true
		case IntegerCanonical:
			return int(v.ByteSize) * 8, v.Signed, true
		}
	}
	return 0, false, false
}

// Convert scores the convertibility of an expression of type `from` in
// a context expecting type `to`, implementing the ordered rule list of
// spec.md §4.1 verbatim, evaluated top to bottom:
//
//  1. Any type -> void: ScoreIdentity.
//  2. Both incomplete (unresolved Named aliases): equal by name ->
//     ScoreIdentity, else ScoreNone.
//  3. Canonical equality: ScoreIdentity.
//  4. Function -> Pointer-to-Function of equal pointee, and
//     symmetrically: ScoreIdentity.
//  5. Reference -> Reference: recurse on the referents.
//  6. Reference -> T: recurse with the l-value loaded (strip the source
//     Reference).
//  7. T -> Reference: recurse with an l-value required (strip the
//     target Reference); internal/check is responsible for rejecting
//     the conversion at the node level when the expression being
//     checked is not actually an l-value — Convert only scores types.
//  8. Integer -> Integer: same size and signedness -> ScoreIdentity;
//     else `to.size > from.size && (to.signed || !from.signed)` ->
//     ScoreConversion; otherwise falls through to rule 11 (ScoreNone).
//     This asymmetric rule is kept verbatim per spec.md §9's note that
//     the original source flags it as unvetted.
//  9. integer_literal -> any integer: ScoreConversion.
//  10. Array -> Array: element convertible and `from.size <= to.size`:
//      the element pair's own score.
//  11. Otherwise: ScoreNone.
func Convert(from, to Type) Score {
	cf, ct := Canonicalize(from), Canonicalize(to)

	if tp, ok := ct.(*Primitive); ok && tp.Kind == Void {
		return ScoreIdentity
	}

	fn, fIncomplete := cf.(*Named)
	tn, tIncomplete := ct.(*Named)
	if fIncomplete && tIncomplete {
		if fn.Name != "" && fn.Name == tn.Name {
			return ScoreIdentity
		}
		return ScoreNone
	}

	if equals(cf, ct) {
		return ScoreIdentity
	}

	if ff, ok := cf.(*Function); ok {
		if tptr, ok := ct.(*Pointer); ok {
			if tf, ok := Canonicalize(tptr.Elem).(*Function); ok && equals(ff, tf) {
				return ScoreIdentity
			}
		}
	}
	if fptr, ok := cf.(*Pointer); ok {
		if ffn, ok := Canonicalize(fptr.Elem).(*Function); ok {
			if tf, ok := ct.(*Function); ok && equals(ffn, tf) {
				return ScoreIdentity
			}
		}
	}

	if fr, ok := cf.(*Reference); ok {
		if tr, ok := ct.(*Reference); ok {
			return Convert(fr.Referent, tr.Referent)
		}
		return Convert(fr.Referent, ct)
	}
	if tr, ok := ct.(*Reference); ok {
		return Convert(cf, tr.Referent)
	}

	if fbits, fsigned, fok := asIntegerLike(cf); fok {
		if tbits, tsigned, tok := asIntegerLike(ct); tok {
			if fbits == tbits && fsigned == tsigned {
				return ScoreIdentity
			}
			if tbits > fbits && (tsigned || !fsigned) {
				return ScoreConversion
			}
			return ScoreNone
		}
	}

	if fp, ok := cf.(*Primitive); ok && fp.Kind == IntegerLiteralKind {
		if _, _, ok := asIntegerLike(ct); ok {
			return ScoreConversion
		}
		return ScoreNone
	}

	if arr, ok := cf.(*Array); ok {
		if tarr, ok := ct.(*Array); ok {
			elemScore := Convert(arr.Elem, tarr.Elem)
			if elemScore != ScoreNone && arr.Count <= tarr.Count {
				return elemScore
			}
			return ScoreNone
		}
	}

	return ScoreNone
}

// Equivalent implements the GLOSSARY's "Equivalent types" definition:
// canonical forms are equal, or the pair is a function/pointer-to-
// function pair with equal pointee. Used by internal/overload, which
// needs this narrower notion (never "any type is equivalent to void")
// distinct from Convert's general implicit-conversion scoring.
func Equivalent(a, b Type) bool {
	ca, cb := Canonicalize(a), Canonicalize(b)
	if equals(ca, cb) {
		return true
	}
	if ff, ok := ca.(*Function); ok {
		if tptr, ok := cb.(*Pointer); ok {
			if tf, ok := Canonicalize(tptr.Elem).(*Function); ok && equals(ff, tf) {
				return true
			}
		}
	}
	if fptr, ok := ca.(*Pointer); ok {
		if ffn, ok := Canonicalize(fptr.Elem).(*Function); ok {
			if tf, ok := cb.(*Function); ok && equals(ffn, tf) {
				return true
			}
		}
	}
	return false
}

func isVoidPointerElem(t Type) bool {
	p, ok := Canonicalize(t).(*Primitive)
	return ok && p.Kind == Void
}

// CommonType implements spec.md §4.2's if/else and binary-operand
// unification rule: "for integers, the larger of the two if the
// signedness relation above holds in the stated direction; otherwise no
// common type." It does not reuse Convert's general scoring directly —
// Convert's "any type -> void" rule would otherwise make void a
// spurious common type of any pair, which is never the intent here.
// An integer_literal paired with an integer type yields that integer
// type. Non-integer types only have a common type when they are already
// equal. Returns (nil, false) when no common type exists.
func CommonType(a, b Type) (Type, bool) {
	ca, cb := Canonicalize(a), Canonicalize(b)
	if equals(ca, cb) {
		return a, true
	}
	abits, asigned, aok := asIntegerLike(ca)
	bbits, bsigned, bok := asIntegerLike(cb)
	if lit, isLit := cb.(*Primitive); isLit && lit.Kind == IntegerLiteralKind && aok {
		return a, true
	}
	if lit, isLit := ca.(*Primitive); isLit && lit.Kind == IntegerLiteralKind && bok {
		return b, true
	}
	if !aok || !bok {
		return nil, false
	}
	if bbits > abits && (bsigned || !asigned) {
		return b, true
	}
	if abits > bbits && (asigned || !bsigned) {
		return a, true
	}
	return nil, false
}
