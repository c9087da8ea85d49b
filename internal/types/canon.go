package types

// Canonicalize walks through Named aliases until it reaches a
// non-Named type or an unresolved (nil Target) alias, in which case it
// returns the Named itself (spec.md §4.1: "an unresolved alias is its
// own canonical form until resolved").
func Canonicalize(t Type) Type {
	seen := map[*Named]bool{}
	for {
		n, ok := t.(*Named)
		if !ok {
			return t
		}
		if n.Target == nil || seen[n] {
			return n
		}
		seen[n] = true
		t = n.Target
	}
}

// Equals reports whether two types are structurally identical after
// canonicalization (spec.md §4.1). Reference wrappers are significant:
// Equals does NOT strip them, matching the spec's distinction between
// an l-value-typed expression and its referent ("StripReferences is a
// separate, explicit step").
func Equals(a, b Type) bool {
	return equals(Canonicalize(a), Canonicalize(b))
}

func equals(a, b Type) bool {
	switch av := a.(type) {
	case *Primitive:
		bv, ok := b.(*Primitive)
		return ok && av.Kind == bv.Kind && av.ByteSize == bv.ByteSize && av.Signed == bv.Signed
	case *Integer:
		bv, ok := b.(*Integer)
		return ok && av.Bits == bv.Bits && av.Signed == bv.Signed
	case *Pointer:
		bv, ok := b.(*Pointer)
		return ok && Equals(av.Elem, bv.Elem)
	case *Reference:
		bv, ok := b.(*Reference)
		return ok && Equals(av.Referent, bv.Referent)
	case *Array:
		bv, ok := b.(*Array)
		return ok && av.Count == bv.Count && Equals(av.Elem, bv.Elem)
	case *Function:
		bv, ok := b.(*Function)
		if !ok || len(av.Params) != len(bv.Params) || !Equals(av.Return, bv.Return) {
			return false
		}
		for i := range av.Params {
			if !Equals(av.Params[i].Type, bv.Params[i].Type) {
				return false
			}
		}
		return true
	case *Struct:
		bv, ok := b.(*Struct)
		if !ok {
			return false
		}
		// Named structs compare by identity-of-name (spec.md §4.1: two
		// separately-declared structs with identical shape are distinct
		// types), anonymous structs compare structurally.
		if av.Name != "" || bv.Name != "" {
			return av == bv
		}
		if len(av.Members) != len(bv.Members) {
			return false
		}
		for i := range av.Members {
			if av.Members[i].Name != bv.Members[i].Name || !Equals(av.Members[i].Type, bv.Members[i].Type) {
				return false
			}
		}
		return true
	case *Named:
		// Only reachable when b is an unresolved Named too (Canonicalize
		// resolves any Named with a non-nil Target before we get here).
		// Compared by name, not identity (spec.md §9 Open Question:
		// "whether aliases with identical names in different scopes
		// should compare equal is left as the current behavior (equal)").
		bv, ok := b.(*Named)
		return ok && av.Name != "" && av.Name == bv.Name
	default:
		return false
	}
}

// StripReferences removes a single layer of Reference wrapping, if
// present. It does not recurse into Pointer/Array/Struct member types,
// since References only ever wrap the type of an expression, never a
// nested declared type (spec.md §3).
func StripReferences(t Type) Type {
	if r, ok := t.(*Reference); ok {
		return r.Referent
	}
	return t
}

// IsComplete reports whether t has a known, finite layout (spec.md
// §4.1's "incomplete type" cases): an unresolved Named alias, a Struct
// whose members are not yet typechecked, or any type that embeds one of
// those transitively.
func IsComplete(t Type) bool {
	switch v := Canonicalize(t).(type) {
	case *Named:
		return false // unresolved alias
	case *Struct:
		return v.membersTypechecked
	case *Array:
		return IsComplete(v.Elem)
	case *Pointer:
		return true // a pointer to an incomplete type is itself complete
	case *Reference:
		return IsComplete(v.Referent)
	default:
		return true
	}
}
