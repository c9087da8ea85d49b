// Package types implements kiln's Type System & Layout Engine (spec.md
// §4.1): canonicalization, structural equality, size/alignment/offset
// computation, completeness tracking, and convertibility scoring.
//
// The Type interface and the "one small struct per variant, all
// implementing String()" shape follow the teacher's internal/types/types.go
// (TVar/TCon/TFunc/... each implementing String()/Equals()/Substitute());
// kiln's variants are different (nominal Named aliases and byte-level
// Struct layout instead of Hindley-Milner type variables and row
// polymorphism), since the source language has no parametric polymorphism.
package types

import (
	"fmt"
	"strings"

	"github.com/kiln-lang/kilnc/internal/source"
)

// Type is the common interface implemented by every type variant in
// spec.md §3. Structural comparison is NOT done via an Equals method on
// the interface (unlike the teacher) because equality here requires
// canonicalization context (Named alias resolution) that a lone
// variant cannot perform on itself; use the package-level Equals instead.
type Type interface {
	String() string
	typeNode()
}

// PrimitiveKind discriminates the built-in Primitive sentinels.
type PrimitiveKind int

const (
	// Void is the unit/no-value type.
	Void PrimitiveKind = iota
	// Byte is the one-byte unsigned built-in integer type.
	Byte
	// IntegerCanonical is the platform canonical signed integer type.
	IntegerCanonical
	// IntegerLiteralKind marks an as-yet-untyped integer literal (spec.md §4.1 rule 9).
	IntegerLiteralKind
)

// Primitive is spec.md §3's Primitive variant: void, byte, the canonical
// integer, and the integer_literal sentinel. Byte/IntegerCanonical carry
// explicit size and signedness so convertibility scoring can treat them
// uniformly with the arbitrary-width Integer variant (see asIntegerLike
// in convert.go).
type Primitive struct {
	Kind     PrimitiveKind
	ByteSize int64
	Signed   bool
}

func (p *Primitive) typeNode() {}
func (p *Primitive) String() string {
	switch p.Kind {
	case Void:
		return "void"
	case Byte:
		return "byte"
	case IntegerCanonical:
		return "integer"
	case IntegerLiteralKind:
		return "integer_literal"
	default:
		return "<invalid primitive>"
	}
}

// NewVoid, NewByte, NewIntegerLiteral construct the fixed Primitive
// sentinels. IntegerCanonical's size depends on analyzer configuration
// (internal/config) and is therefore constructed by Engine, not here.
func NewVoid() *Primitive { return &Primitive{Kind: Void} }
func NewByte() *Primitive { return &Primitive{Kind: Byte, ByteSize: 1, Signed: false} }
func NewIntegerLiteral() *Primitive {
	return &Primitive{Kind: IntegerLiteralKind}
}

// Integer is spec.md §3's arbitrary-width Integer variant: any bit width
// from 1 to 64 is accepted by the parser-facing API; check_type (see
// layout.go) is what rejects 0 and >64 (spec.md §4.1).
type Integer struct {
	Bits   int
	Signed bool

	checked bool
}

func (i *Integer) typeNode() {}
func (i *Integer) String() string {
	sign := "i"
	if !i.Signed {
		sign = "u"
	}
	return fmt.Sprintf("%s%d", sign, i.Bits)
}

// NewInteger constructs an arbitrary-width integer type. Validity (bit
// width in 1..=64) is enforced by check_type, not by this constructor,
// matching spec.md's "Integer (arbitrary-width)" row: the type can be
// built eagerly by the parser before the analyzer ever inspects it.
func NewInteger(bits int, signed bool) *Integer {
	return &Integer{Bits: bits, Signed: signed}
}

// Pointer is spec.md §3's Pointer variant.
type Pointer struct {
	Elem Type
}

func (p *Pointer) typeNode()      {}
func (p *Pointer) String() string { return "@" + p.Elem.String() }

func NewPointer(elem Type) *Pointer { return &Pointer{Elem: elem} }

// Reference is spec.md §3's Reference variant: an l-value-carrying
// wrapper, never itself user-writable, understood by Convert and
// StripReferences. internal/check does not wrap expressions in it; it
// tracks l-values structurally on the AST.
type Reference struct {
	Referent Type
}

func (r *Reference) typeNode()      {}
func (r *Reference) String() string { return "&" + r.Referent.String() }

func NewReference(referent Type) *Reference { return &Reference{Referent: referent} }

// Array is spec.md §3's Array variant.
type Array struct {
	Elem  Type
	Count int64

	checked bool
}

func (a *Array) typeNode()      {}
func (a *Array) String() string { return fmt.Sprintf("%s[%d]", a.Elem.String(), a.Count) }

func NewArray(elem Type, count int64) *Array { return &Array{Elem: elem, Count: count} }

// Attributes is the attribute set carried by Function types (spec.md §3).
type Attributes struct {
	Discardable bool
	Const       bool
	Pure        bool
	Noreturn    bool
	Inline      bool
	Noinline    bool
	Used        bool
}

// Validate checks the attribute invariants from spec.md §3:
// noreturn ⇒ ¬const ∧ ¬pure; ¬(inline ∧ noinline).
func (a Attributes) Validate() error {
	if a.Noreturn && (a.Const || a.Pure) {
		return fmt.Errorf("noreturn function may not also be const or pure")
	}
	if a.Inline && a.Noinline {
		return fmt.Errorf("function may not be both inline and noinline")
	}
	return nil
}

// Param is one entry of a Function type's ordered parameter list.
type Param struct {
	Name string
	Type Type
	Pos  source.Pos
}

// Function is spec.md §3's Function variant.
type Function struct {
	Return Type
	Params []Param
	Attrs  Attributes

	checked bool
}

func (f *Function) typeNode() {}
func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Type.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Return.String())
}

func NewFunction(ret Type, params []Param, attrs Attributes) *Function {
	return &Function{Return: ret, Params: params, Attrs: attrs}
}

// Member is one entry of a Struct type's ordered member list, with its
// computed byte offset (filled in by layout, see layout.go).
type Member struct {
	Name   string
	Type   Type
	Offset int64
}

// Struct is spec.md §3's Struct variant. Size/Align are computed lazily
// by the layout engine and cached once Checked is true.
type Struct struct {
	Name    string
	Members []Member
	Size    int64
	Align   int64

	// PresetAlign, if non-zero, overrides the max-member-alignment rule
	// (spec.md §3: "rounded up to the struct's alignment, which is the
	// max member alignment unless pre-set").
	PresetAlign int64

	// membersTypechecked tracks whether every member's own type has been
	// typechecked; until true the struct is incomplete (spec.md §4.1:
	// "a struct whose members are not yet typechecked is incomplete").
	membersTypechecked bool
	checked            bool

	// checking is the re-entry fence spec.md §5/§9 describe: a
	// self-referential struct reached again through a pointer member
	// while its own layout pass is still running (checked not yet set)
	// must short-circuit rather than recompute.
	checking bool
}

func (s *Struct) typeNode() {}
func (s *Struct) String() string {
	if s.Name != "" {
		return s.Name
	}
	parts := make([]string, len(s.Members))
	for i, m := range s.Members {
		parts[i] = fmt.Sprintf("%s: %s", m.Name, m.Type.String())
	}
	return fmt.Sprintf("struct { %s }", strings.Join(parts, "; "))
}

// NewStruct constructs a Struct whose members are already typechecked
// (the common case once the analyzer has finished the structure
// declaration's member list); layout (size/align/offsets) is computed
// lazily by Engine.CheckType.
func NewStruct(name string, members []Member) *Struct {
	return &Struct{Name: name, Members: members, membersTypechecked: true}
}

// MarkMembersPending flags a struct under construction as not yet
// having fully-typechecked members, so IsComplete reports it
// incomplete until the expression checker finishes its member list and
// calls MarkMembersReady.
func (s *Struct) MarkMembersPending() { s.membersTypechecked = false }
func (s *Struct) MarkMembersReady()   { s.membersTypechecked = true }

// Named is spec.md §3's Named (alias) variant: a symbol whose value
// resolves to another Type. Target is nil for an as-yet-unresolved
// alias (spec.md's "incomplete type": "unresolved alias").
type Named struct {
	Name   string
	Target Type

	// checking is the re-entry fence for an alias that reaches itself
	// through a pointer (spec.md §5/§9's `T = @T` example): Engine.CheckType
	// sets this before descending into Target and short-circuits a
	// re-entrant call rather than recursing forever.
	checking bool
}

func (n *Named) typeNode() {}
func (n *Named) String() string {
	if n.Name != "" {
		return n.Name
	}
	return "<anonymous alias>"
}

func NewNamed(name string, target Type) *Named { return &Named{Name: name, Target: target} }
