package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func testEngine() *Engine {
	return NewEngine(8, 8, true)
}

func TestCanonicalizeResolvesNamedChain(t *testing.T) {
	inner := NewInteger(32, true)
	mid := NewNamed("mid", inner)
	outer := NewNamed("outer", mid)

	got := Canonicalize(outer)
	if !cmp.Equal(got, inner, cmpopts.IgnoreUnexported(Integer{})) {
		t.Errorf("Canonicalize(outer) = %v, want %v", got, inner)
	}
}

func TestCanonicalizeUnresolvedAliasIsItsOwnCanonicalForm(t *testing.T) {
	alias := NewNamed("T", nil)
	if got := Canonicalize(alias); got != Type(alias) {
		t.Errorf("Canonicalize(unresolved) = %v, want alias itself", got)
	}
}

func TestEqualsStructuralOnAnonymousStruct(t *testing.T) {
	b := NewBuilder(testEngine())
	a := b.Struct("", b.Member("x", b.I(32)), b.Member("y", b.I(32)))
	c := b.Struct("", b.Member("x", b.I(32)), b.Member("y", b.I(32)))
	if !Equals(a, c) {
		t.Errorf("expected structurally identical anonymous structs to be equal")
	}
}

func TestEqualsNominalOnNamedStruct(t *testing.T) {
	b := NewBuilder(testEngine())
	a := b.Struct("Point", b.Member("x", b.I(32)), b.Member("y", b.I(32)))
	c := b.Struct("Point", b.Member("x", b.I(32)), b.Member("y", b.I(32)))
	if Equals(a, c) {
		t.Errorf("expected two separately-declared named structs to be distinct types")
	}
	if !Equals(a, a) {
		t.Errorf("expected a struct to equal itself")
	}
}

func TestConvertIdentity(t *testing.T) {
	i32 := NewInteger(32, true)
	if got := Convert(i32, NewInteger(32, true)); got != ScoreIdentity {
		t.Errorf("Convert(i32, i32) = %v, want ScoreIdentity", got)
	}
}

func TestConvertIntegerLiteralToIntegerLike(t *testing.T) {
	lit := NewIntegerLiteral()
	if got := Convert(lit, NewInteger(16, false)); got != ScoreConversion {
		t.Errorf("Convert(integer_literal, u16) = %v, want ScoreConversion", got)
	}
}

func TestConvertAnyTypeToVoidIsIdentity(t *testing.T) {
	// spec.md §4.1 rule 1 is evaluated before every other rule, including
	// the integer_literal rule: an expression statement of any type is
	// discardable as void.
	lit := NewIntegerLiteral()
	if got := Convert(lit, NewVoid()); got != ScoreIdentity {
		t.Errorf("Convert(integer_literal, void) = %v, want ScoreIdentity", got)
	}
	if got := Convert(NewInteger(32, true), NewVoid()); got != ScoreIdentity {
		t.Errorf("Convert(i32, void) = %v, want ScoreIdentity", got)
	}
}

func TestConvertIntegerLiteralToNonIntegerNonVoid(t *testing.T) {
	lit := NewIntegerLiteral()
	if got := Convert(lit, NewPointer(NewVoid())); got != ScoreNone {
		t.Errorf("Convert(integer_literal, @void) = %v, want ScoreNone", got)
	}
}

func TestConvertReferenceDecaysToReferent(t *testing.T) {
	i32 := NewInteger(32, true)
	ref := NewReference(i32)
	if got := Convert(ref, NewInteger(32, true)); got != ScoreIdentity {
		t.Errorf("Convert(&i32, i32) = %v, want ScoreIdentity", got)
	}
}

func TestConvertToReferenceRecursesOnReferent(t *testing.T) {
	// spec.md §4.1 rule 7: T -> Reference recurses on the referent.
	// Convert only scores types; rejecting a non-l-value source
	// expression is internal/check's job at the node level.
	i32 := NewInteger(32, true)
	if got := Convert(i32, NewReference(i32)); got != ScoreIdentity {
		t.Errorf("Convert(i32, &i32) = %v, want ScoreIdentity", got)
	}
	if got := Convert(NewInteger(8, true), NewReference(i32)); got != ScoreConversion {
		t.Errorf("Convert(i8, &i32) = %v, want ScoreConversion (i8->i32 widens under the integer rule)", got)
	}
}

func TestConvertDistinctPointersNone(t *testing.T) {
	// spec.md's Convert table has no pointer-to-pointer decay rule; only
	// the Cast rules (§4.2, outside this package) permit reinterpreting
	// one pointer type as another.
	a := NewPointer(NewInteger(8, false))
	b := NewPointer(NewInteger(32, true))
	if got := Convert(a, b); got != ScoreNone {
		t.Errorf("Convert(@u8, @i32) = %v, want ScoreNone", got)
	}
	voidPtr := NewPointer(NewVoid())
	if got := Convert(a, voidPtr); got != ScoreNone {
		t.Errorf("Convert(@u8, @void) = %v, want ScoreNone", got)
	}
}

func TestConvertIntegerWideningIsConversionNarrowingIsNot(t *testing.T) {
	// spec.md §4.1 rule 8, kept verbatim though flagged unvetted: a
	// conversion is scored only when the target is strictly wider AND
	// (the target is signed, or the source is unsigned). Narrowing and
	// same-size sign changes fall through to rule 11 (not convertible).
	cases := []struct {
		name string
		from *Integer
		to   *Integer
		want Score
	}{
		{"widen-signed-to-signed", NewInteger(8, true), NewInteger(32, true), ScoreConversion},
		{"widen-unsigned-to-signed", NewInteger(8, false), NewInteger(32, true), ScoreConversion},
		{"widen-unsigned-to-unsigned", NewInteger(8, false), NewInteger(32, false), ScoreConversion},
		{"widen-signed-to-unsigned-rejected", NewInteger(8, true), NewInteger(32, false), ScoreNone},
		{"narrow", NewInteger(32, true), NewInteger(8, true), ScoreNone},
		{"sign-change-same-size", NewInteger(32, true), NewInteger(32, false), ScoreNone},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := Convert(tt.from, tt.to); got != tt.want {
				t.Errorf("Convert(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvertArrayToArrayRecursesElementScoreWhenCapacityAllows(t *testing.T) {
	i8 := NewInteger(8, true)
	i32 := NewInteger(32, true)
	small := NewArray(i8, 4)
	big := NewArray(i32, 4)
	if got := Convert(small, big); got != ScoreConversion {
		t.Errorf("Convert(i8[4], i32[4]) = %v, want ScoreConversion", got)
	}
	tooSmall := NewArray(i32, 2)
	if got := Convert(small, tooSmall); got != ScoreNone {
		t.Errorf("Convert(i8[4], i32[2]) = %v, want ScoreNone (element count must not shrink)", got)
	}
}

func TestConvertFunctionToPointerToFunctionIsIdentity(t *testing.T) {
	fn := NewFunction(NewVoid(), nil, Attributes{})
	ptrToFn := NewPointer(NewFunction(NewVoid(), nil, Attributes{}))
	if got := Convert(fn, ptrToFn); got != ScoreIdentity {
		t.Errorf("Convert(fn, @fn) = %v, want ScoreIdentity", got)
	}
	if got := Convert(ptrToFn, fn); got != ScoreIdentity {
		t.Errorf("Convert(@fn, fn) = %v, want ScoreIdentity", got)
	}
}

func TestCommonTypePrefersExactMatch(t *testing.T) {
	i32 := NewInteger(32, true)
	got, ok := CommonType(i32, NewInteger(32, true))
	if !ok || !Equals(got, i32) {
		t.Errorf("CommonType(i32, i32) = (%v, %v), want (i32, true)", got, ok)
	}
}

func TestCommonTypeNoneWhenUnrelated(t *testing.T) {
	if _, ok := CommonType(NewVoid(), NewPointer(NewVoid())); ok {
		t.Errorf("expected no common type between void and @void")
	}
}

func TestLayoutStructOffsetsAndAlignment(t *testing.T) {
	e := testEngine()
	b := NewBuilder(e)
	// byte x; integer y; byte z  -- expect padding before y, trailing
	// padding for the struct's own alignment.
	s := b.Struct("S",
		b.Member("x", b.Byte()),
		b.Member("y", b.Integer()),
		b.Member("z", b.Byte()),
	)
	if err := e.CheckType(s); err != nil {
		t.Fatalf("CheckType: %v", err)
	}
	want := []int64{0, 8, 16}
	for i, w := range want {
		if s.Members[i].Offset != w {
			t.Errorf("member %d offset = %d, want %d", i, s.Members[i].Offset, w)
		}
	}
	if s.Align != 8 {
		t.Errorf("struct align = %d, want 8", s.Align)
	}
	if s.Size != 24 {
		t.Errorf("struct size = %d, want 24 (padded to alignment)", s.Size)
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	e := testEngine()
	b := NewBuilder(e)
	s := b.Struct("S", b.Member("x", b.Byte()))
	if err := e.CheckType(s); err != nil {
		t.Fatalf("first CheckType: %v", err)
	}
	s.Members[0].Offset = 999 // simulate "layout already computed"
	if err := e.CheckType(s); err != nil {
		t.Fatalf("second CheckType: %v", err)
	}
	if s.Members[0].Offset != 999 {
		t.Errorf("second CheckType recomputed layout; checked flag not respected")
	}
}

// spec.md §5/§9: a struct that reaches itself through a pointer member
// must not drive CheckType into unbounded recursion; the re-entrant
// layout pass on the same Struct short-circuits instead.
func TestCheckTypeSelfReferentialStructThroughPointerTerminates(t *testing.T) {
	e := testEngine()
	node := &Struct{Name: "Node"}
	node.Members = []Member{
		{Name: "value", Type: e.CanonicalInteger()},
		{Name: "next", Type: NewPointer(node)},
	}
	node.MarkMembersReady()

	if err := e.CheckType(node); err != nil {
		t.Fatalf("CheckType on a self-referential struct: %v", err)
	}
	if !node.checked {
		t.Errorf("expected the struct to end up checked")
	}
	if node.Members[1].Offset != 8 {
		t.Errorf("next offset = %d, want 8 (after the 8-byte value)", node.Members[1].Offset)
	}
	if node.Size != 16 {
		t.Errorf("struct size = %d, want 16", node.Size)
	}
}

// spec.md §5/§9's "T = @T" example: a Named alias that reaches itself
// through a pointer must not drive CheckType into unbounded recursion.
func TestCheckTypeSelfReferentialAliasThroughPointerTerminates(t *testing.T) {
	alias := &Named{Name: "T"}
	alias.Target = NewPointer(alias)

	if err := testEngine().CheckType(alias); err != nil {
		t.Fatalf("CheckType on a self-referential alias: %v", err)
	}
}

func TestCheckTypeRejectsOutOfRangeIntegerWidth(t *testing.T) {
	e := testEngine()
	if err := e.CheckType(NewInteger(0, true)); err == nil {
		t.Errorf("expected error for 0-bit integer")
	}
	if err := e.CheckType(NewInteger(65, true)); err == nil {
		t.Errorf("expected error for 65-bit integer")
	}
	if err := e.CheckType(NewInteger(64, true)); err != nil {
		t.Errorf("64-bit integer should be valid: %v", err)
	}
}

func TestCheckTypeRejectsZeroSizeArray(t *testing.T) {
	e := testEngine()
	if err := e.CheckType(NewArray(NewByte(), 0)); err == nil {
		t.Errorf("expected error for zero-size array")
	}
}

func TestIsCompleteIncompleteStructAndAlias(t *testing.T) {
	b := NewBuilder(testEngine())
	incomplete := b.IncompleteStruct("Pending")
	if IsComplete(incomplete) {
		t.Errorf("expected struct with pending members to be incomplete")
	}
	unresolved := b.Named("Opaque", nil)
	if IsComplete(unresolved) {
		t.Errorf("expected unresolved alias to be incomplete")
	}
	if !IsComplete(NewPointer(unresolved)) {
		t.Errorf("a pointer to an incomplete type should itself be complete")
	}
}

func TestFunctionAttributesValidate(t *testing.T) {
	if err := (Attributes{Noreturn: true, Pure: true}).Validate(); err == nil {
		t.Errorf("expected noreturn+pure to be invalid")
	}
	if err := (Attributes{Inline: true, Noinline: true}).Validate(); err == nil {
		t.Errorf("expected inline+noinline to be invalid")
	}
	if err := (Attributes{Noreturn: true}).Validate(); err != nil {
		t.Errorf("noreturn alone should be valid: %v", err)
	}
}
