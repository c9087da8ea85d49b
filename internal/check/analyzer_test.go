package check_test

import (
	"testing"

	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/astbuild"
	"github.com/kiln-lang/kilnc/internal/check"
	"github.com/kiln-lang/kilnc/internal/config"
	"github.com/kiln-lang/kilnc/internal/diag"
	"github.com/kiln-lang/kilnc/internal/module"
	"github.com/kiln-lang/kilnc/internal/types"
)

// newModule builds an empty Module with a fresh global scope, wired to
// a canonical 8-byte signed integer / 8-byte pointer engine (this
// repo's config.Default()), the shape every test in this package needs
// before it can hand a Root to check.New.
func newModule(root *ast.Root) (*module.Module, *types.Engine, *diag.CollectingSink) {
	mod := module.New("test.kiln")
	mod.Root = root
	engine := types.NewEngine(8, 8, true)
	sink := diag.NewCollectingSink()
	return mod, engine, sink
}

func runCheck(t *testing.T, root *ast.Root) (*diag.CollectingSink, bool) {
	t.Helper()
	b := astbuild.New()
	b.Wire(root)
	mod, engine, sink := newModule(root)
	a := check.New(engine, sink, config.Default(), mod)
	ok := a.CheckModule()
	return sink, ok
}

// spec.md §8: `foo : integer = 5` — declaration's type is the
// canonical integer type, the literal's type is rewritten from
// integer_literal to integer, no cast node is inserted.
func TestDeclarationLiteralInference(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	lit := b.Int(5)
	decl := b.Decl("foo", tb.Integer(), lit)
	root := b.Root(decl)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if !types.Equals(decl.ResolvedType(), tb.Integer()) {
		t.Errorf("declaration type = %s, want integer", decl.ResolvedType())
	}
	if !types.Equals(lit.ResolvedType(), tb.Integer()) {
		t.Errorf("initializer literal type = %s, want integer (rewritten from integer_literal)", lit.ResolvedType())
	}
	if _, isCast := decl.Initializer.(*ast.Cast); isCast {
		t.Errorf("expected no cast node inserted for an exact literal-to-integer match, got %T", decl.Initializer)
	}
}

// spec.md §8: `foo : byte = x` where `x : integer` is rejected —
// score(byte, integer) = -1.
func TestDeclarationNarrowingRejected(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	xDecl := b.Decl("x", tb.Integer(), b.Int(1))
	fooDecl := b.Decl("foo", tb.Byte(), b.Var("x"))
	root := b.Root(xDecl, fooDecl)

	sink, ok := runCheck(t, root)
	if ok {
		t.Fatalf("expected failure narrowing integer into byte, got success")
	}
	if len(sink.ByCode("TYP001")) == 0 {
		t.Errorf("expected a TYP001 not-convertible diagnostic, got: %v", sink.Reports)
	}
}

// spec.md §8: two functions f(x:integer) and f(x:byte); f(1) is
// ambiguous since a literal scores 1 against both.
func TestOverloadAmbiguousOnLiteral(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	fInt := b.Func("f", tb.Integer(), b.Block(b.Int(0)), b.Param("x", tb.Integer()))
	fByte := b.Func("f", tb.Integer(), b.Block(b.Int(0)), b.Param("x", tb.Byte()))
	call := b.Call(b.FuncRef("f"), b.Int(1))
	stmt := b.Decl("r", nil, call)
	root := b.Root(fInt, fByte, stmt)

	sink, ok := runCheck(t, root)
	if ok {
		t.Fatalf("expected ambiguity failure, got success")
	}
	if len(sink.ByCode("OVL001")) == 0 {
		t.Errorf("expected an OVL001 ambiguous-overload diagnostic, got: %v", sink.Reports)
	}
}

// spec.md §8: same two overloads, call f(y) where y:byte — only the
// byte overload scores 0, so it is picked deterministically.
func TestOverloadResolvesByExactScore(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	fInt := b.Func("f", tb.Integer(), b.Block(b.Int(0)), b.Param("x", tb.Integer()))
	fByte := b.Func("f", tb.Integer(), b.Block(b.Int(0)), b.Param("x", tb.Byte()))
	yDecl := b.Decl("y", tb.Byte(), b.Int(1))
	ref := b.FuncRef("f")
	call := b.Call(ref, b.Var("y"))
	stmt := b.Decl("r", nil, call)
	root := b.Root(fInt, fByte, yDecl, stmt)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if ref.Resolved != ast.Node(fByte) {
		t.Errorf("expected f(byte) to be picked, resolved to %v", ref.Resolved)
	}
}

// spec.md §8: g(h : integer(integer)) with two h overloads — only
// h(integer) is equivalent to g's parameter type, so g(h) resolves
// both F and the dependent argument deterministically (the
// bidirectional-inference centerpiece, spec.md §4.3 step 2e).
func TestBidirectionalDependentArgumentResolution(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))

	hInt := b.Func("h", tb.Integer(), b.Block(b.Int(0)), b.Param("a", tb.Integer()))
	hByte := b.Func("h", tb.Integer(), b.Block(b.Int(0)), b.Param("a", tb.Byte()))

	hParamType := tb.Func(tb.Integer(), tb.Param("", tb.Integer()))
	gRef := b.FuncRef("g")
	hRef := b.FuncRef("h")
	gDef := b.Func("g", tb.Integer(), b.Block(b.Int(0)), b.Param("cb", hParamType))
	call := b.Call(gRef, hRef)
	stmt := b.Decl("r", nil, call)
	root := b.Root(hInt, hByte, gDef, stmt)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if hRef.Resolved != ast.Node(hInt) {
		t.Errorf("expected h(integer) to be picked for the dependent argument, resolved to %v", hRef.Resolved)
	}
	if gRef.Resolved != ast.Node(gDef) {
		t.Errorf("expected g to resolve to its sole definition, resolved to %v", gRef.Resolved)
	}
}

// spec.md §8: struct S { a: byte; b: integer } with canonical integer
// size 8 / align 8, byte align 1: offset(a)=0, offset(b)=8, size=16,
// align=8.
func TestStructLayout(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	sd := b.Struct("S", b.Member("a", tb.Byte()), b.Member("b", tb.Integer()))
	root := b.Root(sd)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	st, ok := sd.ResolvedType().(*types.Struct)
	if !ok {
		t.Fatalf("structure declaration did not resolve to *types.Struct, got %T", sd.ResolvedType())
	}
	if st.Members[0].Offset != 0 {
		t.Errorf("offset(a) = %d, want 0", st.Members[0].Offset)
	}
	if st.Members[1].Offset != 8 {
		t.Errorf("offset(b) = %d, want 8", st.Members[1].Offset)
	}
	if st.Size != 16 {
		t.Errorf("size_of(S) = %d, want 16", st.Size)
	}
	if st.Align != 8 {
		t.Errorf("align_of(S) = %d, want 8", st.Align)
	}
}

// spec.md §8: a top-level `x == y` statement warns/errors "comparison
// result unused; did you mean `:=`?" and fails that statement.
func TestBareComparisonRejected(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	xDecl := b.Decl("x", tb.Integer(), b.Int(1))
	yDecl := b.Decl("y", tb.Integer(), b.Int(2))
	cmp := b.Bin(ast.OpEq, b.Var("x"), b.Var("y"))
	trailing := b.Int(0)
	root := b.Root(xDecl, yDecl, cmp, trailing)

	sink, ok := runCheck(t, root)
	if ok {
		t.Fatalf("expected failure on a bare top-level comparison")
	}
	if len(sink.ByCode("SEMA004")) == 0 {
		t.Errorf("expected a SEMA004 diagnostic, got: %v", sink.Reports)
	}
}

// spec.md §4.2 Root post-pass: an empty root gets a synthesized
// trailing integer literal 0.
func TestEmptyRootSynthesizesTrailingZero(t *testing.T) {
	b := astbuild.New()
	root := b.Root()

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if len(root.Declarations) != 1 {
		t.Fatalf("expected one synthesized declaration, got %d", len(root.Declarations))
	}
	lit, isLit := root.Declarations[0].(*ast.Literal)
	if !isLit || lit.LitKind != ast.LiteralInteger || lit.Int != 0 {
		t.Errorf("expected a synthesized Literal(0), got %#v", root.Declarations[0])
	}
}

// Idempotence (spec.md §8 property 1): running CheckModule twice on an
// already-checked module does not duplicate cast nodes or re-run
// struct layout.
func TestIdempotentOnSecondRun(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	decl := b.Decl("foo", tb.Integer(), b.Int(5))
	root := b.Root(decl)
	b.Wire(root)

	mod, engine, sink := newModule(root)
	a := check.New(engine, sink, config.Default(), mod)
	if !a.CheckModule() {
		t.Fatalf("first run failed: %v", sink.Reports)
	}
	firstLen := len(root.Declarations)

	a2 := check.New(engine, sink, config.Default(), mod)
	if !a2.CheckModule() {
		t.Fatalf("second run failed: %v", sink.Reports)
	}
	if len(root.Declarations) != firstLen {
		t.Errorf("second run mutated Root.Declarations: before=%d after=%d", firstLen, len(root.Declarations))
	}
}
