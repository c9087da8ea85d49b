package check_test

import (
	"testing"

	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/astbuild"
	"github.com/kiln-lang/kilnc/internal/check"
	"github.com/kiln-lang/kilnc/internal/config"
	"github.com/kiln-lang/kilnc/internal/diag"
	"github.com/kiln-lang/kilnc/internal/intrinsic"
	"github.com/kiln-lang/kilnc/internal/module"
	"github.com/kiln-lang/kilnc/internal/types"
)

// spec.md §4.2 If: a branch taken on both sides with a common integer
// type yields that common type; the condition itself is still checked
// even though its value is discarded.
func TestIfYieldsCommonBranchType(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	cond := b.Bool(true)
	xDecl := b.Decl("x", tb.Byte(), b.Int(1))
	yDecl := b.Decl("y", tb.Integer(), b.Int(2))
	ifNode := b.If(cond, b.Var("x"), b.Var("y"))
	stmt := b.Decl("r", nil, ifNode)
	root := b.Root(xDecl, yDecl, stmt)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if !types.Equals(ifNode.ResolvedType(), tb.Integer()) {
		t.Errorf("if type = %s, want the common type of byte and integer (integer)", ifNode.ResolvedType())
	}
}

// spec.md §4.2 If: an if with no else is void-typed.
func TestIfWithoutElseIsVoid(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	xDecl := b.Decl("x", tb.Integer(), b.Int(1))
	ifNode := b.If(b.Bool(true), b.Var("x"), nil)
	root := b.Root(xDecl, ifNode)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if !types.Equals(ifNode.ResolvedType(), tb.Void()) {
		t.Errorf("if-without-else type = %s, want void", ifNode.ResolvedType())
	}
}

// spec.md §4.2 While is always void-typed, regardless of its body.
func TestWhileIsVoid(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	xDecl := b.Decl("x", tb.Integer(), b.Int(0))
	loop := b.While(b.Bool(true), b.Var("x"))
	root := b.Root(xDecl, loop)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if !types.Equals(loop.ResolvedType(), tb.Void()) {
		t.Errorf("while type = %s, want void", loop.ResolvedType())
	}
}

// spec.md §4.2 For: the init clause's declaration is visible to the
// condition, post clause, and body, in a scope nested under the
// enclosing one.
func TestForInitVisibleToConditionAndBody(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	init := b.Decl("i", tb.Integer(), b.Int(0))
	cond := b.Bin(ast.OpLt, b.Var("i"), b.Int(10))
	post := b.Bin(ast.OpAssign, b.Var("i"), b.Bin(ast.OpAdd, b.Var("i"), b.Int(1)))
	loop := b.For(init, cond, post, b.Var("i"))
	root := b.Root(loop)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
}

// spec.md §4.2 For: a condition not convertible to integer is rejected.
func TestForConditionMustBeIntegerConvertible(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	structType := tb.Struct("S", types.Member{Name: "a", Type: tb.Integer()})
	sDecl := b.Decl("s", structType, nil)
	loop := b.For(nil, b.Var("s"), nil, b.Int(0))
	root := b.Root(sDecl, loop)

	sink, ok := runCheck(t, root)
	if ok {
		t.Fatalf("expected failure on a non-integer-convertible for-loop condition")
	}
	if len(sink.ByCode("TYP001")) == 0 {
		t.Errorf("expected a TYP001 diagnostic, got: %v", sink.Reports)
	}
}

// spec.md §4.2 Member-access: a struct-typed l-value's member yields
// the member's declared type.
func TestMemberAccessYieldsMemberType(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	structType := tb.Struct("point",
		types.Member{Name: "x", Type: tb.Integer()},
		types.Member{Name: "y", Type: tb.Byte()},
	)
	pDecl := b.Decl("p", structType, nil)
	access := b.Access(b.Var("p"), "y")
	stmt := b.Decl("r", nil, access)
	root := b.Root(pDecl, stmt)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	if !types.Equals(access.ResolvedType(), tb.Byte()) {
		t.Errorf("member access type = %s, want byte", access.ResolvedType())
	}
}

// spec.md §4.2 Member-access: an unknown member name is rejected.
func TestMemberAccessUnknownMemberRejected(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))
	structType := tb.Struct("point", types.Member{Name: "x", Type: tb.Integer()})
	pDecl := b.Decl("p", structType, nil)
	access := b.Access(b.Var("p"), "z")
	stmt := b.Decl("r", nil, access)
	root := b.Root(pDecl, stmt)

	sink, ok := runCheck(t, root)
	if ok {
		t.Fatalf("expected failure accessing an unknown member")
	}
	if len(sink.ByCode("SEMA002")) == 0 {
		t.Errorf("expected a SEMA002 diagnostic, got: %v", sink.Reports)
	}
}

// spec.md §6 Member-access on a module reference: `io.puts` is rewritten
// in place to a FunctionReference bound to the import's synthesized
// function symbol, rather than treated as a structure member lookup.
func TestModuleMemberAccessRewritesToFunctionReference(t *testing.T) {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))

	fnType := tb.Func(tb.Void(), tb.Param("code", tb.Integer()))
	access := b.Access(b.Module("io"), "puts")
	call := b.Call(access, b.Int(0))
	stmt := b.Decl("r", nil, call)
	root := b.Root(stmt)
	b.Wire(root)

	mod := module.New("main.kiln")
	mod.Imports = []*module.Import{{Name: "io"}}
	resolver := stubModuleResolver{name: "io", exportName: "puts", fnType: fnType}
	if err := mod.Install(resolver, []string{"main.kiln"}); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	mod.Root = root

	engine := types.NewEngine(8, 8, true)
	sink := diag.NewCollectingSink()
	a := check.New(engine, sink, config.Default(), mod)
	if !a.CheckModule() {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}

	ref, isRef := stmt.Initializer.(*ast.Call).Callee.(*ast.FunctionReference)
	if !isRef {
		t.Fatalf("expected io.puts to rewrite to a *ast.FunctionReference, got %T", stmt.Initializer.(*ast.Call).Callee)
	}
	if ref.Resolved == nil {
		t.Errorf("expected the rewritten reference to already be resolved")
	}
}

type stubModuleResolver struct {
	name       string
	exportName string
	fnType     *types.Function
}

func (r stubModuleResolver) ResolveExports(name string) ([]module.Export, error) {
	if name != r.name {
		return nil, nil
	}
	return []module.Export{{Name: r.exportName, Type: r.fnType}}, nil
}

// spec.md §4.4: a call naming a reserved intrinsic identifier is lowered
// and rewritten in place, reachable through checkCall's normal dispatch
// rather than internal/intrinsic's package-local tests.
func TestCallToIntrinsicNameLowersAndRewrites(t *testing.T) {
	b := astbuild.New()
	call := b.Call(b.FuncRef(intrinsic.Line))
	decl := b.Decl("ln", nil, call)
	root := b.Root(decl)

	sink, ok := runCheck(t, root)
	if !ok {
		t.Fatalf("expected success, got diagnostics: %v", sink.Reports)
	}
	lit, isLit := decl.Initializer.(*ast.Literal)
	if !isLit || lit.LitKind != ast.LiteralInteger {
		t.Fatalf("expected __builtin_line() to rewrite the declaration's initializer to an integer literal, got %#v", decl.Initializer)
	}
}
