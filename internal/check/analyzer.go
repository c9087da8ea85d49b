// Package check implements spec.md §4.2, the semantic analyzer's
// Expression Checker: a total, idempotent, per-node-kind dispatch over
// the AST that validates, infers, and mutates the tree in place
// (inserting implicit casts, rewriting module-reference member
// accesses, substituting resolved function references).
//
// Analyzer's shape — a small context struct threading engine/sink/
// config through an otherwise-stateless recursive traversal, with a
// single top-level panic recovery converting internal invariant
// violations into a diagnostic rather than crashing — is grounded on
// the teacher's internal/types.InferenceContext (a single long-lived
// struct threaded through every Infer call) and on the ICE(...) guard
// idiom documented in original_source/src/typechecker.c, carried
// forward per SPEC_FULL.md §4.
package check

import (
	"fmt"

	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/config"
	"github.com/kiln-lang/kilnc/internal/diag"
	"github.com/kiln-lang/kilnc/internal/errors"
	"github.com/kiln-lang/kilnc/internal/module"
	"github.com/kiln-lang/kilnc/internal/overload"
	"github.com/kiln-lang/kilnc/internal/scope"
	"github.com/kiln-lang/kilnc/internal/types"
)

// Analyzer is the semantic analyzer's entry point: one Analyzer checks
// exactly one Module (spec.md §5: single-threaded, non-suspending, no
// concurrency across modules).
type Analyzer struct {
	engine   *types.Engine
	sink     diag.Sink
	cfg      config.AnalyzerOptions
	mod      *module.Module
	resolver *overload.Resolver
}

// New constructs an Analyzer for mod, reporting diagnostics to sink and
// computing layout with engine (normally built from cfg via
// types.NewEngine in the caller, since Engine and AnalyzerOptions live
// in separate packages by design — internal/types has no dependency on
// internal/config).
func New(engine *types.Engine, sink diag.Sink, cfg config.AnalyzerOptions, mod *module.Module) *Analyzer {
	a := &Analyzer{engine: engine, sink: sink, cfg: cfg, mod: mod}
	a.resolver = overload.New(sink, a)
	return a
}

// Engine satisfies internal/intrinsic.ExprChecker and gives per-kind
// check functions access to layout/convertibility without a field name
// collision with the Engine type itself.
func (a *Analyzer) Engine() *types.Engine { return a.engine }

func (a *Analyzer) emit(code, phase string, sev diag.Severity, pos ast.Span, msg string) {
	filename := ""
	if a.mod != nil {
		filename = a.mod.Filename
	}
	a.sink.Emit(diag.New(code, phase, sev, filename, pos, msg))
}

func (a *Analyzer) errorAt(code string, pos ast.Span, format string, args ...interface{}) {
	a.emit(code, "check", diag.SeverityError, pos, fmt.Sprintf(format, args...))
}

func (a *Analyzer) warnAt(code string, pos ast.Span, format string, args ...interface{}) {
	a.emit(code, "check", diag.SeverityWarning, pos, fmt.Sprintf(format, args...))
}

// ice reports an internal compiler error without panicking — used for
// conditions that indicate a checker bug but that the caller can still
// recover from locally (e.g. an unhandled node kind reached from a
// context where aborting the whole module would discard unrelated,
// valid diagnostics). Genuine invariant violations that cannot be
// locally recovered from (stale parent links, a rewrite into a
// detached node) panic instead, caught by CheckModule's single
// recover, per SPEC_FULL.md §4's ICE guard idiom.
func (a *Analyzer) ice(pos ast.Span, format string, args ...interface{}) {
	a.emit(errors.ICE002, "internal", diag.SeverityError, pos, fmt.Sprintf(format, args...))
}

// CheckModule is the top-level driver: it checks every top-level
// declaration in mod.Root, recovering any panic into a single ICE001
// diagnostic (spec.md §7's "Internal" row) rather than letting it
// escape to the caller. Per spec.md §7, a failing declaration does not
// prevent later ones from being checked.
func (a *Analyzer) CheckModule() (ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			pos := ast.Span{}
			if a.mod != nil && a.mod.Root != nil {
				pos = a.mod.Root.Position()
			}
			a.errorAt(errors.ICE001, pos, "internal compiler error: %v", r)
			ok = false
		}
	}()
	if a.mod == nil || a.mod.Root == nil {
		return false
	}
	return a.CheckExpression(a.mod.Root, a.mod.Global)
}

// CheckExpression is the Expression Checker's single dispatch point
// (spec.md §4.2 "Entry: check_expression(node); idempotent on
// type_checked"). It is total over ast.Kind: an unrecognized
// concrete type is an internal compiler error.
func (a *Analyzer) CheckExpression(n ast.Node, sc *scope.Scope) bool {
	if n == nil {
		return true
	}
	if n.Checked() {
		return true
	}
	switch v := n.(type) {
	case *ast.Root:
		return a.checkRoot(v, sc)
	case *ast.Block:
		return a.checkBlock(v, sc)
	case *ast.Declaration:
		return a.checkDeclaration(v, sc)
	case *ast.If:
		return a.checkIf(v, sc)
	case *ast.While:
		return a.checkWhile(v, sc)
	case *ast.For:
		return a.checkFor(v, sc)
	case *ast.Return:
		return a.checkReturn(v, sc)
	case *ast.Call:
		return a.checkCall(v, sc)
	case *ast.IntrinsicCall:
		return a.checkIntrinsicCall(v, sc)
	case *ast.Cast:
		return a.checkCast(v, sc)
	case *ast.Binary:
		return a.checkBinary(v, sc)
	case *ast.Unary:
		return a.checkUnary(v, sc)
	case *ast.Literal:
		return a.checkLiteral(v, sc, nil)
	case *ast.VariableReference:
		return a.checkVariableReference(v, sc)
	case *ast.FunctionReference:
		return a.checkFunctionReferenceStandalone(v, sc)
	case *ast.MemberAccess:
		return a.checkMemberAccess(v, sc)
	case *ast.Function:
		return a.checkFunction(v, sc)
	case *ast.StructureDeclaration:
		return a.checkStructureDeclaration(v, sc)
	case *ast.ModuleReference:
		n.SetResolvedType(types.NewVoid())
		n.SetChecked(true)
		return true
	default:
		a.ice(n.Position(), "unhandled AST node kind %s", n.Kind())
		return false
	}
}

// checkSequence implements the shared half of spec.md §4.2's Root/Block
// contract: check each statement in order (never stopping early), and
// for every non-terminal statement flag a bare `==` comparison (likely
// a `:=` typo) and a discarded non-discardable, non-void call result.
func (a *Analyzer) checkSequence(stmts []ast.Node, sc *scope.Scope) bool {
	ok := true
	for i, stmt := range stmts {
		if !a.CheckExpression(stmt, sc) {
			ok = false
		}
		if i == len(stmts)-1 {
			continue
		}
		if bin, isBin := stmt.(*ast.Binary); isBin && bin.Op == ast.OpEq {
			a.errorAt(errors.SEMA004, stmt.Position(), "comparison result unused; did you mean `:=`?")
			ok = false
		}
		if call, isCall := stmt.(*ast.Call); isCall {
			if fn := calleeFunctionType(call); fn != nil {
				if !fn.Attrs.Discardable && !types.Equals(fn.Return, types.NewVoid()) {
					a.errorAt(errors.SEMA005, stmt.Position(), "result of non-discardable call is unused")
					ok = false
				}
			}
		}
	}
	return ok
}

// calleeFunctionType returns the *types.Function a checked Call's
// callee resolves to, unwrapping the implicit function-pointer
// dereference checkCall inserts, or nil if the callee never resolved.
func calleeFunctionType(call *ast.Call) *types.Function {
	callee := call.Callee
	if u, ok := callee.(*ast.Unary); ok && u.Op == ast.OpDereference {
		callee = u.Operand
	}
	t := callee.ResolvedType()
	if fn, ok := types.Canonicalize(t).(*types.Function); ok {
		return fn
	}
	if ptr, ok := types.Canonicalize(t).(*types.Pointer); ok {
		if fn, ok := types.Canonicalize(ptr.Elem).(*types.Function); ok {
			return fn
		}
	}
	return nil
}

// checkRoot implements spec.md §4.2's Root contract: the shared
// sequence checks, the standalone-function-reference collapse, and the
// post-pass that coerces (or synthesizes) the module's trailing
// integer-typed expression.
func (a *Analyzer) checkRoot(root *ast.Root, sc *scope.Scope) bool {
	collapseStandaloneFunctionReferences(root)
	a.hoistDeclarations(root.Declarations, sc)

	ok := a.checkSequence(root.Declarations, sc)

	canonical := a.engine.CanonicalInteger()
	if len(root.Declarations) == 0 {
		zero := zeroLiteral(root.Position(), canonical)
		zero.SetParent(root)
		root.Declarations = append(root.Declarations, zero)
	} else {
		last := root.Declarations[len(root.Declarations)-1]
		lastType := last.ResolvedType()
		if lastType != nil && types.Convert(lastType, canonical) != types.ScoreNone {
			if !types.Equals(types.Canonicalize(lastType), types.Canonicalize(canonical)) {
				ast.InsertConversion(last, canonical)
			}
		} else {
			zero := zeroLiteral(root.Position(), canonical)
			zero.SetParent(root)
			root.Declarations = append(root.Declarations, zero)
		}
	}

	root.SetResolvedType(canonical)
	root.SetChecked(true)
	return ok
}

func zeroLiteral(pos ast.Span, canonical types.Type) *ast.Literal {
	lit := &ast.Literal{Base: ast.Base{Span: pos}, LitKind: ast.LiteralInteger, Int: 0}
	lit.SetResolvedType(canonical)
	lit.SetChecked(true)
	return lit
}

// collapseStandaloneFunctionReferences implements spec.md §4.2's Root
// note: "replace top-level function references whose source span
// exactly matches a function definition with the definition itself" —
// a parser artifact guard for an accidental bare-name statement that is
// really meant to be the function declaration occupying that slot.
func collapseStandaloneFunctionReferences(root *ast.Root) {
	for i, child := range root.Declarations {
		ref, ok := child.(*ast.FunctionReference)
		if !ok {
			continue
		}
		for _, cand := range root.Declarations {
			if fn, ok := cand.(*ast.Function); ok && fn.Position() == ref.Position() {
				root.Declarations[i] = fn
				fn.SetParent(root)
				break
			}
		}
	}
}

// checkBlock implements spec.md §4.2's Block contract, sharing
// checkSequence with Root but introducing its own nested scope and
// taking its type from its final statement (void if empty), which
// If/While/For and the common-type calculation over if/else branches
// depend on.
func (a *Analyzer) checkBlock(block *ast.Block, parent *scope.Scope) bool {
	inner := scope.New(parent)
	a.hoistDeclarations(block.Statements, inner)
	ok := a.checkSequence(block.Statements, inner)
	if len(block.Statements) > 0 {
		block.SetResolvedType(block.Statements[len(block.Statements)-1].ResolvedType())
	} else {
		block.SetResolvedType(types.NewVoid())
	}
	block.SetChecked(true)
	return ok
}
