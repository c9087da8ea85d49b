package check

import (
	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/errors"
	"github.com/kiln-lang/kilnc/internal/scope"
	"github.com/kiln-lang/kilnc/internal/types"
)

// checkLiteral implements spec.md §4.2's Literal contract. expected is
// non-nil only when a Declaration with an array-typed annotation
// supplies an element-type hint for an array literal; every other
// caller passes nil and lets the literal infer its own type.
func (a *Analyzer) checkLiteral(lit *ast.Literal, sc *scope.Scope, expected *types.Array) bool {
	switch lit.LitKind {
	case ast.LiteralInteger:
		lit.SetResolvedType(types.NewIntegerLiteral())
		lit.SetChecked(true)
		return true

	case ast.LiteralBool:
		// No dedicated boolean type; per spec.md's GLOSSARY, comparisons
		// and boolean literals alike resolve to the canonical integer.
		lit.SetResolvedType(a.engine.CanonicalInteger())
		lit.SetChecked(true)
		return true

	case ast.LiteralString:
		lit.SetResolvedType(types.NewArray(types.NewByte(), int64(len(lit.Str))+1))
		lit.SetChecked(true)
		return true

	case ast.LiteralArray:
		return a.checkArrayLiteral(lit, sc, expected)

	default:
		a.ice(lit.Position(), "unhandled literal kind %d", int(lit.LitKind))
		lit.SetResolvedType(a.engine.CanonicalInteger())
		lit.SetChecked(true)
		return false
	}
}

// checkArrayLiteral checks every element, then settles on a single
// element type: expected's element type when a Declaration supplied
// one, otherwise the common type across all elements (spec.md §4.2's
// "infer a common type for the elements when no annotation is present"
// rule), inserting an implicit cast on every element that doesn't
// already match.
func (a *Analyzer) checkArrayLiteral(lit *ast.Literal, sc *scope.Scope, expected *types.Array) bool {
	ok := true
	for _, el := range lit.Elements {
		if !a.CheckExpression(el, sc) {
			ok = false
		}
	}
	if !ok {
		lit.SetResolvedType(types.NewArray(a.engine.CanonicalInteger(), int64(len(lit.Elements))))
		lit.SetChecked(true)
		return false
	}

	var elemType types.Type
	if expected != nil {
		elemType = expected.Elem
	} else if len(lit.Elements) == 0 {
		elemType = a.engine.CanonicalInteger()
	} else {
		elemType = lit.Elements[0].ResolvedType()
		for _, el := range lit.Elements[1:] {
			t := el.ResolvedType()
			if common, okc := types.CommonType(elemType, t); okc {
				elemType = common
			} else if types.Convert(t, elemType) == types.ScoreNone && types.Convert(elemType, t) != types.ScoreNone {
				elemType = t
			}
		}
	}

	for _, el := range lit.Elements {
		t := el.ResolvedType()
		switch types.Convert(t, elemType) {
		case types.ScoreNone:
			a.errorAt(errors.TYP001, el.Position(), "array element of type %s not convertible to %s", t, elemType)
			ok = false
		case types.ScoreConversion:
			if !types.Equals(types.Canonicalize(t), types.Canonicalize(elemType)) {
				ast.InsertConversion(el, elemType)
			}
		}
	}

	lit.SetResolvedType(types.NewArray(elemType, int64(len(lit.Elements))))
	lit.SetChecked(true)
	return ok
}

// checkVariableReference implements spec.md §4.2's Variable-reference
// contract: resolve Name against sc and bind directly to the symbol's
// type. Unlike spec.md's literal "yields a reference to the variable's
// type" wording, the bound type here is the value type itself with no
// types.Reference wrapper, for consistency with how internal/overload
// reads every node's ResolvedType() directly (see DESIGN.md).
func (a *Analyzer) checkVariableReference(ref *ast.VariableReference, sc *scope.Scope) bool {
	syms := sc.Lookup(ref.Name)
	if len(syms) == 0 {
		a.errorAt(errors.SEMA001, ref.Position(), "undefined symbol %q", ref.Name)
		ref.SetResolvedType(a.engine.CanonicalInteger())
		ref.SetChecked(true)
		return false
	}
	sym := syms[0]
	if decl, ok := sym.Decl.(ast.Node); ok {
		ref.Target = decl
	}
	ref.SetResolvedType(sym.Type)
	ref.SetChecked(true)
	return true
}

// checkFunctionReferenceStandalone handles a *ast.FunctionReference
// reached from CheckExpression's dispatch, including one nested under a
// Call/Unary(&)/Cast/Declaration: those checkers recurse here, and the
// shared Resolver reads the reference's parent to pick the resolution
// context.
func (a *Analyzer) checkFunctionReferenceStandalone(ref *ast.FunctionReference, sc *scope.Scope) bool {
	if ref.Resolved != nil {
		ref.SetChecked(true)
		return true
	}
	ok := a.resolver.Resolve(ref, sc)
	ref.SetChecked(true)
	return ok
}
