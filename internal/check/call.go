package check

import (
	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/errors"
	"github.com/kiln-lang/kilnc/internal/intrinsic"
	"github.com/kiln-lang/kilnc/internal/scope"
	"github.com/kiln-lang/kilnc/internal/types"
)

// checkCall implements spec.md §4.2's Call contract. A callee naming a
// reserved identifier is lowered to an IntrinsicCall first (spec.md
// §4.4); otherwise, when the callee is an unresolved FunctionReference,
// checking it drives internal/overload's resolveAsCallee, which already
// checks every argument itself (spec.md §4.3 step 2a) as part of
// scoring candidates against them — checkCall only needs to insert the
// implicit conversions overload resolution identified but did not
// splice in. Any other callee shape (a function-pointer variable, a
// struct member, a cast result) is checked and arity/argument-checked
// here directly, with an implicit dereference inserted when the callee
// is a pointer to a function.
func (a *Analyzer) checkCall(call *ast.Call, sc *scope.Scope) bool {
	if ref, isRef := call.Callee.(*ast.FunctionReference); isRef && ref.Resolved == nil && intrinsic.IsIntrinsic(ref.Name) {
		return a.dispatchIntrinsic(call, ref.Name, sc)
	}

	if ref, isRef := call.Callee.(*ast.FunctionReference); isRef && ref.Resolved == nil {
		if !a.CheckExpression(ref, sc) {
			call.SetResolvedType(a.engine.CanonicalInteger())
			call.SetChecked(true)
			return false
		}
		fn, isFn := call.Callee.ResolvedType().(*types.Function)
		if !isFn {
			a.ice(call.Position(), "resolved function reference %q did not yield a function type", ref.Name)
			call.SetResolvedType(a.engine.CanonicalInteger())
			call.SetChecked(true)
			return false
		}
		ok := a.insertArgConversions(call, fn)
		call.SetResolvedType(fn.Return)
		call.SetChecked(true)
		return ok
	}

	ok := a.CheckExpression(call.Callee, sc)
	for _, arg := range call.Args {
		if !a.CheckExpression(arg, sc) {
			ok = false
		}
	}
	if !ok {
		call.SetResolvedType(a.engine.CanonicalInteger())
		call.SetChecked(true)
		return false
	}

	calleeType := call.Callee.ResolvedType()
	fn, isFn := types.Canonicalize(calleeType).(*types.Function)
	if !isFn {
		if ptr, isPtr := types.Canonicalize(calleeType).(*types.Pointer); isPtr {
			if inner, ok2 := types.Canonicalize(ptr.Elem).(*types.Function); ok2 {
				fn = inner
				isFn = true
				deref := &ast.Unary{Base: ast.Base{Span: call.Callee.Position()}, Op: ast.OpDereference, Operand: call.Callee}
				deref.SetResolvedType(fn)
				deref.SetChecked(true)
				ast.ReplaceChild(call, call.Callee, deref)
				deref.Operand.SetParent(deref)
				call.Callee = deref
			}
		}
	}
	if !isFn {
		a.errorAt(errors.TYP001, call.Callee.Position(), "cannot call %s", calleeType)
		call.SetResolvedType(a.engine.CanonicalInteger())
		call.SetChecked(true)
		return false
	}

	if !a.checkArity(call, fn) {
		call.SetResolvedType(fn.Return)
		call.SetChecked(true)
		return false
	}
	if !a.insertArgConversions(call, fn) {
		ok = false
	}

	call.SetResolvedType(fn.Return)
	call.SetChecked(true)
	return ok
}

func (a *Analyzer) checkArity(call *ast.Call, fn *types.Function) bool {
	if len(call.Args) != len(fn.Params) {
		a.errorAt(errors.TYP004, call.Position(), "expected %d argument(s), got %d", len(fn.Params), len(call.Args))
		return false
	}
	return true
}

// insertArgConversions checks every argument of call against fn's
// corresponding parameter type, inserting an implicit cast wherever
// Convert scores ScoreConversion and reporting TYP003 wherever it
// scores ScoreNone. Requires len(call.Args) == len(fn.Params); callers
// that haven't already arity-checked (the overload-resolved path, whose
// candidate was already pruned to the right arity) rely on that
// invariant rather than re-checking it.
func (a *Analyzer) insertArgConversions(call *ast.Call, fn *types.Function) bool {
	ok := true
	for i, arg := range call.Args {
		if i >= len(fn.Params) {
			break
		}
		argType := arg.ResolvedType()
		if argType == nil {
			continue
		}
		paramType := fn.Params[i].Type
		switch types.Convert(argType, paramType) {
		case types.ScoreNone:
			a.errorAt(errors.TYP003, arg.Position(), "argument %d: cannot convert %s to %s", i, argType, paramType)
			ok = false
		case types.ScoreConversion:
			if !types.Equals(types.Canonicalize(argType), types.Canonicalize(paramType)) {
				ast.InsertConversion(arg, paramType)
			}
		}
	}
	return ok
}

// dispatchIntrinsic implements spec.md §4.4's lowering step: splice a
// fresh IntrinsicCall into call's former position, carrying call's
// original Args, then delegate to internal/intrinsic for arity/type
// checking.
func (a *Analyzer) dispatchIntrinsic(call *ast.Call, name string, sc *scope.Scope) bool {
	ic := &ast.IntrinsicCall{Base: ast.Base{Span: call.Position()}, Name: name, Args: call.Args}
	if parent := call.Parent(); parent != nil {
		ast.ReplaceChild(parent, call, ic)
	}
	for _, arg := range ic.Args {
		arg.SetParent(ic)
	}
	return a.checkIntrinsicCall(ic, sc)
}

// checkIntrinsicCall implements spec.md §4.2's IntrinsicCall contract by
// delegating to internal/intrinsic's per-name rule table.
func (a *Analyzer) checkIntrinsicCall(ic *ast.IntrinsicCall, sc *scope.Scope) bool {
	resultType, ok := intrinsic.Check(a, a.sink, ic, sc)
	if resultType == nil {
		resultType = a.engine.CanonicalInteger()
	}
	ic.SetResolvedType(resultType)
	ic.SetChecked(true)
	return ok
}

// checkCast implements spec.md §4.2's Cast contract plus the
// reinterpret-cast pointee-size-direction rule and the byte-size/
// alignment-compatibility fallback for non-pointer/non-integer
// reinterprets (SPEC_FULL.md §4, following original_source/ reinterpret
// semantics where spec.md is silent on exact bounds).
func (a *Analyzer) checkCast(cast *ast.Cast, sc *scope.Scope) bool {
	if fnRef, isRef := cast.Expression.(*ast.FunctionReference); isRef && fnRef.Resolved == nil {
		if !a.CheckExpression(fnRef, sc) {
			cast.SetResolvedType(cast.TargetType)
			cast.SetChecked(true)
			return false
		}
	} else if !a.CheckExpression(cast.Expression, sc) {
		cast.SetResolvedType(cast.TargetType)
		cast.SetChecked(true)
		return false
	}

	from := cast.Expression.ResolvedType()
	to := cast.TargetType
	ok := true

	if err := a.engine.CheckType(to); err != nil {
		a.errorAt(errors.UNI001, cast.Position(), "%v", err)
		ok = false
	}

	if types.Convert(from, to) != types.ScoreNone {
		cast.SetResolvedType(to)
		cast.SetChecked(true)
		return ok
	}

	fromPtr, fromIsPtr := types.Canonicalize(from).(*types.Pointer)
	toPtr, toIsPtr := types.Canonicalize(to).(*types.Pointer)
	if fromIsPtr && toIsPtr {
		if !reinterpretPointerCompatible(a, fromPtr, toPtr) {
			a.errorAt(errors.TYP006, cast.Position(), "reinterpret cast from %s to %s widens the pointee beyond its source", from, to)
			ok = false
		}
		cast.SetResolvedType(to)
		cast.SetChecked(true)
		return ok
	}

	if isIntegerType(from) && isIntegerType(to) {
		cast.SetResolvedType(to)
		cast.SetChecked(true)
		return ok
	}

	if isIntegerType(from) && toIsPtr {
		if isIntegerLiteralType(from) {
			if v, isConst := constantIntValue(cast.Expression); isConst && v == 0 {
				cast.SetResolvedType(to)
				cast.SetChecked(true)
				return ok
			}
		}
		a.errorAt(errors.TYP006, cast.Position(), "integer to pointer cast is reserved (only integer_literal(0) is allowed)")
		cast.SetResolvedType(to)
		cast.SetChecked(true)
		return false
	}
	if fromIsPtr && isIntegerType(to) {
		cast.SetResolvedType(to)
		cast.SetChecked(true)
		return ok
	}

	if reinterpretCompatible(a, from, to) {
		cast.SetResolvedType(to)
		cast.SetChecked(true)
		return ok
	}

	a.errorAt(errors.TYP006, cast.Position(), "cannot cast %s to %s", from, to)
	cast.SetResolvedType(to)
	cast.SetChecked(true)
	return false
}

// reinterpretPointerCompatible enforces that a pointer-to-pointer
// reinterpret cast's target pointee is no larger than its source
// pointee (a cast-to-wider-pointee would let reads run past the
// original allocation), with a pointer to void accepted on either side
// as the universal/untyped pointee.
func reinterpretPointerCompatible(a *Analyzer, from, to *types.Pointer) bool {
	if isVoidType(from.Elem) || isVoidType(to.Elem) {
		return true
	}
	fromSize, err1 := a.engine.SizeOf(from.Elem)
	toSize, err2 := a.engine.SizeOf(to.Elem)
	if err1 != nil || err2 != nil {
		return true
	}
	return toSize <= fromSize
}

func isVoidType(t types.Type) bool {
	p, ok := types.Canonicalize(t).(*types.Primitive)
	return ok && p.Kind == types.Void
}

// reinterpretCompatible implements the byte-size/alignment fallback for
// reinterpreting between two non-pointer, non-integer types of the same
// overall size (e.g. u16[2] <-> u8[4]): allowed when the sizes match
// exactly and the larger of the two alignments is an exact multiple of
// the smaller.
func reinterpretCompatible(a *Analyzer, from, to types.Type) bool {
	fromSize, err1 := a.engine.SizeOf(from)
	toSize, err2 := a.engine.SizeOf(to)
	if err1 != nil || err2 != nil || fromSize != toSize {
		return false
	}
	fromAlign, err3 := a.engine.AlignOf(from)
	toAlign, err4 := a.engine.AlignOf(to)
	if err3 != nil || err4 != nil {
		return false
	}
	larger, smaller := fromAlign, toAlign
	if toAlign > fromAlign {
		larger, smaller = toAlign, fromAlign
	}
	if smaller == 0 {
		return false
	}
	return larger%smaller == 0
}

// checkMemberAccess implements spec.md §4.2's Member-access contract:
// an ordinary struct member lookup, except when LHS is a ModuleReference,
// in which case the access is rewritten in place to a FunctionReference
// bound directly to the already-synthesized imported function symbol
// (internal/module.Install installs one *ast.Function per export into
// the module's global scope at LinkageImported).
func (a *Analyzer) checkMemberAccess(ma *ast.MemberAccess, sc *scope.Scope) bool {
	if modRef, isModRef := ma.LHS.(*ast.ModuleReference); isModRef {
		return a.rewriteModuleMemberAccess(ma, modRef, sc)
	}

	if !a.CheckExpression(ma.LHS, sc) {
		ma.SetResolvedType(a.engine.CanonicalInteger())
		ma.SetChecked(true)
		return false
	}

	lhsType := ma.LHS.ResolvedType()
	st, ok := types.Canonicalize(lhsType).(*types.Struct)
	if !ok {
		if ptr, isPtr := types.Canonicalize(lhsType).(*types.Pointer); isPtr {
			if inner, ok2 := types.Canonicalize(ptr.Elem).(*types.Struct); ok2 {
				st = inner
				ok = true
			}
		}
	}
	if !ok {
		a.errorAt(errors.TYP001, ma.LHS.Position(), "%s is not a structure", lhsType)
		ma.SetResolvedType(a.engine.CanonicalInteger())
		ma.SetChecked(true)
		return false
	}

	for _, m := range st.Members {
		if m.Name == ma.Member {
			ma.SetResolvedType(m.Type)
			ma.SetChecked(true)
			return true
		}
	}

	a.errorAt(errors.SEMA002, ma.Position(), "structure %s has no member %q", st.Name, ma.Member)
	ma.SetResolvedType(a.engine.CanonicalInteger())
	ma.SetChecked(true)
	return false
}

// rewriteModuleMemberAccess looks up modRef.Name among the enclosing
// module's imports and ma.Member among that import's exports, then
// splices a bound FunctionReference into ma's former position.
func (a *Analyzer) rewriteModuleMemberAccess(ma *ast.MemberAccess, modRef *ast.ModuleReference, sc *scope.Scope) bool {
	if a.mod == nil {
		a.ice(ma.Position(), "module member access with no enclosing module")
		return false
	}
	imp := a.mod.FindImport(modRef.Name)
	if imp == nil {
		a.errorAt(errors.LNK001, ma.Position(), "module %q is not imported", modRef.Name)
		return false
	}
	exp, found := imp.FindExport(ma.Member)
	if !found {
		a.errorAt(errors.SEMA003, ma.Position(), "module %q has no export %q", modRef.Name, ma.Member)
		return false
	}

	var target ast.Node
	for _, sym := range a.mod.Global.LookupLocal(ma.Member) {
		if fn, isFn := sym.Decl.(*ast.Function); isFn && fn.Linkage == ast.LinkageImported && types.Equals(sym.Type, exp.Type) {
			target = fn
			break
		}
	}
	if target == nil {
		a.ice(ma.Position(), "import installer did not synthesize a symbol for %s.%s", modRef.Name, ma.Member)
		return false
	}

	ref := &ast.FunctionReference{Base: ast.Base{Span: ma.Position()}, Name: ma.Member, Resolved: target}
	ref.SetResolvedType(exp.Type)
	ref.SetChecked(true)

	if parent := ma.Parent(); parent != nil {
		ast.ReplaceChild(parent, ma, ref)
	}
	return true
}
