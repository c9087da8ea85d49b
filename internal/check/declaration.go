package check

import (
	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/errors"
	"github.com/kiln-lang/kilnc/internal/scope"
	"github.com/kiln-lang/kilnc/internal/types"
)

// hoistDeclarations pre-declares every top-level function and structure
// in decls into sc before any of decls is checked, so that a forward
// call or a self-referential struct member resolves correctly
// regardless of source order. spec.md §4.3 step 1 collects candidates
// by walking the scope chain without regard to where in the block the
// reference textually sits; hoisting is what makes that true rather
// than accidental.
func (a *Analyzer) hoistDeclarations(decls []ast.Node, sc *scope.Scope) {
	for _, d := range decls {
		switch v := d.(type) {
		case *ast.Function:
			if lookupHoistedFunction(sc, v) != nil {
				continue
			}
			params := make([]types.Param, len(v.Params))
			for i, p := range v.Params {
				params[i] = types.Param{Name: p.Name, Type: p.Type, Pos: p.Span.Start}
			}
			ret := v.ReturnType
			if ret == nil {
				ret = types.NewVoid()
			}
			fnType := types.NewFunction(ret, params, v.Attrs)
			sc.Declare(&scope.Symbol{Name: v.Name, Kind: scope.SymbolFunction, Type: fnType, Decl: v})
		case *ast.StructureDeclaration:
			if lookupHoistedStruct(sc, v) != nil {
				continue
			}
			st := types.NewStruct(v.Name, nil)
			st.MarkMembersPending()
			sc.Declare(&scope.Symbol{Name: v.Name, Kind: scope.SymbolStructure, Type: st, Decl: v})
		}
	}
}

func lookupHoistedFunction(sc *scope.Scope, fn *ast.Function) *types.Function {
	for _, sym := range sc.LookupLocal(fn.Name) {
		if sym.Decl == ast.Node(fn) {
			if ft, ok := sym.Type.(*types.Function); ok {
				return ft
			}
		}
	}
	return nil
}

func lookupHoistedStruct(sc *scope.Scope, sd *ast.StructureDeclaration) *types.Struct {
	for _, sym := range sc.LookupLocal(sd.Name) {
		if sym.Decl == ast.Node(sd) {
			if st, ok := sym.Type.(*types.Struct); ok {
				return st
			}
		}
	}
	return nil
}

// isOrContainsFunctionType reports whether t is itself a function type
// or an array whose element, recursively, is — spec.md §4.2's
// "declarations of ... function types (arrays of either likewise
// forbidden)" rule, kept separate from types.IsComplete since a
// function type is not otherwise "incomplete".
func isOrContainsFunctionType(t types.Type) bool {
	switch v := types.Canonicalize(t).(type) {
	case *types.Function:
		return true
	case *types.Array:
		return isOrContainsFunctionType(v.Elem)
	default:
		return false
	}
}

// checkDeclaration implements spec.md §4.2's Declaration contract.
func (a *Analyzer) checkDeclaration(decl *ast.Declaration, sc *scope.Scope) bool {
	ok := true

	if decl.Initializer != nil {
		if lit, isArrayLit := decl.Initializer.(*ast.Literal); isArrayLit && lit.LitKind == ast.LiteralArray && decl.AnnotatedType != nil {
			if arrType, isArr := types.Canonicalize(decl.AnnotatedType).(*types.Array); isArr {
				if !a.checkLiteral(lit, sc, arrType) {
					ok = false
				}
			} else if !a.CheckExpression(decl.Initializer, sc) {
				ok = false
			}
		} else if !a.CheckExpression(decl.Initializer, sc) {
			ok = false
		}
	}

	var declType types.Type
	switch {
	case decl.AnnotatedType == nil && decl.Initializer == nil:
		a.errorAt(errors.TYP001, decl.Position(), "declaration of %q has no annotated type and no initializer", decl.Name)
		decl.SetChecked(true)
		return false
	case decl.AnnotatedType == nil:
		initType := decl.Initializer.ResolvedType()
		if prim, isLit := types.Canonicalize(initType).(*types.Primitive); isLit && prim.Kind == types.IntegerLiteralKind {
			declType = a.engine.CanonicalInteger()
			if lit, isLitNode := decl.Initializer.(*ast.Literal); isLitNode {
				lit.SetResolvedType(declType)
			} else {
				ast.InsertConversion(decl.Initializer, declType)
			}
		} else {
			declType = initType
		}
	default:
		declType = decl.AnnotatedType
		if decl.Initializer != nil && decl.Initializer.ResolvedType() != nil {
			initType := decl.Initializer.ResolvedType()
			score := types.Convert(initType, declType)
			switch score {
			case types.ScoreNone:
				a.errorAt(errors.TYP001, decl.Initializer.Position(), "cannot convert %s to %s", initType, declType)
				ok = false
			case types.ScoreConversion:
				lit, isLitNode := decl.Initializer.(*ast.Literal)
				if prim, isPrim := types.Canonicalize(initType).(*types.Primitive); isLitNode && isPrim && prim.Kind == types.IntegerLiteralKind {
					lit.SetResolvedType(declType)
				} else if !types.Equals(types.Canonicalize(initType), types.Canonicalize(declType)) {
					ast.InsertConversion(decl.Initializer, declType)
				}
			}
		}
	}

	if err := a.engine.CheckType(declType); err != nil {
		a.errorAt(errors.UNI001, decl.Position(), "%v", err)
		ok = false
	}
	if !types.IsComplete(declType) {
		a.errorAt(errors.INC001, decl.Position(), "declaration of %q has incomplete type %s", decl.Name, declType)
		ok = false
	}
	if isOrContainsFunctionType(declType) {
		a.errorAt(errors.TYP001, decl.Position(), "declaration of %q may not have function type; use a pointer to function", decl.Name)
		ok = false
	}

	decl.SetResolvedType(declType)
	decl.SetChecked(true)
	sc.Declare(&scope.Symbol{Name: decl.Name, Kind: scope.SymbolVariable, Type: declType, Decl: decl})
	return ok
}

// checkIf implements spec.md §4.2's If contract.
func (a *Analyzer) checkIf(n *ast.If, sc *scope.Scope) bool {
	ok := a.CheckExpression(n.Condition, sc)
	if !a.CheckExpression(n.Then, sc) {
		ok = false
	}
	if n.Else != nil && !a.CheckExpression(n.Else, sc) {
		ok = false
	}

	result := types.Type(types.NewVoid())
	if n.Else != nil {
		thenType, elseType := n.Then.ResolvedType(), n.Else.ResolvedType()
		if thenType != nil && elseType != nil {
			if common, okc := types.CommonType(thenType, elseType); okc {
				result = common
			} else if types.Equals(types.Canonicalize(thenType), types.Canonicalize(elseType)) {
				result = thenType
			}
		}
	}
	n.SetResolvedType(result)
	n.SetChecked(true)
	return ok
}

// checkWhile implements spec.md §4.2's While contract.
func (a *Analyzer) checkWhile(n *ast.While, sc *scope.Scope) bool {
	ok := a.CheckExpression(n.Condition, sc)
	if !a.CheckExpression(n.Body, sc) {
		ok = false
	}
	n.SetResolvedType(types.NewVoid())
	n.SetChecked(true)
	return ok
}

// checkFor implements spec.md §4.2's For contract: its own nested scope
// (the init clause's declaration is visible to condition/post/body),
// condition required convertible to integer.
func (a *Analyzer) checkFor(n *ast.For, sc *scope.Scope) bool {
	inner := scope.New(sc)
	ok := true
	if n.Init != nil && !a.CheckExpression(n.Init, inner) {
		ok = false
	}
	if n.Condition != nil {
		if !a.CheckExpression(n.Condition, inner) {
			ok = false
		} else if condType := n.Condition.ResolvedType(); condType != nil {
			if types.Convert(condType, a.engine.CanonicalInteger()) == types.ScoreNone {
				a.errorAt(errors.TYP001, n.Condition.Position(), "for-loop condition must be convertible to integer, got %s", condType)
				ok = false
			}
		}
	}
	if n.Post != nil && !a.CheckExpression(n.Post, inner) {
		ok = false
	}
	if !a.CheckExpression(n.Body, inner) {
		ok = false
	}
	n.SetResolvedType(types.NewVoid())
	n.SetChecked(true)
	return ok
}

func enclosingFunction(n ast.Node) *ast.Function {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if fn, ok := p.(*ast.Function); ok {
			return fn
		}
	}
	return nil
}

// checkReturn implements spec.md §4.2's Return contract.
func (a *Analyzer) checkReturn(n *ast.Return, sc *scope.Scope) bool {
	ok := true
	if n.Value != nil && !a.CheckExpression(n.Value, sc) {
		ok = false
	}

	fn := enclosingFunction(n)
	if fn == nil {
		a.ice(n.Position(), "return statement outside of any function")
		n.SetResolvedType(types.NewVoid())
		n.SetChecked(true)
		return false
	}

	retType := fn.ReturnType
	if retType == nil {
		retType = types.NewVoid()
	}
	isVoid := types.Equals(types.Canonicalize(retType), types.NewVoid())

	switch {
	case isVoid && n.Value != nil:
		a.errorAt(errors.TYP001, n.Value.Position(), "a void function may not return a value")
		ok = false
	case !isVoid && n.Value == nil:
		a.errorAt(errors.TYP001, n.Position(), "function must return a value of type %s", retType)
		ok = false
	case !isVoid && n.Value.ResolvedType() != nil:
		valType := n.Value.ResolvedType()
		switch types.Convert(valType, retType) {
		case types.ScoreNone:
			a.errorAt(errors.TYP002, n.Value.Position(), "cannot return %s as %s", valType, retType)
			ok = false
		case types.ScoreConversion:
			ast.InsertConversion(n.Value, retType)
		}
	}

	n.SetResolvedType(types.NewVoid())
	n.SetChecked(true)
	return ok
}

// checkFunction implements spec.md §4.2's Function contract.
func (a *Analyzer) checkFunction(fn *ast.Function, sc *scope.Scope) bool {
	ok := true
	if err := fn.Attrs.Validate(); err != nil {
		a.errorAt(errors.TYP001, fn.Position(), "%v", err)
		ok = false
	}

	retType := fn.ReturnType
	if retType == nil {
		retType = types.NewVoid()
	}

	fnType := lookupHoistedFunction(sc, fn)
	if fnType == nil {
		params := make([]types.Param, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = types.Param{Name: p.Name, Type: p.Type, Pos: p.Span.Start}
		}
		fnType = types.NewFunction(retType, params, fn.Attrs)
		sc.Declare(&scope.Symbol{Name: fn.Name, Kind: scope.SymbolFunction, Type: fnType, Decl: fn})
	}

	if err := a.engine.CheckType(fnType); err != nil {
		a.errorAt(errors.UNI001, fn.Position(), "%v", err)
		ok = false
	}
	for _, p := range fnType.Params {
		if !types.IsComplete(p.Type) {
			a.errorAt(errors.INC003, fn.Position(), "parameter %q has incomplete type %s", p.Name, p.Type)
			ok = false
		}
	}

	if fn.Attrs.Used {
		fn.Linkage = ast.LinkageUsed
	}
	if fn.Attrs.Discardable && types.Equals(types.Canonicalize(retType), types.NewVoid()) {
		a.warnAt(errors.SEMA005, fn.Position(), "discardable has no effect on a void-returning function")
	}

	if fn.Body != nil {
		paramScope := scope.New(sc)
		for _, p := range fn.Params {
			paramScope.Declare(&scope.Symbol{Name: p.Name, Kind: scope.SymbolVariable, Type: p.Type, Decl: fn})
		}
		if !a.CheckExpression(fn.Body, paramScope) {
			ok = false
		} else if bodyType := fn.Body.ResolvedType(); bodyType != nil {
			if types.Convert(bodyType, retType) == types.ScoreNone {
				a.errorAt(errors.TYP002, fn.Position(), "function body type %s not convertible to declared return type %s", bodyType, retType)
				ok = false
			}
		}
	}

	fn.SetResolvedType(fnType)
	fn.SetChecked(true)
	return ok
}

// checkStructureDeclaration implements spec.md §3/§4.1's struct layout
// contract at the declaration site: members are typechecked, the
// struct is marked complete, and its layout is computed.
func (a *Analyzer) checkStructureDeclaration(sd *ast.StructureDeclaration, sc *scope.Scope) bool {
	ok := true
	st := lookupHoistedStruct(sc, sd)
	if st == nil {
		st = types.NewStruct(sd.Name, nil)
		st.MarkMembersPending()
		sc.Declare(&scope.Symbol{Name: sd.Name, Kind: scope.SymbolStructure, Type: st, Decl: sd})
	}

	members := make([]types.Member, len(sd.Members))
	for i, m := range sd.Members {
		if !types.IsComplete(m.Type) {
			a.errorAt(errors.INC001, m.Span, "member %q has incomplete type %s", m.Name, m.Type)
			ok = false
		}
		if isOrContainsFunctionType(m.Type) {
			a.errorAt(errors.TYP001, m.Span, "member %q may not have function type", m.Name)
			ok = false
		}
		members[i] = types.Member{Name: m.Name, Type: m.Type}
	}
	st.Members = members
	st.MarkMembersReady()

	if err := a.engine.CheckType(st); err != nil {
		a.errorAt(errors.TYP001, sd.Position(), "%v", err)
		ok = false
	}

	sd.SetResolvedType(st)
	sd.SetChecked(true)
	return ok
}
