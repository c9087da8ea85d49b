package check

import (
	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/errors"
	"github.com/kiln-lang/kilnc/internal/scope"
	"github.com/kiln-lang/kilnc/internal/types"
)

type opClass int

const (
	classArithmetic opClass = iota
	classBitwise
	classShift
	classComparison
	classLogical
	classAssign
)

// classOf implements spec.md §4's binary-operator-class table as data:
// every BinaryOp other than OpIndex (handled separately as subscript)
// maps to exactly one class, and checkBinary dispatches purely off this
// table rather than a long if/else chain of individual operators.
func classOf(op ast.BinaryOp) (opClass, bool) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return classArithmetic, true
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		return classBitwise, true
	case ast.OpShl, ast.OpShr:
		return classShift, true
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return classComparison, true
	case ast.OpAnd, ast.OpOr:
		return classLogical, true
	case ast.OpAssign:
		return classAssign, true
	default:
		return 0, false
	}
}

// checkBinary implements spec.md §4.2's Binary contract, dispatching on
// the operator class table above with OpIndex (subscript) handled on
// its own since it is neither a numeric operator nor an assignment.
func (a *Analyzer) checkBinary(n *ast.Binary, sc *scope.Scope) bool {
	if n.Op == ast.OpIndex {
		return a.checkSubscript(n, sc)
	}

	okLHS := a.CheckExpression(n.LHS, sc)
	okRHS := a.CheckExpression(n.RHS, sc)
	if !okLHS || !okRHS {
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}

	class, known := classOf(n.Op)
	if !known {
		a.ice(n.Position(), "unhandled binary operator %s", n.Op)
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}

	switch class {
	case classArithmetic, classBitwise:
		return a.checkArithmeticOrBitwise(n, class)
	case classShift:
		return a.checkShift(n)
	case classComparison:
		return a.checkComparison(n)
	case classLogical:
		return a.checkLogical(n)
	case classAssign:
		return a.checkAssignment(n)
	default:
		a.ice(n.Position(), "unhandled binary operator class for %s", n.Op)
		return false
	}
}

// checkArithmeticOrBitwise implements spec.md §4.2's arithmetic/bitwise
// binary rule: both operands must share (or be unified to) a common
// integer type, with implicit casts inserted on whichever side needs
// widening; bitwise operators additionally require both operands to
// already be integers (no pointer arithmetic in either class).
func (a *Analyzer) checkArithmeticOrBitwise(n *ast.Binary, class opClass) bool {
	ok := true
	lt, rt := n.LHS.ResolvedType(), n.RHS.ResolvedType()

	if class == classBitwise && (!isIntegerType(lt) || !isIntegerType(rt)) {
		a.errorAt(errors.TYP008, n.Position(), "bitwise operator %s requires integer operands, got %s and %s", n.Op, lt, rt)
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}

	common, okc := types.CommonType(lt, rt)
	if !okc {
		a.errorAt(errors.TYP008, n.Position(), "operator %s requires a common integer type, got %s and %s", n.Op, lt, rt)
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}
	if !types.Equals(types.Canonicalize(lt), types.Canonicalize(common)) {
		ast.InsertConversion(n.LHS, common)
	}
	if !types.Equals(types.Canonicalize(rt), types.Canonicalize(common)) {
		ast.InsertConversion(n.RHS, common)
	}

	if (n.Op == ast.OpDiv || n.Op == ast.OpMod) {
		if v, isConst := constantIntValue(n.RHS); isConst && v == 0 {
			a.errorAt(errors.DOM002, n.RHS.Position(), "%s by constant zero", opVerb(n.Op))
			ok = false
		}
	}

	n.SetResolvedType(common)
	n.SetChecked(true)
	return ok
}

func opVerb(op ast.BinaryOp) string {
	if op == ast.OpMod {
		return "modulus"
	}
	return "division"
}

// checkShift implements spec.md §4.2's shift contract: the left operand
// determines the result type, the right operand is promoted to integer
// independently, and a constant shift amount at or beyond the left
// operand's width is flagged.
func (a *Analyzer) checkShift(n *ast.Binary) bool {
	ok := true
	lt := n.LHS.ResolvedType()
	if !isIntegerType(lt) {
		a.errorAt(errors.TYP008, n.LHS.Position(), "shift requires an integer left operand, got %s", lt)
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}

	rt := n.RHS.ResolvedType()
	if isIntegerLiteralType(rt) {
		ast.InsertConversion(n.RHS, a.engine.CanonicalInteger())
	} else if !isIntegerType(rt) {
		a.errorAt(errors.TYP008, n.RHS.Position(), "shift amount must be an integer, got %s", rt)
		ok = false
	}

	if bits, _, isInt := integerLikeInfo(lt); isInt {
		if v, isConst := constantIntValue(n.RHS); isConst && v >= int64(bits) {
			a.errorAt(errors.DOM003, n.RHS.Position(), "shift amount %d is not less than operand width %d", v, bits)
			ok = false
		}
	}

	n.SetResolvedType(lt)
	n.SetChecked(true)
	return ok
}

// checkComparison implements spec.md §4.2's comparison contract:
// operands must be a pair of integers or a pair of pointers (convertible
// to a common type), result is always the canonical integer (there is
// no dedicated boolean type).
func (a *Analyzer) checkComparison(n *ast.Binary) bool {
	lt, rt := n.LHS.ResolvedType(), n.RHS.ResolvedType()
	canonical := a.engine.CanonicalInteger()

	if common, ok := types.CommonType(lt, rt); ok {
		if !types.Equals(types.Canonicalize(lt), types.Canonicalize(common)) {
			ast.InsertConversion(n.LHS, common)
		}
		if !types.Equals(types.Canonicalize(rt), types.Canonicalize(common)) {
			ast.InsertConversion(n.RHS, common)
		}
		n.SetResolvedType(canonical)
		n.SetChecked(true)
		return true
	}

	_, lIsPtr := types.Canonicalize(lt).(*types.Pointer)
	_, rIsPtr := types.Canonicalize(rt).(*types.Pointer)
	if lIsPtr && rIsPtr && types.Convert(rt, lt) != types.ScoreNone {
		n.SetResolvedType(canonical)
		n.SetChecked(true)
		return true
	}
	if lIsPtr && rIsPtr && types.Convert(lt, rt) != types.ScoreNone {
		ast.InsertConversion(n.LHS, rt)
		n.SetResolvedType(canonical)
		n.SetChecked(true)
		return true
	}

	a.errorAt(errors.TYP008, n.Position(), "cannot compare %s and %s", lt, rt)
	n.SetResolvedType(canonical)
	n.SetChecked(true)
	return false
}

// checkLogical implements && / || over integer operands, yielding the
// canonical integer — an ambient extension beyond spec.md's literal
// operator list, following the same "no dedicated boolean type" shape
// as comparisons.
func (a *Analyzer) checkLogical(n *ast.Binary) bool {
	ok := true
	lt, rt := n.LHS.ResolvedType(), n.RHS.ResolvedType()
	canonical := a.engine.CanonicalInteger()

	if isIntegerLiteralType(lt) {
		ast.InsertConversion(n.LHS, canonical)
	} else if !isIntegerType(lt) {
		a.errorAt(errors.TYP008, n.LHS.Position(), "logical operator %s requires an integer operand, got %s", n.Op, lt)
		ok = false
	}
	if isIntegerLiteralType(rt) {
		ast.InsertConversion(n.RHS, canonical)
	} else if !isIntegerType(rt) {
		a.errorAt(errors.TYP008, n.RHS.Position(), "logical operator %s requires an integer operand, got %s", n.Op, rt)
		ok = false
	}

	n.SetResolvedType(canonical)
	n.SetChecked(true)
	return ok
}

// checkSubscript implements spec.md §4.2's subscript contract: an
// array-or-pointer left-hand side, an integer index, with a constant
// out-of-bounds index against a fixed-size array flagged and a
// dereference of an incomplete pointee rejected. Unlike spec.md's
// literal "yields a pointer to the element type" wording, the result
// here is the element type directly, for consistency with how every
// other node's ResolvedType() is used as a direct value type throughout
// internal/overload and the rest of this package (see DESIGN.md).
func (a *Analyzer) checkSubscript(n *ast.Binary, sc *scope.Scope) bool {
	okLHS := a.CheckExpression(n.LHS, sc)
	okRHS := a.CheckExpression(n.RHS, sc)
	if !okLHS || !okRHS {
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}

	lt := n.LHS.ResolvedType()
	rt := n.RHS.ResolvedType()
	if isIntegerLiteralType(rt) {
		ast.InsertConversion(n.RHS, a.engine.CanonicalInteger())
	} else if !isIntegerType(rt) {
		a.errorAt(errors.TYP008, n.RHS.Position(), "subscript index must be an integer, got %s", rt)
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}

	var elem types.Type
	switch v := types.Canonicalize(lt).(type) {
	case *types.Array:
		elem = v.Elem
		if idx, isConst := constantIntValue(n.RHS); isConst && (idx < 0 || idx >= v.Count) {
			a.errorAt(errors.DOM004, n.RHS.Position(), "constant index %d out of bounds for array of size %d", idx, v.Count)
			n.SetResolvedType(elem)
			n.SetChecked(true)
			return false
		}
	case *types.Pointer:
		if !types.IsComplete(v.Elem) {
			a.errorAt(errors.INC002, n.Position(), "cannot subscript a pointer to incomplete type %s", v.Elem)
			n.SetResolvedType(a.engine.CanonicalInteger())
			n.SetChecked(true)
			return false
		}
		elem = v.Elem
	default:
		a.errorAt(errors.TYP008, n.LHS.Position(), "cannot subscript %s", lt)
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}

	n.SetResolvedType(elem)
	n.SetChecked(true)
	return true
}

// checkAssignment implements spec.md §4.2's assignment contract: the
// left-hand side must be an l-value (and, if it denotes a function, is
// rejected — functions are not assignable), the right-hand side must be
// convertible to the left-hand side's type, and the expression's own
// type is void (assignment is a statement, not a value-producing
// expression elsewhere in the language).
func (a *Analyzer) checkAssignment(n *ast.Binary) bool {
	ok := true
	if !isLvalue(n.LHS) {
		a.errorAt(errors.TYP005, n.LHS.Position(), "left-hand side of assignment is not an l-value")
		ok = false
	}

	lt := n.LHS.ResolvedType()
	if _, isFn := types.Canonicalize(lt).(*types.Function); isFn {
		a.errorAt(errors.TYP005, n.LHS.Position(), "a function is not assignable")
		ok = false
	}

	rt := n.RHS.ResolvedType()
	switch types.Convert(rt, lt) {
	case types.ScoreNone:
		a.errorAt(errors.TYP001, n.Position(), "cannot assign %s to %s", rt, lt)
		ok = false
	case types.ScoreConversion:
		if !types.Equals(types.Canonicalize(rt), types.Canonicalize(lt)) {
			ast.InsertConversion(n.RHS, lt)
		}
	}

	n.SetResolvedType(types.NewVoid())
	n.SetChecked(true)
	return ok
}

// checkUnary implements spec.md §4.2's Unary contract. OpAddressOf on
// an unresolved function reference is special-cased: internal/overload's
// resolveWithParent already detects the `&F` shape, splices F into this
// node's own parent (discarding the Unary node entirely, the "function
// designator decays to a value equivalent to its own pointer type"
// rule) and restarts resolution, so checkUnary must not attempt its own
// address-of logic in that case — it delegates straight to
// CheckExpression on the operand, and the splice happens beneath it.
func (a *Analyzer) checkUnary(n *ast.Unary, sc *scope.Scope) bool {
	if n.Op == ast.OpAddressOf {
		if ref, isRef := n.Operand.(*ast.FunctionReference); isRef && ref.Resolved == nil {
			return a.CheckExpression(ref, sc)
		}
	}

	ok := a.CheckExpression(n.Operand, sc)
	if !ok {
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}
	opType := n.Operand.ResolvedType()

	switch n.Op {
	case ast.OpAddressOf:
		if !isLvalue(n.Operand) {
			a.errorAt(errors.TYP005, n.Operand.Position(), "cannot take the address of a non-l-value")
			n.SetResolvedType(a.engine.CanonicalInteger())
			n.SetChecked(true)
			return false
		}
		n.SetResolvedType(types.NewPointer(opType))
		n.SetChecked(true)
		return true

	case ast.OpDereference:
		ptr, isPtr := types.Canonicalize(opType).(*types.Pointer)
		if !isPtr {
			a.errorAt(errors.TYP001, n.Operand.Position(), "cannot dereference %s", opType)
			n.SetResolvedType(a.engine.CanonicalInteger())
			n.SetChecked(true)
			return false
		}
		if !types.IsComplete(ptr.Elem) {
			a.errorAt(errors.INC002, n.Position(), "cannot dereference a pointer to incomplete type %s", ptr.Elem)
			n.SetResolvedType(a.engine.CanonicalInteger())
			n.SetChecked(true)
			return false
		}
		n.SetResolvedType(ptr.Elem)
		n.SetChecked(true)
		return true

	case ast.OpNot:
		// Stands in for spec.md's bitwise "~": the AST's UnaryOp enum
		// has no dedicated tilde operator.
		if !isIntegerType(opType) {
			a.errorAt(errors.TYP001, n.Operand.Position(), "bitwise not requires an integer operand, got %s", opType)
			n.SetResolvedType(a.engine.CanonicalInteger())
			n.SetChecked(true)
			return false
		}
		n.SetResolvedType(opType)
		n.SetChecked(true)
		return true

	case ast.OpNegate:
		if !isIntegerType(opType) {
			a.errorAt(errors.TYP001, n.Operand.Position(), "negation requires an integer operand, got %s", opType)
			n.SetResolvedType(a.engine.CanonicalInteger())
			n.SetChecked(true)
			return false
		}
		n.SetResolvedType(opType)
		n.SetChecked(true)
		return true

	default:
		a.ice(n.Position(), "unhandled unary operator %s", n.Op)
		n.SetResolvedType(a.engine.CanonicalInteger())
		n.SetChecked(true)
		return false
	}
}
