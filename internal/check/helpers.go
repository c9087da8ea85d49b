package check

import (
	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/types"
)

// isLvalue reports whether n denotes a storage location that may be
// assigned through or have its address taken, per spec.md §4.2's
// Unary/Binary(assignment) contracts. It is a structural check over the
// node kind rather than a types.Reference check, consistent with
// internal/overload's own direct use of ResolvedType() without any
// Reference-stripping step.
func isLvalue(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.VariableReference:
		return true
	case *ast.Binary:
		return v.Op == ast.OpIndex
	case *ast.Unary:
		return v.Op == ast.OpDereference
	case *ast.MemberAccess:
		return isLvalue(v.LHS)
	default:
		return false
	}
}

func isIntegerType(t types.Type) bool {
	_, _, ok := integerLikeInfo(t)
	return ok
}

// integerLikeInfo mirrors internal/types.asIntegerLike, which is
// unexported; internal/check needs the same classification for its own
// diagnostics (constant shift/divide checks) so it is reimplemented
// here against the exported Integer/Primitive shapes rather than
// duplicating unexported package internals.
func integerLikeInfo(t types.Type) (bits int, signed bool, ok bool) {
	switch v := types.Canonicalize(t).(type) {
	case *types.Integer:
		return v.Bits, v.Signed, true
	case *types.Primitive:
		switch v.Kind {
		case types.Byte:
			return 8, false, true
		case types.IntegerCanonical:
			return int(v.ByteSize) * 8, v.Signed, true
		case types.IntegerLiteralKind:
			return 0, false, true
		}
	}
	return 0, false, false
}

func isIntegerLiteralType(t types.Type) bool {
	p, ok := types.Canonicalize(t).(*types.Primitive)
	return ok && p.Kind == types.IntegerLiteralKind
}

// constantIntValue extracts the compile-time integer value of n when n
// is (after stripping an inserted implicit cast) an integer literal,
// for the constant-zero divide/shift/subscript-bounds diagnostics.
func constantIntValue(n ast.Node) (int64, bool) {
	switch v := n.(type) {
	case *ast.Literal:
		if v.LitKind == ast.LiteralInteger {
			return v.Int, true
		}
	case *ast.Cast:
		return constantIntValue(v.Expression)
	}
	return 0, false
}
