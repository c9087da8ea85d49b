// Package ast defines the syntax tree nodes the semantic analyzer
// consumes and mutates in place. The parser (out of scope for this
// module, spec.md §1) is responsible for producing a tree of these
// nodes with Parent back-links and Scope already wired; the analyzer
// never constructs a tree from source text.
//
// Node shape and the Pos/Span idiom follow the teacher's
// internal/ast/ast.go (a Node interface with String()/Position()), but
// the node kinds themselves are kiln's imperative statement/expression
// set (spec.md §3), not the teacher's expression-only language.
package ast

import (
	"github.com/kiln-lang/kilnc/internal/source"
	"github.com/kiln-lang/kilnc/internal/types"
)

// Pos and Span are aliases of internal/source's position types, kept
// under these names for readability at AST call sites.
type Pos = source.Pos
type Span = source.Span

// Kind discriminates Node variants. The analyzer's expression checker
// (internal/check) is total over this set; an unrecognized Kind is an
// internal compiler error (spec.md §4.2).
type Kind int

const (
	KindInvalid Kind = iota
	KindRoot
	KindModuleReference
	KindFunction
	KindDeclaration
	KindIf
	KindWhile
	KindFor
	KindReturn
	KindBlock
	KindCall
	KindIntrinsicCall
	KindCast
	KindBinary
	KindUnary
	KindLiteral
	KindVariableReference
	KindFunctionReference
	KindMemberAccess
	KindStructureDeclaration
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindModuleReference:
		return "ModuleReference"
	case KindFunction:
		return "Function"
	case KindDeclaration:
		return "Declaration"
	case KindIf:
		return "If"
	case KindWhile:
		return "While"
	case KindFor:
		return "For"
	case KindReturn:
		return "Return"
	case KindBlock:
		return "Block"
	case KindCall:
		return "Call"
	case KindIntrinsicCall:
		return "IntrinsicCall"
	case KindCast:
		return "Cast"
	case KindBinary:
		return "Binary"
	case KindUnary:
		return "Unary"
	case KindLiteral:
		return "Literal"
	case KindVariableReference:
		return "VariableReference"
	case KindFunctionReference:
		return "FunctionReference"
	case KindMemberAccess:
		return "MemberAccess"
	case KindStructureDeclaration:
		return "StructureDeclaration"
	default:
		return "Invalid"
	}
}

// Node is the interface implemented by every tree node. Unlike the
// teacher's Node (whose variants are plain structs satisfying a marker
// interface for an expression-only language), kiln's nodes carry two
// pieces of checker-owned state directly on the common Base: a cached
// resolved Type and a TypeChecked idempotence flag (spec.md §4.2: "the
// checker must be safe to invoke more than once on the same node"),
// plus a Parent back-link the rewrite helper below needs to splice
// conversions and address-of nodes in place.
type Node interface {
	Kind() Kind
	Position() Span
	Parent() Node
	SetParent(Node)
	ResolvedType() types.Type
	SetResolvedType(types.Type)
	Checked() bool
	SetChecked(bool)
}

// Base is embedded by every concrete node type and implements the
// common bookkeeping half of Node. Concrete types only need to
// implement Kind() themselves (each has a fixed kind) plus expose their
// own child fields.
type Base struct {
	Span Span

	parent  Node
	typ     types.Type
	checked bool
}

func (b *Base) Position() Span            { return b.Span }
func (b *Base) Parent() Node              { return b.parent }
func (b *Base) SetParent(p Node)          { b.parent = p }
func (b *Base) ResolvedType() types.Type  { return b.typ }
func (b *Base) SetResolvedType(t types.Type) { b.typ = t }
func (b *Base) Checked() bool             { return b.checked }
func (b *Base) SetChecked(c bool)         { b.checked = c }

// Root is the top-level node of a module's tree: an ordered list of
// top-level declarations (functions, structure declarations, module
// references).
type Root struct {
	Base
	Declarations []Node
}

func (n *Root) Kind() Kind { return KindRoot }

// ModuleReference names another module this module imports from
// (spec.md §6); resolution of its exports is internal/module's job, not
// the AST's.
type ModuleReference struct {
	Base
	Name string
}

func (n *ModuleReference) Kind() Kind { return KindModuleReference }

// Linkage classifies where a Function's body (if any) lives, per
// spec.md §3's attribute-set note ("`used` overrides linkage to
// USED"). LinkageImported marks a function node synthesized for an
// imported export (internal/module installs these with no body);
// LinkageUsed marks one whose `used` attribute forces emission
// regardless of whether anything in this module calls it.
type Linkage int

const (
	LinkageDefault Linkage = iota
	LinkageImported
	LinkageUsed
)

// Function declares a named function: parameter list, return type
// annotation, attributes, and body. ResolvedType, once checked, holds
// the *types.Function this declaration installs into scope.
type Function struct {
	Base
	Name          string
	Params        []FunctionParam
	ReturnType    types.Type
	Attrs         types.Attributes
	Body          Node // *Block, or nil for an extern/declaration-only function
	IsIntrinsic   bool
	IntrinsicName string // e.g. "__builtin_syscall"
	Linkage       Linkage
}

func (n *Function) Kind() Kind { return KindFunction }

// FunctionParam is one declared parameter of a Function node.
type FunctionParam struct {
	Name string
	Type types.Type
	Span Span
}

// Declaration introduces a local variable: `name : Type = initializer`
// or `name := initializer` (Type nil, inferred from the initializer).
type Declaration struct {
	Base
	Name         string
	AnnotatedType types.Type // nil if inferred
	Initializer  Node       // nil for a declaration with no initializer
}

func (n *Declaration) Kind() Kind { return KindDeclaration }

// If is a conditional statement with an optional else branch.
type If struct {
	Base
	Condition Node
	Then      Node // *Block
	Else      Node // *Block, or nil
}

func (n *If) Kind() Kind { return KindIf }

// While is a pre-tested loop.
type While struct {
	Base
	Condition Node
	Body      Node // *Block
}

func (n *While) Kind() Kind { return KindWhile }

// For is a three-clause counted loop; any clause may be nil.
type For struct {
	Base
	Init      Node
	Condition Node
	Post      Node
	Body      Node // *Block
}

func (n *For) Kind() Kind { return KindFor }

// Return exits the enclosing function, optionally with a value.
type Return struct {
	Base
	Value Node // nil for a bare `return`
}

func (n *Return) Kind() Kind { return KindReturn }

// Block is an ordered list of statements introducing its own scope.
type Block struct {
	Base
	Statements []Node
}

func (n *Block) Kind() Kind { return KindBlock }

// Call invokes a callee expression (normally a FunctionReference, but
// may be any expression whose resolved type is a *types.Function, e.g.
// a function pointer stored in a variable) with an ordered argument
// list. OverloadCandidates holds the candidate set collected for this
// call site during resolution (spec.md §4.3); it is nil until
// internal/overload has run.
type Call struct {
	Base
	Callee Node
	Args   []Node

	OverloadCandidates []types.Type // informational snapshot for diagnostics
}

func (n *Call) Kind() Kind { return KindCall }

// IntrinsicCall invokes a compiler intrinsic by name rather than a
// resolved function symbol (spec.md §4.4); Name is one of the
// `__builtin_*` identifiers internal/intrinsic recognizes.
type IntrinsicCall struct {
	Base
	Name string
	Args []Node
}

func (n *IntrinsicCall) Kind() Kind { return KindIntrinsicCall }

// Cast reinterprets or converts Expression's type to TargetType
// (spec.md §4.1/§4.2's explicit-cast rules, broader than implicit
// Convert scoring: e.g. pointer-to-pointer reinterpretation).
type Cast struct {
	Base
	TargetType types.Type
	Expression Node
}

func (n *Cast) Kind() Kind { return KindCast }

// BinaryOp identifies a Binary node's operator.
type BinaryOp int

const (
	OpInvalid BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpAssign
	OpIndex
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpAssign:
		return "="
	case OpIndex:
		return "[]"
	default:
		return "<invalid op>"
	}
}

// Binary is a binary operator expression, including assignment (which
// requires its LHS to be an l-value; spec.md §4.2).
type Binary struct {
	Base
	Op  BinaryOp
	LHS Node
	RHS Node
}

func (n *Binary) Kind() Kind { return KindBinary }

// UnaryOp identifies a Unary node's operator.
type UnaryOp int

const (
	OpUnaryInvalid UnaryOp = iota
	OpNot
	OpNegate
	OpAddressOf
	OpDereference
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNegate:
		return "-"
	case OpAddressOf:
		return "&"
	case OpDereference:
		return "@"
	default:
		return "<invalid unary op>"
	}
}

// Unary is a unary operator expression.
type Unary struct {
	Base
	Op      UnaryOp
	Operand Node
}

func (n *Unary) Kind() Kind { return KindUnary }

// LiteralKind discriminates Literal node payloads.
type LiteralKind int

const (
	LiteralInvalid LiteralKind = iota
	LiteralInteger
	LiteralString
	LiteralBool
	LiteralArray
)

// Literal is a constant value appearing directly in source.
type Literal struct {
	Base
	LitKind  LiteralKind
	Int      int64  // valid when LitKind == LiteralInteger
	Str      string // valid when LitKind == LiteralString
	Bool     bool   // valid when LitKind == LiteralBool
	Elements []Node // valid when LitKind == LiteralArray
}

func (n *Literal) Kind() Kind { return KindLiteral }

// VariableReference names a local variable or parameter by identifier;
// resolution (which declaration it refers to) is a scope lookup, not an
// overload resolution (spec.md §4.3 only applies to function names).
type VariableReference struct {
	Base
	Name   string
	Target Node // the *Declaration or *FunctionParam-introducing node it resolves to
}

func (n *VariableReference) Kind() Kind { return KindVariableReference }

// FunctionReference names a function by identifier; it may denote a set
// of overloaded candidates until internal/overload narrows it to one
// (spec.md §4.3). Resolved holds the chosen *Function declaration node
// once resolution succeeds.
type FunctionReference struct {
	Base
	Name     string
	Resolved Node
}

func (n *FunctionReference) Kind() Kind { return KindFunctionReference }

// MemberAccess projects a member out of a struct-typed expression:
// `lhs.member`.
type MemberAccess struct {
	Base
	LHS    Node
	Member string
}

func (n *MemberAccess) Kind() Kind { return KindMemberAccess }

// StructureDeclaration declares a named struct type and installs it
// into scope as a *types.Struct.
type StructureDeclaration struct {
	Base
	Name    string
	Members []StructureMember
}

func (n *StructureDeclaration) Kind() Kind { return KindStructureDeclaration }

// StructureMember is one member entry of a StructureDeclaration.
type StructureMember struct {
	Name string
	Type types.Type
	Span Span
}

// ReplaceChild rewrites old with new in whichever field of parent holds
// it, fixing up new's Parent link and leaving new's position in any
// enclosing slice unchanged (spec.md §9: "a single arena-aware rewrite
// helper with invariants: parent fix-up, old node's place in its
// parent's child list preserved"). It is the only sanctioned way to
// splice a conversion or address-of node into the tree; callers must
// not mutate child fields directly, or the Parent back-links silently
// go stale.
//
// ReplaceChild panics (an internal compiler error, spec.md §4.2's ICE
// category) if old is not actually a child of parent: that indicates a
// checker bug, not a user-facing condition.
func ReplaceChild(parent, old, repl Node) {
	if repl != nil {
		repl.SetParent(parent)
	}
	switch p := parent.(type) {
	case *Root:
		if replaceInSlice(p.Declarations, old, repl) {
			return
		}
	case *Function:
		if p.Body == old {
			p.Body = repl
			return
		}
	case *Declaration:
		if p.Initializer == old {
			p.Initializer = repl
			return
		}
	case *If:
		switch old {
		case p.Condition:
			p.Condition = repl
			return
		case p.Then:
			p.Then = repl
			return
		case p.Else:
			p.Else = repl
			return
		}
	case *While:
		switch old {
		case p.Condition:
			p.Condition = repl
			return
		case p.Body:
			p.Body = repl
			return
		}
	case *For:
		switch old {
		case p.Init:
			p.Init = repl
			return
		case p.Condition:
			p.Condition = repl
			return
		case p.Post:
			p.Post = repl
			return
		case p.Body:
			p.Body = repl
			return
		}
	case *Return:
		if p.Value == old {
			p.Value = repl
			return
		}
	case *Block:
		if replaceInSlice(p.Statements, old, repl) {
			return
		}
	case *Call:
		if p.Callee == old {
			p.Callee = repl
			return
		}
		if replaceInSlice(p.Args, old, repl) {
			return
		}
	case *IntrinsicCall:
		if replaceInSlice(p.Args, old, repl) {
			return
		}
	case *Cast:
		if p.Expression == old {
			p.Expression = repl
			return
		}
	case *Binary:
		switch old {
		case p.LHS:
			p.LHS = repl
			return
		case p.RHS:
			p.RHS = repl
			return
		}
	case *Unary:
		if p.Operand == old {
			p.Operand = repl
			return
		}
	case *MemberAccess:
		if p.LHS == old {
			p.LHS = repl
			return
		}
	case *Literal:
		if replaceInSlice(p.Elements, old, repl) {
			return
		}
	}
	panic("ast.ReplaceChild: old is not a child of parent")
}

// replaceInSlice overwrites the element of slice equal to old with
// repl, in place, preserving index. It reports whether old was found.
func replaceInSlice(slice []Node, old, repl Node) bool {
	for i, n := range slice {
		if n == old {
			slice[i] = repl
			return true
		}
	}
	return false
}

// InsertConversion wraps expr in a Cast node targeting to and splices
// it into expr's former position via ReplaceChild, returning the new
// Cast. This is how internal/check and internal/overload materialize
// the implicit conversions that Convert scoring only identified as
// possible (spec.md §4.1: "a non-identity score requires the checker to
// insert an explicit conversion node").
func InsertConversion(expr Node, to types.Type) *Cast {
	parent := expr.Parent()
	cast := &Cast{
		Base:       Base{Span: expr.Position()},
		TargetType: to,
		Expression: expr,
	}
	cast.SetResolvedType(to)
	cast.SetChecked(true)
	if parent != nil {
		ReplaceChild(parent, expr, cast)
	}
	expr.SetParent(cast)
	return cast
}
