// Package astbuild is a fluent hand-built-AST construction API for
// tests and the demo driver (cmd/kilnc-check), standing in for a real
// parser (spec.md §1 Non-goals: lexing/parsing is out of this repo's
// scope). Grounded on the teacher's internal/ast/builder.go, which
// offers the identical chained-constructor shape over its own
// expression-based AST; the node kinds below are new (kiln's AST is
// imperative, not expression-based), but the "one small function per
// node kind, position defaulted to a zero Span unless overridden"
// pattern is carried over directly.
package astbuild

import (
	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/types"
)

// Builder accumulates no state of its own; every method is a pure
// constructor. It exists (rather than bare package functions) so call
// sites read `b.Decl(...)` consistently alongside `types.Builder`'s
// `b.Ptr(...)`-style chain in the same test file.
type Builder struct{}

func New() *Builder { return &Builder{} }

func (b *Builder) Root(decls ...ast.Node) *ast.Root {
	return &ast.Root{Declarations: decls}
}

func (b *Builder) Block(stmts ...ast.Node) *ast.Block {
	return &ast.Block{Statements: stmts}
}

func (b *Builder) Decl(name string, t types.Type, init ast.Node) *ast.Declaration {
	return &ast.Declaration{Name: name, AnnotatedType: t, Initializer: init}
}

func (b *Builder) If(cond, then, els ast.Node) *ast.If {
	return &ast.If{Condition: cond, Then: then, Else: els}
}

func (b *Builder) While(cond, body ast.Node) *ast.While {
	return &ast.While{Condition: cond, Body: body}
}

func (b *Builder) For(init, cond, post, body ast.Node) *ast.For {
	return &ast.For{Init: init, Condition: cond, Post: post, Body: body}
}

func (b *Builder) Return(value ast.Node) *ast.Return {
	return &ast.Return{Value: value}
}

func (b *Builder) Param(name string, t types.Type) ast.FunctionParam {
	return ast.FunctionParam{Name: name, Type: t}
}

func (b *Builder) Func(name string, ret types.Type, body ast.Node, params ...ast.FunctionParam) *ast.Function {
	return &ast.Function{Name: name, ReturnType: ret, Params: params, Body: body}
}

func (b *Builder) FuncAttrs(name string, ret types.Type, attrs types.Attributes, body ast.Node, params ...ast.FunctionParam) *ast.Function {
	return &ast.Function{Name: name, ReturnType: ret, Attrs: attrs, Params: params, Body: body}
}

func (b *Builder) Member(name string, t types.Type) ast.StructureMember {
	return ast.StructureMember{Name: name, Type: t}
}

func (b *Builder) Struct(name string, members ...ast.StructureMember) *ast.StructureDeclaration {
	return &ast.StructureDeclaration{Name: name, Members: members}
}

func (b *Builder) Call(callee ast.Node, args ...ast.Node) *ast.Call {
	return &ast.Call{Callee: callee, Args: args}
}

func (b *Builder) Cast(to types.Type, expr ast.Node) *ast.Cast {
	return &ast.Cast{TargetType: to, Expression: expr}
}

func (b *Builder) Bin(op ast.BinaryOp, lhs, rhs ast.Node) *ast.Binary {
	return &ast.Binary{Op: op, LHS: lhs, RHS: rhs}
}

func (b *Builder) Un(op ast.UnaryOp, operand ast.Node) *ast.Unary {
	return &ast.Unary{Op: op, Operand: operand}
}

func (b *Builder) Int(v int64) *ast.Literal {
	return &ast.Literal{LitKind: ast.LiteralInteger, Int: v}
}

func (b *Builder) Bool(v bool) *ast.Literal {
	return &ast.Literal{LitKind: ast.LiteralBool, Bool: v}
}

func (b *Builder) Str(v string) *ast.Literal {
	return &ast.Literal{LitKind: ast.LiteralString, Str: v}
}

func (b *Builder) Arr(elems ...ast.Node) *ast.Literal {
	return &ast.Literal{LitKind: ast.LiteralArray, Elements: elems}
}

func (b *Builder) Var(name string) *ast.VariableReference {
	return &ast.VariableReference{Name: name}
}

func (b *Builder) FuncRef(name string) *ast.FunctionReference {
	return &ast.FunctionReference{Name: name}
}

func (b *Builder) Access(lhs ast.Node, member string) *ast.MemberAccess {
	return &ast.MemberAccess{LHS: lhs, Member: member}
}

func (b *Builder) Module(name string) *ast.ModuleReference {
	return &ast.ModuleReference{Name: name}
}

// Wire walks n and every descendant reachable through the node kinds
// this package constructs, fixing up Parent links bottom-up. Hand-built
// trees otherwise have every SetParent call left to the caller, which
// is exactly the kind of bookkeeping a real parser would do as it goes
// and that a fluent builder can do for it instead.
func (b *Builder) Wire(n ast.Node) ast.Node {
	wireChildren(n)
	return n
}

func wireChildren(n ast.Node) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ast.Root:
		for _, d := range v.Declarations {
			attach(v, d)
		}
	case *ast.Block:
		for _, s := range v.Statements {
			attach(v, s)
		}
	case *ast.Declaration:
		attach(v, v.Initializer)
	case *ast.If:
		attach(v, v.Condition)
		attach(v, v.Then)
		attach(v, v.Else)
	case *ast.While:
		attach(v, v.Condition)
		attach(v, v.Body)
	case *ast.For:
		attach(v, v.Init)
		attach(v, v.Condition)
		attach(v, v.Post)
		attach(v, v.Body)
	case *ast.Return:
		attach(v, v.Value)
	case *ast.Function:
		attach(v, v.Body)
	case *ast.Call:
		attach(v, v.Callee)
		for _, a := range v.Args {
			attach(v, a)
		}
	case *ast.IntrinsicCall:
		for _, a := range v.Args {
			attach(v, a)
		}
	case *ast.Cast:
		attach(v, v.Expression)
	case *ast.Binary:
		attach(v, v.LHS)
		attach(v, v.RHS)
	case *ast.Unary:
		attach(v, v.Operand)
	case *ast.MemberAccess:
		attach(v, v.LHS)
	case *ast.Literal:
		for _, e := range v.Elements {
			attach(v, e)
		}
	}
}

func attach(parent, child ast.Node) {
	if child == nil {
		return
	}
	child.SetParent(parent)
	wireChildren(child)
}
