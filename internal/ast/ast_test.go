package ast

import (
	"testing"

	"github.com/kiln-lang/kilnc/internal/types"
)

func TestReplaceChildInBlockPreservesIndex(t *testing.T) {
	lit1 := &Literal{LitKind: LiteralInteger, Int: 1}
	lit2 := &Literal{LitKind: LiteralInteger, Int: 2}
	lit3 := &Literal{LitKind: LiteralInteger, Int: 3}
	block := &Block{Statements: []Node{lit1, lit2, lit3}}
	for _, n := range block.Statements {
		n.SetParent(block)
	}

	replacement := &Literal{LitKind: LiteralInteger, Int: 99}
	ReplaceChild(block, lit2, replacement)

	if block.Statements[1] != Node(replacement) {
		t.Fatalf("expected replacement at index 1, got %v", block.Statements[1])
	}
	if block.Statements[0] != Node(lit1) || block.Statements[2] != Node(lit3) {
		t.Fatalf("sibling statements should not move")
	}
	if replacement.Parent() != Node(block) {
		t.Fatalf("replacement's parent was not fixed up")
	}
}

func TestReplaceChildPanicsWhenNotAChild(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when old is not a child of parent")
		}
	}()
	block := &Block{}
	stray := &Literal{}
	ReplaceChild(block, stray, &Literal{})
}

func TestInsertConversionSplicesCastInPlace(t *testing.T) {
	lit := &Literal{LitKind: LiteralInteger, Int: 1}
	decl := &Declaration{Initializer: lit}
	lit.SetParent(decl)

	target := types.NewInteger(64, true)
	cast := InsertConversion(lit, target)

	if decl.Initializer != Node(cast) {
		t.Fatalf("expected declaration's initializer to become the cast")
	}
	if cast.Expression != Node(lit) {
		t.Fatalf("expected cast to wrap the original literal")
	}
	if lit.Parent() != Node(cast) {
		t.Fatalf("expected literal's parent to become the cast")
	}
	if cast.ResolvedType() != types.Type(target) {
		t.Fatalf("expected cast's resolved type to be the conversion target")
	}
}

func TestBaseAccessors(t *testing.T) {
	n := &Literal{}
	if n.Checked() {
		t.Fatalf("new node should not be checked")
	}
	n.SetChecked(true)
	if !n.Checked() {
		t.Fatalf("SetChecked(true) did not stick")
	}
	i32 := types.NewInteger(32, true)
	n.SetResolvedType(i32)
	if n.ResolvedType() != types.Type(i32) {
		t.Fatalf("SetResolvedType did not stick")
	}
}
