package scope

import "testing"

func TestDeclareNonFunctionShadowsWithinScope(t *testing.T) {
	s := New(nil)
	s.Declare(&Symbol{Name: "x", Kind: SymbolVariable})
	s.Declare(&Symbol{Name: "x", Kind: SymbolVariable})
	if got := len(s.LookupLocal("x")); got != 1 {
		t.Errorf("redeclaring a variable in the same scope should replace, got %d entries", got)
	}
}

func TestDeclareFunctionAccumulatesOverloads(t *testing.T) {
	s := New(nil)
	s.Declare(&Symbol{Name: "f", Kind: SymbolFunction})
	s.Declare(&Symbol{Name: "f", Kind: SymbolFunction})
	if got := len(s.LookupLocal("f")); got != 2 {
		t.Errorf("expected 2 overloads of f, got %d", got)
	}
}

func TestLookupWalksAncestors(t *testing.T) {
	outer := New(nil)
	outer.Declare(&Symbol{Name: "g", Kind: SymbolFunction})
	inner := New(outer)
	syms := inner.Lookup("g")
	if len(syms) != 1 {
		t.Fatalf("expected to find g declared in outer scope, got %d", len(syms))
	}
}

func TestLookupVariableHidesOuterFunctionOverloads(t *testing.T) {
	outer := New(nil)
	outer.Declare(&Symbol{Name: "f", Kind: SymbolFunction})
	outer.Declare(&Symbol{Name: "f", Kind: SymbolFunction})
	inner := New(outer)
	inner.Declare(&Symbol{Name: "f", Kind: SymbolVariable})

	syms := inner.Lookup("f")
	if len(syms) != 1 || syms[0].Kind != SymbolVariable {
		t.Fatalf("expected inner variable binding to hide outer overloads entirely, got %+v", syms)
	}
}

func TestLookupFunctionsFiltersKind(t *testing.T) {
	s := New(nil)
	s.Declare(&Symbol{Name: "f", Kind: SymbolFunction})
	s.Declare(&Symbol{Name: "f", Kind: SymbolFunction})
	if got := len(s.LookupFunctions("f")); got != 2 {
		t.Errorf("expected 2 function overloads, got %d", got)
	}
}

func TestLookupMissingNameReturnsNil(t *testing.T) {
	s := New(nil)
	if got := s.Lookup("nope"); got != nil {
		t.Errorf("expected nil for missing name, got %v", got)
	}
}
