// Package scope implements kiln's symbol table (spec.md §3, §4.3):
// nested lexical scopes whose lookup returns every overload candidate
// sharing a name, since function names are not unique keys the way
// variable names are.
//
// Grounded on the teacher's module/loader.go Dependencies/Exports
// bookkeeping for the "a name can bind to more than one entity" shape,
// generalized here to ordinary lexical nesting rather than cross-module
// dependency edges.
package scope

import "github.com/kiln-lang/kilnc/internal/types"

// SymbolKind discriminates what a Symbol names.
type SymbolKind int

const (
	SymbolInvalid SymbolKind = iota
	SymbolVariable
	SymbolFunction
	SymbolType
	SymbolStructure
	SymbolModule
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	case SymbolType:
		return "type"
	case SymbolStructure:
		return "structure"
	case SymbolModule:
		return "module"
	default:
		return "invalid"
	}
}

// Symbol is one entry of a Scope's table. Decl is opaque to this
// package (typically an *ast.Node) so that scope has no dependency on
// ast, avoiding an import cycle since ast's FunctionReference/
// VariableReference nodes point back into scope-resolved declarations.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type types.Type
	Decl interface{}
}

// Scope is one lexical nesting level. Variable/type/module names are
// unique within a scope (the second Declare of the same name replaces
// the first, spec.md's ordinary shadowing rule), but function names
// accumulate: every Symbol with SymbolFunction sharing a name is kept,
// since spec.md §4.3 resolves overloads from the full candidate set
// visible at a call site, not just the innermost binding.
type Scope struct {
	parent  *Scope
	symbols map[string][]*Symbol
}

// New creates a scope nested inside parent. parent may be nil for the
// outermost (module) scope.
func New(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string][]*Symbol)}
}

// Parent returns the enclosing scope, or nil at the module root.
func (s *Scope) Parent() *Scope { return s.parent }

// Declare adds sym to this scope. For SymbolFunction it appends to the
// name's overload set; for every other kind it replaces any existing
// binding of the same name in this scope (shadowing an outer scope's
// binding of the same name is always allowed regardless of kind).
func (s *Scope) Declare(sym *Symbol) {
	if sym.Kind != SymbolFunction {
		s.symbols[sym.Name] = []*Symbol{sym}
		return
	}
	s.symbols[sym.Name] = append(s.symbols[sym.Name], sym)
}

// LookupLocal returns the symbols bound to name in this scope only,
// without searching enclosing scopes.
func (s *Scope) LookupLocal(name string) []*Symbol {
	return s.symbols[name]
}

// Lookup searches this scope and its ancestors, innermost first,
// returning the first scope's binding set for name. Lookup stops at the
// first scope that binds the name at all — a variable in an inner scope
// hides every function overload of the same name declared further out,
// it does not merge with them. LookupFunctions does not stop there.
func (s *Scope) Lookup(name string) []*Symbol {
	for sc := s; sc != nil; sc = sc.parent {
		if syms, ok := sc.symbols[name]; ok && len(syms) > 0 {
			return syms
		}
	}
	return nil
}

// LookupFunctions collects every SymbolFunction entry bound to name in
// this scope and each of its ancestors, innermost scope first and each
// scope's entries in declaration order, used by internal/overload to
// collect a call site's candidate set (spec.md §4.3 step 1).
func (s *Scope) LookupFunctions(name string) []*Symbol {
	out := make([]*Symbol, 0)
	for sc := s; sc != nil; sc = sc.parent {
		for _, sym := range sc.symbols[name] {
			if sym.Kind == SymbolFunction {
				out = append(out, sym)
			}
		}
	}
	return out
}
