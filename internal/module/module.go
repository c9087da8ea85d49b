// Package module implements spec.md §3's Module data structure and §6's
// Module Import Resolver: deserialized exported declarations from an
// import become symbols installed into the importing module's global
// scope before checking begins.
//
// Module's field shape and the cycle-detection idiom in Install follow
// the teacher's internal/module/loader.go (Loader.loadStack /
// checkCycle), generalized from the teacher's file-path import
// resolution to spec.md §6's "logical shape of imported symbols only"
// contract — this repo never reads a module off disk itself, it is
// handed already-parsed Module shells for every import.
package module

import (
	"fmt"

	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/intern"
	"github.com/kiln-lang/kilnc/internal/scope"
	"github.com/kiln-lang/kilnc/internal/source"
	"github.com/kiln-lang/kilnc/internal/types"
)

// Export is one symbol a module makes visible to importers: a name, its
// resolved type (always a *types.Function in this language — spec.md
// never mentions exporting variables or types across modules), and the
// source position of its original declaration, used only for
// diagnostics pointing back at the exporting module.
type Export struct {
	Name string
	Type *types.Function
	Pos  source.Pos
}

// Module is spec.md §3's Module: the unit passed to the analyzer.
type Module struct {
	// Span covers the module's full source text; Filename names it for
	// diagnostics.
	Span     source.Span
	Filename string

	// Interner is this module's interned string table (spec.md §3).
	Interner *intern.Table

	// Root is the parsed syntax tree's top-level node.
	Root *ast.Root

	// Global is the root of this module's scope stack (spec.md §3:
	// "scope stack, root = global"). Nested scopes are created and
	// discarded by the checker as it descends into blocks/functions; only
	// the global scope is long-lived on the Module itself.
	Global *scope.Scope

	// Imports is the ordered list of modules this module imports from.
	// Before parsing hands off to the analyzer, each entry is a shell
	// with only Name filled in (spec.md §6); Install populates the rest.
	Imports []*Import

	// Exports is the ordered list of symbols this module makes visible
	// to importers, appended to through AddExport; internal/check does not
	// add to it.
	Exports []Export
}

// Import is one entry of a Module's import list.
type Import struct {
	Name     string
	Resolved bool
	Exports  []Export
}

// New constructs an empty Module ready to receive a parsed Root and
// begin import resolution. The global scope has no parent.
func New(filename string) *Module {
	return &Module{
		Filename: filename,
		Interner: intern.New(),
		Global:   scope.New(nil),
	}
}

// ImportResolver is spec.md §6's "module import resolver" collaborator:
// given an import's name, it must yield that module's fully-populated
// exported-symbols list. Its concrete implementation (reading a
// precompiled module's on-disk format) is out of this repo's scope
// (spec.md §1 Non-goals); only this logical interface lives here.
type ImportResolver interface {
	ResolveExports(name string) ([]Export, error)
}

// CycleError reports that resolving imports revisited a module already
// on the current resolution stack, grounded on the teacher's
// Loader.checkCycle idiom.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle detected: %v", e.Chain)
}

// Install resolves every import in m.Imports via resolver and installs
// each exported function as a function symbol in m.Global with
// LinkageImported, synthesizing a body-less *ast.Function node of the
// exported type for each (spec.md §6). stack carries the chain of
// module names currently being resolved, for cycle detection across a
// multi-module program; callers resolving a single module's imports
// pass stack containing just m's own name.
func (m *Module) Install(resolver ImportResolver, stack []string) error {
	for _, imp := range m.Imports {
		for _, name := range stack {
			if name == imp.Name {
				return &CycleError{Chain: append(append([]string{}, stack...), imp.Name)}
			}
		}

		exports, err := resolver.ResolveExports(imp.Name)
		if err != nil {
			return fmt.Errorf("module %s: resolving import %q: %w", m.Filename, imp.Name, err)
		}
		imp.Exports = exports
		imp.Resolved = true

		for _, exp := range exports {
			fn := &ast.Function{
				Base:       ast.Base{Span: source.Span{Start: exp.Pos, End: exp.Pos}},
				Name:       exp.Name,
				ReturnType: exp.Type.Return,
				Attrs:      exp.Type.Attrs,
				Linkage:    ast.LinkageImported,
			}
			for _, p := range exp.Type.Params {
				fn.Params = append(fn.Params, ast.FunctionParam{Name: p.Name, Type: p.Type, Span: source.Span{Start: p.Pos, End: p.Pos}})
			}
			fn.SetResolvedType(exp.Type)
			fn.SetChecked(true)

			m.Global.Declare(&scope.Symbol{
				Name: exp.Name,
				Kind: scope.SymbolFunction,
				Type: exp.Type,
				Decl: fn,
			})
		}
	}
	return nil
}

// FindImport returns the named import, or nil if m does not import a
// module by that name. Used by internal/check's Member-access-on-a-
// module-reference rewrite (spec.md §4.2).
func (m *Module) FindImport(name string) *Import {
	for _, imp := range m.Imports {
		if imp.Name == name {
			return imp
		}
	}
	return nil
}

// FindExport returns the named export of imp, or (Export{}, false).
func (imp *Import) FindExport(name string) (Export, bool) {
	for _, e := range imp.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

// AddExport appends exp to m.Exports unless name is already exported,
// in which case it reports a duplicate (spec.md §7: "LNK003 duplicate
// export name within a module").
func (m *Module) AddExport(exp Export) error {
	for _, e := range m.Exports {
		if e.Name == exp.Name {
			return fmt.Errorf("duplicate export %q", exp.Name)
		}
	}
	m.Exports = append(m.Exports, exp)
	return nil
}
