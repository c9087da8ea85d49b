// Package source defines the byte-span position types shared by the AST
// and type packages. It exists as its own package (rather than living in
// internal/ast) purely to break the import cycle that would otherwise
// result from internal/types needing source locations for function
// parameters (spec.md §3, Type/Function) while internal/ast needs
// internal/types for each node's cached type.
package source

import "fmt"

// Pos is a single point in source text, byte-addressed.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a byte range [Start, End) in source text.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Column)
}
