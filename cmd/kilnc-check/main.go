// Command kilnc-check drives the semantic analyzer over a hand-built
// AST, standing in for the real compiler's parser front-end (spec.md §1
// Non-goals). Grounded on the teacher's cmd/typecheck/main.go: a
// demo-shaped main that exercises the checker directly against
// constructed nodes rather than reading source text, printing whatever
// the checker reports.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kiln-lang/kilnc/internal/astbuild"
	"github.com/kiln-lang/kilnc/internal/check"
	"github.com/kiln-lang/kilnc/internal/config"
	"github.com/kiln-lang/kilnc/internal/diag"
	"github.com/kiln-lang/kilnc/internal/intrinsic"
	"github.com/kiln-lang/kilnc/internal/module"
	"github.com/kiln-lang/kilnc/internal/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to an analyzer options YAML document")
		jsonOut    = flag.Bool("json", false, "emit diagnostics as kilnc.diag/v1 JSON instead of text")
		noColor    = flag.Bool("no-color", false, "disable ANSI color in text output")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = loaded
	}
	if *noColor {
		cfg.Diagnostics.Color = false
	}

	mod := buildDemoModule()
	engine := types.NewEngine(cfg.PointerSize, cfg.IntegerSize, cfg.IntegerSigned)

	var sink diag.Sink
	collecting := diag.NewCollectingSink()
	if *jsonOut {
		sink = collecting
	} else {
		sink = diag.NewColorSink(os.Stdout, cfg.Diagnostics.Color)
	}

	a := check.New(engine, sink, cfg, mod)
	ok := a.CheckModule()

	if *jsonOut {
		for _, r := range collecting.Reports {
			text, err := r.ToJSON(false)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			fmt.Println(text)
		}
	}
	if !ok {
		os.Exit(1)
	}
}

// buildDemoModule hand-builds a module exercising declaration checking,
// struct layout, intrinsic recognition, and name-based overload
// resolution in one pass (spec.md §4): two `distance` overloads taking
// an integer and a pointer respectively, with one call that selects the
// integer overload, plus a
// `point` structure declaration and a `__builtin_line` intrinsic call.
func buildDemoModule() *module.Module {
	b := astbuild.New()
	tb := types.NewBuilder(types.NewEngine(8, 8, true))

	pointType := tb.Struct("point",
		types.Member{Name: "x", Type: tb.Integer()},
		types.Member{Name: "y", Type: tb.Integer()},
	)
	pointDecl := b.Struct("point",
		b.Member("x", tb.Integer()),
		b.Member("y", tb.Integer()),
	)

	distanceByValue := b.Func("distance", tb.Integer(),
		b.Block(b.Var("n")),
		b.Param("n", tb.Integer()),
	)
	distanceByPointer := b.Func("distance", tb.Integer(),
		b.Block(b.Int(0)),
		b.Param("p", tb.Ptr(pointType)),
	)

	callByValue := b.Decl("a", nil, b.Call(b.FuncRef("distance"), b.Int(4)))
	lineDecl := b.Decl("line", nil, b.Call(b.FuncRef(intrinsic.Line)))

	root := b.Root(pointDecl, distanceByValue, distanceByPointer, callByValue, lineDecl)
	b.Wire(root)

	mod := module.New("demo.kiln")
	mod.Root = root
	return mod
}
