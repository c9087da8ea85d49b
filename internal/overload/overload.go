// Package overload implements spec.md §4.3, the semantic analyzer's
// centerpiece: name-based function overload resolution with
// bidirectional type inference across nested calls involving
// unresolved overloaded arguments.
//
// The candidate-set-with-tagged-invalidity-reason shape follows spec.md
// §9's "Dynamic overload set container... prefer an enum with
// associated data" note directly; there is no teacher analogue (the
// teacher's type system has no name overloading, only Hindley-Milner
// unification), so this package is grounded on the teacher's general
// "collect candidates, prune, report structured diagnostic on failure"
// idiom from internal/link's dictionary-reference resolution
// (internal/link/report.go's multi-section ambiguity report shape),
// adapted from type-class dictionary selection to function overloads.
package overload

import (
	"fmt"

	"github.com/kiln-lang/kilnc/internal/ast"
	"github.com/kiln-lang/kilnc/internal/diag"
	"github.com/kiln-lang/kilnc/internal/errors"
	"github.com/kiln-lang/kilnc/internal/scope"
	"github.com/kiln-lang/kilnc/internal/types"
)

// ExprChecker is the subset of internal/check's Analyzer the resolver
// needs to drive nested checking (spec.md §4.3 step 2a: checking a
// non-dependent argument "recursively drives nested resolution").
// Declared here rather than in internal/check so that internal/check
// can hold a Resolver without an import cycle: internal/check imports
// internal/overload and satisfies this interface itself.
type ExprChecker interface {
	CheckExpression(n ast.Node, sc *scope.Scope) bool
}

// Reason tags why a Candidate was invalidated, carrying whatever
// site-specific detail the final diagnostic needs (spec.md §9).
type Reason int

const (
	ReasonNone Reason = iota
	ReasonParameterCount
	ReasonArgumentType
	ReasonNoDependentArg
	ReasonNoDependentCallee
	ReasonTooManyConversions
	ReasonExpectedTypeMismatch
)

// Candidate is one function symbol under consideration for a
// particular FunctionReference (GLOSSARY: "Candidate").
type Candidate struct {
	Name string
	Func *types.Function
	Node ast.Node // the candidate's defining *ast.Function

	Valid    bool
	Reason   Reason
	ArgIndex int // -1 when the reason is not argument-specific
	Score    int
}

// Resolver resolves FunctionReference nodes per spec.md §4.3.
type Resolver struct {
	Sink    diag.Sink
	Checker ExprChecker
}

// New returns a Resolver that reports failures to sink and delegates
// non-dependent argument checking to checker.
func New(sink diag.Sink, checker ExprChecker) *Resolver {
	return &Resolver{Sink: sink, Checker: checker}
}

// Resolve is the entry point: resolves the unresolved FunctionReference
// ref, looked up starting from sc, binding ref.Resolved and ref's
// cached type on success. Returns false and emits a diagnostic on
// failure (spec.md §4.3 step 4).
func (r *Resolver) Resolve(ref *ast.FunctionReference, sc *scope.Scope) bool {
	candidates := r.collect(ref, sc)
	if candidates == nil {
		r.Sink.Emit(diag.New(errors.SEMA001, "resolve", diag.SeverityError, "", ref.Position(),
			fmt.Sprintf("unknown symbol %q", ref.Name)))
		return false
	}
	return r.resolveWithParent(ref, candidates, sc)
}

// collect is spec.md §4.3 step 1: walk the scope chain from sc outward,
// every function symbol named ref.Name becomes a candidate. Returns nil
// (not an empty, non-nil slice) when the set is empty, so callers can
// distinguish "unknown symbol" from "every candidate was pruned".
func (r *Resolver) collect(ref *ast.FunctionReference, sc *scope.Scope) []*Candidate {
	syms := sc.LookupFunctions(ref.Name)
	if len(syms) == 0 {
		return nil
	}
	candidates := make([]*Candidate, 0, len(syms))
	var firstReturn types.Type
	for _, sym := range syms {
		fn, ok := sym.Type.(*types.Function)
		if !ok {
			continue
		}
		if firstReturn == nil {
			firstReturn = fn.Return
		} else if !types.Equals(firstReturn, fn.Return) {
			node, _ := sym.Decl.(ast.Node)
			pos := ref.Position()
			if node != nil {
				pos = node.Position()
			}
			r.Sink.Emit(diag.New(errors.TYP007, "resolve", diag.SeverityError, "", pos,
				fmt.Sprintf("overloads of %q disagree on return type: %s vs %s", ref.Name, firstReturn, fn.Return)))
		}
		node, _ := sym.Decl.(ast.Node)
		candidates = append(candidates, &Candidate{Name: ref.Name, Func: fn, Node: node, Valid: true, ArgIndex: -1})
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates
}

// resolveWithParent dispatches on ref's syntactic context (spec.md
// §4.3 steps 2/3), re-entering itself after the address-of splice in
// step 3 changes ref's parent.
func (r *Resolver) resolveWithParent(ref *ast.FunctionReference, candidates []*Candidate, sc *scope.Scope) bool {
	parent := ref.Parent()

	if call, ok := parent.(*ast.Call); ok && call.Callee == ast.Node(ref) {
		return r.resolveAsCallee(ref, call, candidates, sc)
	}

	if u, ok := parent.(*ast.Unary); ok && u.Op == ast.OpAddressOf && u.Operand == ast.Node(ref) {
		grandparent := u.Parent()
		if grandparent != nil {
			ast.ReplaceChild(grandparent, u, ref)
		} else {
			ref.SetParent(nil)
		}
		return r.resolveWithParent(ref, candidates, sc)
	}

	if decl, ok := parent.(*ast.Declaration); ok && decl.Initializer == ast.Node(ref) {
		if decl.AnnotatedType == nil {
			return r.finalize(ref, candidates)
		}
		target, ok := expectedFunctionPointerTarget(decl.AnnotatedType)
		if !ok {
			r.Sink.Emit(diag.New(errors.OVL008, "resolve", diag.SeverityError, "", decl.Position(),
				"declaration of a function reference requires a pointer-to-function type"))
			return false
		}
		pruneToEquivalent(candidates, target, ReasonExpectedTypeMismatch)
		return r.finalize(ref, candidates)
	}

	if bin, ok := parent.(*ast.Binary); ok && bin.Op == ast.OpAssign {
		if bin.LHS == ast.Node(ref) {
			r.Sink.Emit(diag.New(errors.TYP005, "resolve", diag.SeverityError, "", ref.Position(),
				"a function reference is not an assignable l-value"))
			return false
		}
		if bin.RHS == ast.Node(ref) {
			target, ok := expectedFunctionPointerTarget(bin.LHS.ResolvedType())
			if !ok {
				r.Sink.Emit(diag.New(errors.OVL008, "resolve", diag.SeverityError, "", bin.Position(),
					"assignment target is not a pointer-to-function type"))
				return false
			}
			pruneToEquivalent(candidates, target, ReasonExpectedTypeMismatch)
		}
		return r.finalize(ref, candidates)
	}

	if cast, ok := parent.(*ast.Cast); ok && cast.Expression == ast.Node(ref) {
		if target, ok := expectedFunctionPointerTarget(cast.TargetType); ok {
			pruneToEquivalent(candidates, target, ReasonExpectedTypeMismatch)
		}
		return r.finalize(ref, candidates)
	}

	return r.finalize(ref, candidates)
}

// expectedFunctionPointerTarget returns the *types.Function a
// declaration/assignment/cast target names, accepting either a bare
// Function type or a Pointer to one (spec.md §4.3 step 3).
func expectedFunctionPointerTarget(t types.Type) (*types.Function, bool) {
	switch v := types.Canonicalize(t).(type) {
	case *types.Function:
		return v, true
	case *types.Pointer:
		if fn, ok := types.Canonicalize(v.Elem).(*types.Function); ok {
			return fn, true
		}
	}
	return nil, false
}

func pruneToEquivalent(candidates []*Candidate, target *types.Function, reason Reason) {
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		if !types.Equivalent(c.Func, target) {
			c.Valid = false
			c.Reason = reason
		}
	}
}

func isUnresolvedFunctionRef(n ast.Node) (*ast.FunctionReference, bool) {
	ref, ok := n.(*ast.FunctionReference)
	if !ok || ref.Resolved != nil {
		return nil, false
	}
	return ref, true
}

// resolveAsCallee is spec.md §4.3 step 2.
func (r *Resolver) resolveAsCallee(ref *ast.FunctionReference, call *ast.Call, candidates []*Candidate, sc *scope.Scope) bool {
	n := len(call.Args)
	call.OverloadCandidates = make([]types.Type, len(candidates))
	for i, c := range candidates {
		call.OverloadCandidates[i] = c.Func
	}

	// 2a: check every non-dependent argument first; this recursively
	// drives nested resolution for any call expressions nested inside
	// the arguments.
	dependent := make([]int, 0)
	argsOK := true
	for i, arg := range call.Args {
		if _, ok := isUnresolvedFunctionRef(arg); ok {
			dependent = append(dependent, i)
			continue
		}
		if !r.Checker.CheckExpression(arg, sc) {
			argsOK = false
		}
	}

	// 2b: arity pruning.
	for _, c := range candidates {
		if len(c.Func.Params) != n {
			c.Valid = false
			c.Reason = ReasonParameterCount
		}
	}

	// 2c: score against every already-typed argument.
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		for i, arg := range call.Args {
			if isDependentIndex(dependent, i) {
				continue
			}
			argType := arg.ResolvedType()
			if argType == nil {
				continue // argument failed to check; don't also fail the candidate on a nil type
			}
			score := types.Convert(argType, c.Func.Params[i].Type)
			if score == types.ScoreNone {
				c.Valid = false
				c.Reason = ReasonArgumentType
				c.ArgIndex = i
				break
			}
			c.Score += int(score)
		}
	}

	if !argsOK {
		return false
	}

	if len(dependent) > 0 {
		return r.resolveBidirectional(ref, call, candidates, dependent, sc)
	}

	reduceToMinimumScore(candidates)
	return r.finalize(ref, candidates)
}

func isDependentIndex(dependent []int, i int) bool {
	for _, d := range dependent {
		if d == i {
			return true
		}
	}
	return false
}

// resolveBidirectional is spec.md §4.3 step 2e.
func (r *Resolver) resolveBidirectional(ref *ast.FunctionReference, call *ast.Call, candidates []*Candidate, dependent []int, sc *scope.Scope) bool {
	depRefs := make(map[int]*ast.FunctionReference, len(dependent))
	depSets := make(map[int][]*Candidate, len(dependent))
	for _, i := range dependent {
		argRef, _ := isUnresolvedFunctionRef(call.Args[i])
		depRefs[i] = argRef
		depSets[i] = r.collect(argRef, sc)
	}

	// β: keep a candidate only if, for every dependent index, some
	// overload of that argument scores 0 (is equivalent) against the
	// candidate's corresponding parameter type.
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		for _, i := range dependent {
			if depSets[i] == nil {
				c.Valid = false
				c.Reason = ReasonNoDependentArg
				c.ArgIndex = i
				break
			}
			found := false
			for _, dc := range depSets[i] {
				if types.Equivalent(c.Func.Params[i].Type, dc.Func) {
					found = true
					break
				}
			}
			if !found {
				c.Valid = false
				c.Reason = ReasonNoDependentArg
				c.ArgIndex = i
				break
			}
		}
	}

	// γ: reduce by minimum score.
	reduceToMinimumScore(candidates)

	// δ: resolve F against the pruned set.
	if !r.finalize(ref, candidates) {
		return false
	}

	resolvedFunc, ok := ref.ResolvedType().(*types.Function)
	if !ok {
		return false
	}

	// ε/ζ: for each dependent argument, prune its own overload set to
	// overloads equivalent to the now-resolved parameter, then resolve
	// it the same way.
	ok = true
	for _, i := range dependent {
		paramType := resolvedFunc.Params[i].Type
		depCandidates := depSets[i]
		for _, dc := range depCandidates {
			if !types.Equivalent(paramType, dc.Func) {
				dc.Valid = false
				dc.Reason = ReasonNoDependentCallee
			}
		}
		if !r.resolveWithParent(depRefs[i], depCandidates, sc) {
			ok = false
		}
	}
	return ok
}

func reduceToMinimumScore(candidates []*Candidate) {
	min := -1
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		if min == -1 || c.Score < min {
			min = c.Score
		}
	}
	if min == -1 {
		return
	}
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		if c.Score != min {
			c.Valid = false
			c.Reason = ReasonTooManyConversions
		}
	}
}

// finalize is spec.md §4.3 step 4.
func (r *Resolver) finalize(ref *ast.FunctionReference, candidates []*Candidate) bool {
	var valid []*Candidate
	for _, c := range candidates {
		if c.Valid {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		r.reportFailure(ref, candidates, nil)
		return false
	case 1:
		bind(ref, valid[0])
		return true
	default:
		r.reportFailure(ref, candidates, valid)
		return false
	}
}

func bind(ref *ast.FunctionReference, c *Candidate) {
	ref.Resolved = c.Node
	ref.SetResolvedType(c.Func)
	ref.SetChecked(true)
}

// reportFailure builds the structured failure diagnostic: the full
// overload set under "Overloads", each invalidated candidate with its
// invalidation reason and, for an ambiguity, each remaining candidate
// with its score. It does not list the argument types, nor the
// dependent argument's own overload set for no_dependent_arg failures.
func (r *Resolver) reportFailure(ref *ast.FunctionReference, candidates []*Candidate, ambiguous []*Candidate) {
	code := errors.OVL002
	msg := fmt.Sprintf("no matching overload for %q", ref.Name)
	if len(ambiguous) > 1 {
		code = errors.OVL001
		msg = fmt.Sprintf("ambiguous call to %q", ref.Name)
	}

	var sections []string
	sections = append(sections, "Overloads:")
	for _, c := range candidates {
		line := "  " + c.Func.String()
		if !c.Valid {
			line += " -- " + reasonDetail(c)
		} else if len(ambiguous) > 1 {
			line += fmt.Sprintf(" -- candidate (score %d)", c.Score)
		}
		sections = append(sections, line)
	}

	report := diag.New(code, "resolve", diag.SeverityError, "", ref.Position(), msg).
		WithData("name", ref.Name).
		WithData("sections", sections)
	r.Sink.Emit(report)
}

func reasonDetail(c *Candidate) string {
	switch c.Reason {
	case ReasonParameterCount:
		return "parameter count mismatch"
	case ReasonArgumentType:
		return fmt.Sprintf("argument %d not convertible", c.ArgIndex)
	case ReasonNoDependentArg:
		return fmt.Sprintf("no overload of argument %d is equivalent to this parameter", c.ArgIndex)
	case ReasonNoDependentCallee:
		return "not equivalent to the resolved callee parameter"
	case ReasonTooManyConversions:
		return "requires more conversions than the best candidate"
	case ReasonExpectedTypeMismatch:
		return "does not match the expected type at this context"
	default:
		return "invalidated"
	}
}
