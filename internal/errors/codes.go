// Package errors provides the centralized diagnostic code registry for the
// kiln semantic analyzer. Every diagnostic the analyzer emits carries one
// of these codes, grouped by the error taxonomy of the analyzer's phases.
package errors

// Code constants, grouped by phase. Numbering is not contiguous across
// phases; gaps are left for related codes added later in a phase.
const (
	// Unknown symbol / scope resolution (SEMA###)
	SEMA001 = "SEMA001" // empty overload set: unknown function symbol
	SEMA002 = "SEMA002" // struct member not found
	SEMA003 = "SEMA003" // module export not found
	SEMA004 = "SEMA004" // comparison result unused (':=' vs '==' mistake)
	SEMA005 = "SEMA005" // non-discardable call result unused

	// Type / shape mismatches (TYP###)
	TYP001 = "TYP001" // not convertible
	TYP002 = "TYP002" // function body type vs declared return type mismatch
	TYP003 = "TYP003" // parameter type mismatch
	TYP004 = "TYP004" // arity mismatch
	TYP005 = "TYP005" // l-value required
	TYP006 = "TYP006" // invalid cast
	TYP007 = "TYP007" // function return type set mismatch across overloads
	TYP008 = "TYP008" // binary operand type mismatch

	// Domain violations (DOM###)
	DOM001 = "DOM001" // zero-size array
	DOM002 = "DOM002" // divide/modulus by constant zero
	DOM003 = "DOM003" // shift amount >= operand width
	DOM004 = "DOM004" // constant subscript out of bounds

	// Incomplete types (INC###)
	INC001 = "INC001" // declaration of incomplete type
	INC002 = "INC002" // dereference of pointer to incomplete type
	INC003 = "INC003" // incomplete function parameter

	// Unimplemented / sorry (UNI###)
	UNI001 = "UNI001" // integer width > 64 bits
	UNI002 = "UNI002" // unimplemented intrinsic path

	// Overload resolution (OVL###)
	OVL001 = "OVL001" // ambiguous overload
	OVL002 = "OVL002" // no matching overload
	OVL003 = "OVL003" // parameter count mismatch (candidate-level reason)
	OVL004 = "OVL004" // argument type mismatch (candidate-level reason)
	OVL005 = "OVL005" // no dependent argument overload scores 0 against callee
	OVL006 = "OVL006" // no dependent callee overload equivalent to resolved parameter
	OVL007 = "OVL007" // too many conversions (pruned by minimum score)
	OVL008 = "OVL008" // expected-type mismatch (declaration/assignment/cast context)

	// Module import resolution (LNK###)
	LNK001 = "LNK001" // imported module not found among module's imports
	LNK002 = "LNK002" // import resolver failed to supply exports
	LNK003 = "LNK003" // duplicate export name within a module

	// Internal compiler errors (ICE###)
	ICE001 = "ICE001" // invariant violation recovered from panic
	ICE002 = "ICE002" // unhandled AST node kind
)

// Info describes a single diagnostic code for tooling and documentation.
type Info struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps every code above to its descriptive Info.
var Registry = map[string]Info{
	SEMA001: {SEMA001, "resolve", "scope", "Unknown function symbol"},
	SEMA002: {SEMA002, "check", "scope", "Struct member not found"},
	SEMA003: {SEMA003, "check", "scope", "Module export not found"},
	SEMA004: {SEMA004, "check", "style", "Comparison result unused"},
	SEMA005: {SEMA005, "check", "style", "Non-discardable call result unused"},

	TYP001: {TYP001, "check", "type", "Type not convertible"},
	TYP002: {TYP002, "check", "type", "Function body/return type mismatch"},
	TYP003: {TYP003, "check", "type", "Argument/parameter type mismatch"},
	TYP004: {TYP004, "check", "shape", "Arity mismatch"},
	TYP005: {TYP005, "check", "shape", "L-value required"},
	TYP006: {TYP006, "check", "shape", "Invalid cast"},
	TYP007: {TYP007, "resolve", "type", "Overloads disagree on return type"},
	TYP008: {TYP008, "check", "type", "Binary operand type mismatch"},

	DOM001: {DOM001, "check", "domain", "Zero-size array"},
	DOM002: {DOM002, "check", "domain", "Division by constant zero"},
	DOM003: {DOM003, "check", "domain", "Shift amount exceeds operand width"},
	DOM004: {DOM004, "check", "domain", "Constant subscript out of bounds"},

	INC001: {INC001, "check", "incomplete", "Declaration of incomplete type"},
	INC002: {INC002, "check", "incomplete", "Dereference of incomplete pointer"},
	INC003: {INC003, "check", "incomplete", "Incomplete function parameter"},

	UNI001: {UNI001, "check", "unimplemented", "Integer width exceeds 64 bits"},
	UNI002: {UNI002, "check", "unimplemented", "Unimplemented intrinsic path"},

	OVL001: {OVL001, "resolve", "ambiguity", "Ambiguous overload"},
	OVL002: {OVL002, "resolve", "ambiguity", "No matching overload"},
	OVL003: {OVL003, "resolve", "candidate", "Parameter count mismatch"},
	OVL004: {OVL004, "resolve", "candidate", "Argument type mismatch"},
	OVL005: {OVL005, "resolve", "candidate", "No dependent argument overload matches"},
	OVL006: {OVL006, "resolve", "candidate", "No dependent callee overload matches"},
	OVL007: {OVL007, "resolve", "candidate", "Too many conversions"},
	OVL008: {OVL008, "resolve", "candidate", "Expected-type mismatch"},

	LNK001: {LNK001, "link", "module", "Import not found"},
	LNK002: {LNK002, "link", "module", "Import resolver failed"},
	LNK003: {LNK003, "link", "module", "Duplicate export"},

	ICE001: {ICE001, "internal", "invariant", "Invariant violation"},
	ICE002: {ICE002, "internal", "invariant", "Unhandled AST node kind"},
}

// Lookup returns the Info for a code, if registered.
func Lookup(code string) (Info, bool) {
	info, ok := Registry[code]
	return info, ok
}

// IsOverload reports whether code belongs to the overload-resolution phase.
func IsOverload(code string) bool {
	info, ok := Lookup(code)
	return ok && info.Phase == "resolve"
}

// IsInternal reports whether code represents an internal compiler error.
func IsInternal(code string) bool {
	info, ok := Lookup(code)
	return ok && info.Phase == "internal"
}
