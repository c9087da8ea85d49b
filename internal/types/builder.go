package types

// Builder provides a fluent construction API for types in tests and in
// the demo AST driver (cmd/kilnc-check), where hand-writing nested
// &types.Pointer{Elem: &types.Integer{...}} literals gets unreadable
// fast. Grounded on the teacher's internal/types/builder.go, which
// offers the identical String()/Int()/Pointer()-style chain over its
// own (Hindley-Milner) type variants.
type Builder struct {
	engine *Engine
}

// NewBuilder returns a Builder. engine may be nil if only pure
// (non-layout) construction is needed; CheckType-dependent helpers
// will panic if called on a nil engine.
func NewBuilder(engine *Engine) *Builder { return &Builder{engine: engine} }

func (b *Builder) Void() *Primitive           { return NewVoid() }
func (b *Builder) Byte() *Primitive           { return NewByte() }
func (b *Builder) IntegerLiteral() *Primitive { return NewIntegerLiteral() }
func (b *Builder) Integer() *Primitive        { return b.engine.CanonicalInteger() }

func (b *Builder) I(bits int) *Integer  { return NewInteger(bits, true) }
func (b *Builder) U(bits int) *Integer  { return NewInteger(bits, false) }
func (b *Builder) Ptr(elem Type) *Pointer       { return NewPointer(elem) }
func (b *Builder) Ref(referent Type) *Reference { return NewReference(referent) }
func (b *Builder) Arr(elem Type, n int64) *Array { return NewArray(elem, n) }

// Param appends a parameter to a parameter-list build, taking only
// name and type since source position is rarely interesting in tests.
func (b *Builder) Param(name string, t Type) Param {
	return Param{Name: name, Type: t}
}

func (b *Builder) Func(ret Type, params ...Param) *Function {
	return NewFunction(ret, params, Attributes{})
}

func (b *Builder) FuncAttrs(ret Type, attrs Attributes, params ...Param) *Function {
	return NewFunction(ret, params, attrs)
}

// Member appends a member to a struct build.
func (b *Builder) Member(name string, t Type) Member {
	return Member{Name: name, Type: t}
}

func (b *Builder) Struct(name string, members ...Member) *Struct {
	return NewStruct(name, members)
}

// IncompleteStruct returns a struct under construction, with its member
// list not yet marked typechecked — used to exercise IsComplete/
// declaration-of-incomplete-type diagnostics in tests.
func (b *Builder) IncompleteStruct(name string) *Struct {
	s := &Struct{Name: name}
	s.MarkMembersPending()
	return s
}

func (b *Builder) Named(name string, target Type) *Named {
	return NewNamed(name, target)
}
