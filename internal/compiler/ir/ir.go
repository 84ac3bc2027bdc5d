// Package ir defines the builder capability the lowering pass emits
// against. The pipeline never inspects the representation a backend
// builds; it only issues operations and checks their outcomes.
package ir

// Value is an opaque handle to an IR value produced by a Builder.
// Handles are only meaningful to the Builder that produced them.
type Value any

// Function is a handle to a declared or defined function in the
// backend's module.
type Function interface {
	Name() string
	NumParams() int
	Param(i int) Value
	ParamName(i int) string
	// HasBody reports whether the function is a full definition rather
	// than a bare declaration.
	HasBody() bool
}

// Builder is the set of operations the lowering pass needs. All values
// are the backend's double-precision scalar type; the comparison
// result of CmpULT is the backend's boolean and must be widened back
// with BoolToFloat before further use.
type Builder interface {
	// DeclareFunction creates a declaration taking len(params) scalars
	// and returning one scalar, with the formal parameters bound to
	// the given names.
	DeclareFunction(name string, params []string) Function

	// NamedFunction looks up an already declared or defined function.
	NamedFunction(name string) (Function, bool)

	// SetEntryBlock creates a fresh entry block in fn and positions
	// subsequent instruction emission inside it.
	SetEntryBlock(fn Function)

	ConstFloat(v float64) Value
	Add(lhs, rhs Value) Value
	Sub(lhs, rhs Value) Value
	Mul(lhs, rhs Value) Value

	// CmpULT emits an unsigned-less-than comparison producing a
	// boolean value.
	CmpULT(lhs, rhs Value) Value

	// BoolToFloat widens a CmpULT result to the scalar type
	// (0.0 or 1.0).
	BoolToFloat(v Value) Value

	Call(fn Function, args []Value) Value
	Ret(v Value)

	// EraseFunction discards a partially built function so a failed
	// lowering leaves nothing registered under its name.
	EraseFunction(fn Function)

	// VerifyFunction runs the backend's structural checks on a
	// finished function.
	VerifyFunction(fn Function) error
}
