// Package irtest provides an in-memory ir.Builder for tests. Values
// are rendered as readable strings ("fadd(%a, 2)") so assertions can
// check the exact shape of what the lowering pass emitted.
package irtest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir"
)

type Function struct {
	name    string
	params  []string
	hasBody bool
	ret     ir.Value
}

func (f *Function) Name() string           { return f.name }
func (f *Function) NumParams() int         { return len(f.params) }
func (f *Function) Param(i int) ir.Value   { return ir.Value("%" + f.params[i]) }
func (f *Function) ParamName(i int) string { return f.params[i] }
func (f *Function) HasBody() bool          { return f.hasBody }

// Return reports the value handed to Ret, or "" if none was emitted.
func (f *Function) Return() string {
	if f.ret == nil {
		return ""
	}
	return f.ret.(string)
}

type Builder struct {
	// Ops records every instruction-producing call in order, across
	// all functions.
	Ops []string

	// FailVerify makes VerifyFunction report a failure.
	FailVerify bool

	funcs   map[string]*Function
	anon    []*Function
	current *Function
}

func NewBuilder() *Builder {
	return &Builder{funcs: make(map[string]*Function)}
}

// Function looks up a named function for assertions.
func (b *Builder) Function(name string) (*Function, bool) {
	fn, ok := b.funcs[name]
	return fn, ok
}

// NumFunctions counts everything registered, named and anonymous.
func (b *Builder) NumFunctions() int {
	return len(b.funcs) + len(b.anon)
}

// Anonymous returns the anonymous definitions in creation order.
func (b *Builder) Anonymous() []*Function {
	return b.anon
}

func (b *Builder) op(format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	b.Ops = append(b.Ops, s)
	return s
}

// --- ir.Builder ---

func (b *Builder) DeclareFunction(name string, params []string) ir.Function {
	fn := &Function{name: name, params: append([]string{}, params...)}
	if name == "" {
		// Anonymous wrappers are never looked up by name; each one is
		// a fresh function.
		b.anon = append(b.anon, fn)
	} else {
		b.funcs[name] = fn
	}
	return fn
}

func (b *Builder) NamedFunction(name string) (ir.Function, bool) {
	if name == "" {
		return nil, false
	}
	fn, ok := b.funcs[name]
	if !ok {
		return nil, false
	}
	return fn, true
}

func (b *Builder) SetEntryBlock(fn ir.Function) {
	f := fn.(*Function)
	f.hasBody = true
	b.current = f
}

func (b *Builder) ConstFloat(v float64) ir.Value {
	return ir.Value(strconv.FormatFloat(v, 'g', -1, 64))
}

func (b *Builder) Add(lhs, rhs ir.Value) ir.Value {
	return ir.Value(b.op("fadd(%s, %s)", lhs, rhs))
}

func (b *Builder) Sub(lhs, rhs ir.Value) ir.Value {
	return ir.Value(b.op("fsub(%s, %s)", lhs, rhs))
}

func (b *Builder) Mul(lhs, rhs ir.Value) ir.Value {
	return ir.Value(b.op("fmul(%s, %s)", lhs, rhs))
}

func (b *Builder) CmpULT(lhs, rhs ir.Value) ir.Value {
	return ir.Value(b.op("fcmp-ult(%s, %s)", lhs, rhs))
}

func (b *Builder) BoolToFloat(v ir.Value) ir.Value {
	return ir.Value(b.op("ui-to-fp(%s)", v))
}

func (b *Builder) Call(fn ir.Function, args []ir.Value) ir.Value {
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = a.(string)
	}
	return ir.Value(b.op("call %s(%s)", fn.Name(), strings.Join(strs, ", ")))
}

func (b *Builder) Ret(v ir.Value) {
	b.op("ret %s", v)
	if b.current != nil {
		b.current.ret = v
	}
}

func (b *Builder) EraseFunction(fn ir.Function) {
	f := fn.(*Function)
	if f.name != "" {
		delete(b.funcs, f.name)
		return
	}
	for i, a := range b.anon {
		if a == f {
			b.anon = append(b.anon[:i], b.anon[i+1:]...)
			return
		}
	}
}

func (b *Builder) VerifyFunction(fn ir.Function) error {
	if b.FailVerify {
		return errors.New("forced verification failure")
	}
	if fn.(*Function).ret == nil {
		return errors.New("function has no return")
	}
	return nil
}
