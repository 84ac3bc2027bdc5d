// Package llvmgen implements the ir.Builder capability on top of an
// LLVM context/module/builder bundle.
package llvmgen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir"
)

type Builder struct {
	ctx     llvm.Context
	module  llvm.Module
	builder llvm.Builder
}

func New(moduleName string) *Builder {
	ctx := llvm.NewContext()
	return &Builder{
		ctx:     ctx,
		module:  ctx.NewModule(moduleName),
		builder: ctx.NewBuilder(),
	}
}

// Dispose releases the underlying LLVM objects. The Builder must not
// be used afterwards.
func (g *Builder) Dispose() {
	g.builder.Dispose()
	g.module.Dispose()
	g.ctx.Dispose()
}

// ModuleIR returns the textual IR of everything built so far.
func (g *Builder) ModuleIR() string {
	return g.module.String()
}

// DumpFunction prints the IR of one function to stderr.
func (g *Builder) DumpFunction(fn ir.Function) {
	fn.(*function).fn.Dump()
}

type function struct {
	fn llvm.Value
}

func (f *function) Name() string           { return f.fn.Name() }
func (f *function) NumParams() int         { return f.fn.ParamsCount() }
func (f *function) Param(i int) ir.Value   { return f.fn.Param(i) }
func (f *function) ParamName(i int) string { return f.fn.Param(i).Name() }
func (f *function) HasBody() bool          { return !f.fn.IsDeclaration() }

// fnType rebuilds the (double, ..., double) -> double signature for a
// function; every function in the language has this shape.
func (g *Builder) fnType(numParams int) llvm.Type {
	doubles := make([]llvm.Type, numParams)
	for i := range doubles {
		doubles[i] = g.ctx.DoubleType()
	}
	return llvm.FunctionType(g.ctx.DoubleType(), doubles, false)
}

func (g *Builder) DeclareFunction(name string, params []string) ir.Function {
	fn := llvm.AddFunction(g.module, name, g.fnType(len(params)))
	for i, p := range fn.Params() {
		p.SetName(params[i])
	}
	return &function{fn: fn}
}

func (g *Builder) NamedFunction(name string) (ir.Function, bool) {
	if name == "" {
		// Anonymous top-level wrappers are never looked up; each bare
		// expression gets a fresh unnamed function.
		return nil, false
	}
	fn := g.module.NamedFunction(name)
	if fn.IsNil() {
		return nil, false
	}
	return &function{fn: fn}, true
}

func (g *Builder) SetEntryBlock(fn ir.Function) {
	block := g.ctx.AddBasicBlock(fn.(*function).fn, "entry")
	g.builder.SetInsertPointAtEnd(block)
}

func (g *Builder) ConstFloat(v float64) ir.Value {
	return llvm.ConstFloat(g.ctx.DoubleType(), v)
}

func (g *Builder) Add(lhs, rhs ir.Value) ir.Value {
	return g.builder.CreateFAdd(lhs.(llvm.Value), rhs.(llvm.Value), "addtmp")
}

func (g *Builder) Sub(lhs, rhs ir.Value) ir.Value {
	return g.builder.CreateFSub(lhs.(llvm.Value), rhs.(llvm.Value), "subtmp")
}

func (g *Builder) Mul(lhs, rhs ir.Value) ir.Value {
	return g.builder.CreateFMul(lhs.(llvm.Value), rhs.(llvm.Value), "multmp")
}

func (g *Builder) CmpULT(lhs, rhs ir.Value) ir.Value {
	return g.builder.CreateFCmp(llvm.FloatULT, lhs.(llvm.Value), rhs.(llvm.Value), "cmptmp")
}

func (g *Builder) BoolToFloat(v ir.Value) ir.Value {
	return g.builder.CreateUIToFP(v.(llvm.Value), g.ctx.DoubleType(), "booltmp")
}

func (g *Builder) Call(fn ir.Function, args []ir.Value) ir.Value {
	f := fn.(*function)
	vals := make([]llvm.Value, len(args))
	for i, a := range args {
		vals[i] = a.(llvm.Value)
	}
	return g.builder.CreateCall(g.fnType(f.NumParams()), f.fn, vals, "calltmp")
}

func (g *Builder) Ret(v ir.Value) {
	g.builder.CreateRet(v.(llvm.Value))
}

func (g *Builder) EraseFunction(fn ir.Function) {
	fn.(*function).fn.EraseFromParentAsFunction()
}

func (g *Builder) VerifyFunction(fn ir.Function) error {
	if err := llvm.VerifyFunction(fn.(*function).fn, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("llvm verifier: %w", err)
	}
	return nil
}
