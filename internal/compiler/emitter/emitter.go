package emitter

import (
	"fmt"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/ast"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/scope"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/token"
)

// Emitter walks a parsed unit and lowers it into calls against the
// backend Builder. Variable references resolve against a scope table
// that lives for exactly one function body.
type Emitter struct {
	backend ir.Builder
	vars    *scope.Scope // nil outside EmitFunction
}

func NewEmitter(backend ir.Builder) *Emitter {
	return &Emitter{backend: backend}
}

func (e *Emitter) errorf(tok token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%d:%d: %s", tok.Line, tok.Column, msg)
}

// emitExpression lowers one expression node, dispatching over the
// closed node-kind set.
func (e *Emitter) emitExpression(expr ast.Expression) (ir.Value, error) {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return e.backend.ConstFloat(n.Value), nil

	case *ast.Identifier:
		val, ok := e.vars.Lookup(n.Value)
		if !ok {
			return nil, e.errorf(n.Token, "undefined variable '%s'", n.Value)
		}
		return val, nil

	case *ast.BinaryExpression:
		return e.emitBinary(n)

	case *ast.CallExpression:
		return e.emitCall(n)

	default:
		return nil, e.errorf(expr.GetToken(), "internal error: unhandled node type %T", expr)
	}
}

func (e *Emitter) emitBinary(n *ast.BinaryExpression) (ir.Value, error) {
	left, err := e.emitExpression(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.emitExpression(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case '+':
		return e.backend.Add(left, right), nil
	case '-':
		return e.backend.Sub(left, right), nil
	case '*':
		return e.backend.Mul(left, right), nil
	case '<':
		// The comparison yields a boolean; the language represents
		// booleans as 0.0/1.0 doubles, so widen it back.
		cmp := e.backend.CmpULT(left, right)
		return e.backend.BoolToFloat(cmp), nil
	default:
		return nil, e.errorf(n.Token, "invalid binary operator '%c'", n.Operator)
	}
}

func (e *Emitter) emitCall(n *ast.CallExpression) (ir.Value, error) {
	callee, ok := e.backend.NamedFunction(n.Callee)
	if !ok {
		return nil, e.errorf(n.Token, "unknown function '%s'", n.Callee)
	}
	if callee.NumParams() != len(n.Arguments) {
		return nil, e.errorf(n.Token, "function '%s' takes %d arguments, got %d",
			n.Callee, callee.NumParams(), len(n.Arguments))
	}

	args := make([]ir.Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, err := e.emitExpression(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return e.backend.Call(callee, args), nil
}

// EmitPrototype declares a function taking len(proto.Params) scalars
// and returning one scalar. Re-declaring an existing function reuses
// its handle when the arity matches; an arity conflict or a clash with
// a named definition's signature is an error rather than a renamed
// duplicate in the module.
func (e *Emitter) EmitPrototype(proto *ast.Prototype) (ir.Function, error) {
	if existing, ok := e.backend.NamedFunction(proto.Name); ok {
		if existing.NumParams() != len(proto.Params) {
			return nil, e.errorf(proto.Token, "function '%s' redeclared with %d parameters, previously %d",
				proto.Name, len(proto.Params), existing.NumParams())
		}
		return existing, nil
	}
	return e.backend.DeclareFunction(proto.Name, proto.Params), nil
}

// EmitFunction lowers a definition: resolve or create the declaration,
// reject redefinition, build the body in a fresh entry block against a
// fresh scope, then return the body's value and verify. Any failure
// after the declaration is resolved erases the function so nothing
// malformed stays registered under its name.
func (e *Emitter) EmitFunction(def *ast.FunctionDefinition) (ir.Function, error) {
	proto := def.Proto

	fn, ok := e.backend.NamedFunction(proto.Name)
	if !ok {
		fn = e.backend.DeclareFunction(proto.Name, proto.Params)
	} else {
		if fn.HasBody() {
			return nil, e.errorf(proto.Token, "function '%s' already has a body", proto.Name)
		}
		if fn.NumParams() != len(proto.Params) {
			return nil, e.errorf(proto.Token, "function '%s' defined with %d parameters, declared with %d",
				proto.Name, len(proto.Params), fn.NumParams())
		}
	}

	e.backend.SetEntryBlock(fn)

	// The scope is rebuilt from the IR function's own parameters, so a
	// definition that reuses an earlier declaration binds the names
	// that declaration established.
	e.vars = scope.NewScope(proto.Name)
	defer func() { e.vars = nil }()
	for i := 0; i < fn.NumParams(); i++ {
		if err := e.vars.Define(fn.ParamName(i), fn.Param(i)); err != nil {
			e.backend.EraseFunction(fn)
			return nil, e.errorf(proto.Token, "function '%s': %v", proto.Name, err)
		}
	}

	bodyVal, err := e.emitExpression(def.Body)
	if err != nil {
		e.backend.EraseFunction(fn)
		return nil, err
	}

	e.backend.Ret(bodyVal)

	if err := e.backend.VerifyFunction(fn); err != nil {
		e.backend.EraseFunction(fn)
		return nil, e.errorf(proto.Token, "function '%s' failed verification: %v", proto.Name, err)
	}
	return fn, nil
}
