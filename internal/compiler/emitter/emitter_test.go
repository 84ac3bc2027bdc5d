package emitter

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/ast"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir/irtest"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/lexer"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/parser"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/token"
)

// --- Helpers ---

func newParser(input string) *parser.Parser {
	p := parser.NewParser(lexer.NewLexer(strings.NewReader(input)))
	p.Advance()
	return p
}

func mustParseDef(t *testing.T, input string) *ast.FunctionDefinition {
	t.Helper()
	p := newParser(input)
	var (
		def *ast.FunctionDefinition
		err error
	)
	if p.Current().Type == token.TokenDef {
		def, err = p.ParseDefinition()
	} else {
		def, err = p.ParseTopLevelExpr()
	}
	be.Err(t, err, nil)
	return def
}

func mustParseProto(t *testing.T, input string) *ast.Prototype {
	t.Helper()
	proto, err := newParser(input).ParseExtern()
	be.Err(t, err, nil)
	return proto
}

// --- Lowering Shapes ---

func TestAnonymousExpression(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	fn, err := em.EmitFunction(mustParseDef(t, "40+2"))
	be.Err(t, err, nil)

	be.Equal(t, fn.Name(), "")
	be.Equal(t, fn.NumParams(), 0)
	be.Equal(t, len(b.Anonymous()), 1)
	be.Equal(t, b.Anonymous()[0].Return(), "fadd(40, 2)")
}

func TestParametersAndArithmetic(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitFunction(mustParseDef(t, "def foo(a b) a+b*2"))
	be.Err(t, err, nil)

	fn, ok := b.Function("foo")
	be.True(t, ok)
	be.True(t, fn.HasBody())
	be.Equal(t, fn.Return(), "fadd(%a, fmul(%b, 2))")
}

func TestCompareWidensToFloat(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitFunction(mustParseDef(t, "def lt(a b) a<b"))
	be.Err(t, err, nil)

	fn, _ := b.Function("lt")
	be.Equal(t, fn.Return(), "ui-to-fp(fcmp-ult(%a, %b))")
}

func TestCallLowering(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitPrototype(mustParseProto(t, "extern hypot(x y)"))
	be.Err(t, err, nil)
	_, err = em.EmitFunction(mustParseDef(t, "def f(a) hypot(a, 3)"))
	be.Err(t, err, nil)

	fn, _ := b.Function("f")
	be.Equal(t, fn.Return(), "call hypot(%a, 3)")
}

// --- Failure Cases ---

func TestUndefinedVariable(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitFunction(mustParseDef(t, "def f(a) b"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "undefined variable 'b'"))

	// The partially built function is discarded.
	_, ok := b.Function("f")
	be.True(t, !ok)
}

func TestScopeDoesNotLeakBetweenFunctions(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitFunction(mustParseDef(t, "def f(a) a"))
	be.Err(t, err, nil)

	_, err = em.EmitFunction(mustParseDef(t, "def g() a"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "undefined variable 'a'"))
}

func TestUnknownFunction(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitFunction(mustParseDef(t, "bar(1)"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "unknown function 'bar'"))

	// The callee is resolved before any argument is lowered, so a
	// failed call leaves no instructions behind.
	be.Equal(t, len(b.Ops), 0)
	be.Equal(t, b.NumFunctions(), 0)
}

func TestCallArityMismatch(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitPrototype(mustParseProto(t, "extern foo(a b)"))
	be.Err(t, err, nil)

	_, err = em.EmitFunction(mustParseDef(t, "foo(1)"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "takes 2 arguments, got 1"))
}

func TestRedefinitionRejected(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitFunction(mustParseDef(t, "def foo(a) a"))
	be.Err(t, err, nil)

	_, err = em.EmitFunction(mustParseDef(t, "def foo(a) a+1"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "already has a body"))

	// The first definition is still registered, intact.
	fn, ok := b.Function("foo")
	be.True(t, ok)
	be.Equal(t, fn.Return(), "%a")
	be.Equal(t, b.NumFunctions(), 1)
}

func TestExternThenDefinitionReusesDeclaration(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	decl, err := em.EmitPrototype(mustParseProto(t, "extern foo(a b)"))
	be.Err(t, err, nil)
	be.True(t, !decl.HasBody())

	def, err := em.EmitFunction(mustParseDef(t, "def foo(a b) a+b"))
	be.Err(t, err, nil)

	// Same handle: no duplicate was created.
	be.True(t, decl.(*irtest.Function) == def.(*irtest.Function))
	be.True(t, decl.HasBody())
	be.Equal(t, b.NumFunctions(), 1)
}

func TestRepeatedExternReusesDeclaration(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	first, err := em.EmitPrototype(mustParseProto(t, "extern sin(x)"))
	be.Err(t, err, nil)
	second, err := em.EmitPrototype(mustParseProto(t, "extern sin(x)"))
	be.Err(t, err, nil)

	be.True(t, first.(*irtest.Function) == second.(*irtest.Function))
	be.Equal(t, b.NumFunctions(), 1)
}

func TestPrototypeArityConflict(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitPrototype(mustParseProto(t, "extern foo(a)"))
	be.Err(t, err, nil)

	_, err = em.EmitPrototype(mustParseProto(t, "extern foo(a b)"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "redeclared with 2 parameters"))
}

func TestDefinitionArityConflict(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	_, err := em.EmitPrototype(mustParseProto(t, "extern foo(a b)"))
	be.Err(t, err, nil)

	_, err = em.EmitFunction(mustParseDef(t, "def foo(a) a"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "defined with 1 parameters, declared with 2"))
}

func TestInvalidBinaryOperator(t *testing.T) {
	b := irtest.NewBuilder()
	em := NewEmitter(b)

	// The parser never produces '/', so build the node directly.
	def := mustParseDef(t, "def f(a) a")
	def.Body = &ast.BinaryExpression{
		Token:    def.Body.GetToken(),
		Operator: '/',
		Left:     def.Body,
		Right:    &ast.NumberLiteral{Value: 2},
	}

	_, err := em.EmitFunction(def)
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "invalid binary operator '/'"))
	_, ok := b.Function("f")
	be.True(t, !ok)
}

func TestVerificationFailureDiscardsFunction(t *testing.T) {
	b := irtest.NewBuilder()
	b.FailVerify = true
	em := NewEmitter(b)

	_, err := em.EmitFunction(mustParseDef(t, "def f(a) a"))
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "failed verification"))

	_, ok := b.Function("f")
	be.True(t, !ok)
}
