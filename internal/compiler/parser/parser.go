package parser

import (
	"fmt"
	"slices"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/ast"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/lexer"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/token"
)

// binaryPrecedence is the fixed precedence table for single-character
// binary operators. Anything absent is not a binary operator.
var binaryPrecedence = map[byte]int{
	'<': 10,
	'+': 20,
	'-': 20,
	'*': 40,
}

// tokenPrecedence returns the binary-operator precedence of the
// current token, or -1 when it cannot act as a binary operator.
func tokenPrecedence(tok token.Token) int {
	if op := tok.Punct(); op != 0 {
		if prec, ok := binaryPrecedence[op]; ok {
			return prec
		}
	}
	return -1
}

// Parser consumes tokens one at a time, holding the single live token
// in curTok. Every parse method assumes the caller already positioned
// the cursor at the first token of its construct.
type Parser struct {
	l      *lexer.Lexer
	curTok token.Token
}

// NewParser wraps a lexer. The cursor starts empty: the caller primes
// it with Advance before dispatching, mirroring how tokens stay lazy
// until the driver asks for one.
func NewParser(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Advance moves the cursor to the next token.
func (p *Parser) Advance() {
	p.curTok = p.l.NextToken()
}

// Current returns the token under the cursor.
func (p *Parser) Current() token.Token {
	return p.curTok
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%d:%d: syntax error: %s", tok.Line, tok.Column, msg)
}

// --- Expression Parsing ---

// parseExpression = primary followed by a chain of binary operators,
// resolved by precedence climbing.
func (p *Parser) parseExpression() (ast.Expression, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS resolves the operator chain following lhs. It consumes
// operator/primary pairs while the operator under the cursor has at
// least minPrec precedence, recursing only when the operator after a
// right-hand side binds strictly tighter than the one just consumed.
// The strict comparison is what makes equal-precedence chains
// left-associative.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expression) (ast.Expression, error) {
	for {
		curPrec := tokenPrecedence(p.curTok)
		if curPrec < minPrec {
			return lhs, nil
		}

		opTok := p.curTok
		op := opTok.Punct()
		p.Advance() // eat operator

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		// The primary is consumed, so the cursor now sits on whatever
		// follows the candidate right-hand side. If that binds
		// tighter, it takes the candidate first.
		if curPrec < tokenPrecedence(p.curTok) {
			rhs, err = p.parseBinOpRHS(curPrec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.BinaryExpression{Token: opTok, Operator: op, Left: lhs, Right: rhs}
	}
}

// parsePrimary dispatches on the token under the cursor.
func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch {
	case p.curTok.Type == token.TokenIdent:
		return p.parseIdentifierExpr()
	case p.curTok.Type == token.TokenNumber:
		return p.parseNumberExpr()
	case p.curTok.IsPunct('('):
		return p.parseParenExpr()
	default:
		return nil, p.errorf(p.curTok, "expected an expression, got %s ('%s')", p.curTok.Type, p.curTok.Literal)
	}
}

func (p *Parser) parseNumberExpr() (ast.Expression, error) {
	expr := &ast.NumberLiteral{Token: p.curTok, Value: p.curTok.Value}
	p.Advance()
	return expr, nil
}

func (p *Parser) parseParenExpr() (ast.Expression, error) {
	p.Advance() // eat '('
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.curTok.IsPunct(')') {
		return nil, p.errorf(p.curTok, "expected ')'")
	}
	p.Advance() // eat ')'
	return expr, nil
}

// parseIdentifierExpr parses either a bare variable reference or, when
// a '(' follows the name, a call with a comma-separated argument list.
// A call with zero arguments is permitted.
func (p *Parser) parseIdentifierExpr() (ast.Expression, error) {
	nameTok := p.curTok
	p.Advance()

	if !p.curTok.IsPunct('(') {
		return &ast.Identifier{Token: nameTok, Value: nameTok.Literal}, nil
	}

	p.Advance() // eat '('
	args := []ast.Expression{}
	if !p.curTok.IsPunct(')') {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.curTok.IsPunct(')') {
				break
			}
			if !p.curTok.IsPunct(',') {
				return nil, p.errorf(p.curTok, "expected ',' or ')' in argument list")
			}
			p.Advance() // eat ','
		}
	}
	p.Advance() // eat ')'

	return &ast.CallExpression{Token: nameTok, Callee: nameTok.Literal, Arguments: args}, nil
}

// --- Prototypes and Definitions ---

// parsePrototype parses name '(' param* ')'. Parameter names have no
// separator between them. Duplicate parameter names are rejected: the
// scope table keys on the name, so a duplicate would silently shadow
// its twin during lowering.
func (p *Parser) parsePrototype() (*ast.Prototype, error) {
	if p.curTok.Type != token.TokenIdent {
		return nil, p.errorf(p.curTok, "expected function name in prototype")
	}
	nameTok := p.curTok
	p.Advance()

	if !p.curTok.IsPunct('(') {
		return nil, p.errorf(p.curTok, "expected '(' in prototype")
	}
	p.Advance()

	params := []string{}
	for p.curTok.Type == token.TokenIdent {
		if slices.Contains(params, p.curTok.Literal) {
			return nil, p.errorf(p.curTok, "duplicate parameter name '%s'", p.curTok.Literal)
		}
		params = append(params, p.curTok.Literal)
		p.Advance()
	}

	if !p.curTok.IsPunct(')') {
		return nil, p.errorf(p.curTok, "expected ')' in prototype")
	}
	p.Advance()

	return &ast.Prototype{Token: nameTok, Name: nameTok.Literal, Params: params}, nil
}

// ParseDefinition parses 'def' prototype expression. The body is
// exactly one expression; no terminator is required.
func (p *Parser) ParseDefinition() (*ast.FunctionDefinition, error) {
	defTok := p.curTok
	p.Advance() // eat 'def'

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDefinition{Token: defTok, Proto: proto, Body: body}, nil
}

// ParseExtern parses 'extern' prototype.
func (p *Parser) ParseExtern() (*ast.Prototype, error) {
	p.Advance() // eat 'extern'
	return p.parsePrototype()
}

// ParseTopLevelExpr wraps a bare expression in an anonymous,
// zero-parameter definition so the lowering pass treats every parsed
// unit uniformly as a function.
func (p *Parser) ParseTopLevelExpr() (*ast.FunctionDefinition, error) {
	firstTok := p.curTok
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	proto := &ast.Prototype{Token: firstTok, Name: "", Params: []string{}}
	return &ast.FunctionDefinition{Token: firstTok, Proto: proto, Body: expr}, nil
}
