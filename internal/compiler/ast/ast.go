package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/token"
)

// --- Interfaces ---

type Node interface {
	TokenLiteral() string
	String() string
}

// Expression is the closed set of expression nodes: number literals,
// variable references, binary operations, and calls. Every node owns
// its children exclusively; a parsed unit is always a tree.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// --- Expressions ---

// NumberLiteral -> 4.2
type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()       {}
func (nl *NumberLiteral) TokenLiteral() string  { return nl.Token.Literal }
func (nl *NumberLiteral) GetToken() token.Token { return nl.Token }
func (nl *NumberLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'g', -1, 64)
}

// Identifier -> a bare variable reference
type Identifier struct {
	Token token.Token // IDENT
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Literal }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

// BinaryExpression -> (left op right)
type BinaryExpression struct {
	Token    token.Token // the operator token
	Operator byte        // '+', '-', '*', '<'
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()       {}
func (be *BinaryExpression) TokenLiteral() string  { return be.Token.Literal }
func (be *BinaryExpression) GetToken() token.Token { return be.Token }
func (be *BinaryExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	if be.Left != nil {
		out.WriteString(be.Left.String())
	}
	out.WriteString(" " + string(be.Operator) + " ")
	if be.Right != nil {
		out.WriteString(be.Right.String())
	}
	out.WriteString(")")
	return out.String()
}

// CallExpression -> callee(arg1, arg2)
type CallExpression struct {
	Token     token.Token // the callee's identifier token
	Callee    string
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Literal }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	return ce.Callee + "(" + strings.Join(args, ", ") + ")"
}

// --- Declarations ---

// Prototype captures a function's name and ordered parameter names,
// independent of any body. An empty name marks the synthetic wrapper
// around a bare top-level expression.
type Prototype struct {
	Token  token.Token // the function name token
	Name   string
	Params []string
}

func (p *Prototype) TokenLiteral() string  { return p.Token.Literal }
func (p *Prototype) GetToken() token.Token { return p.Token }
func (p *Prototype) IsAnonymous() bool     { return p.Name == "" }
func (p *Prototype) String() string {
	return p.Name + "(" + strings.Join(p.Params, " ") + ")"
}

// FunctionDefinition -> def proto body, or the anonymous wrapper a
// bare top-level expression is parsed into.
type FunctionDefinition struct {
	Token token.Token // 'def', or the body's first token when anonymous
	Proto *Prototype
	Body  Expression
}

func (fd *FunctionDefinition) TokenLiteral() string  { return fd.Token.Literal }
func (fd *FunctionDefinition) GetToken() token.Token { return fd.Token }
func (fd *FunctionDefinition) String() string {
	var out bytes.Buffer
	if !fd.Proto.IsAnonymous() {
		out.WriteString("def ")
	}
	out.WriteString(fd.Proto.String())
	out.WriteString(" ")
	if fd.Body != nil {
		out.WriteString(fd.Body.String())
	}
	return out.String()
}

// Print dumps a node tree for debugging.
func Print(node Node, indent string) {
	switch n := node.(type) {
	case *FunctionDefinition:
		fmt.Println(indent + "FunctionDefinition")
		Print(n.Proto, indent+"  ")
		fmt.Println(indent + "  Body:")
		Print(n.Body, indent+"    ")

	case *Prototype:
		fmt.Printf("%sPrototype: %s\n", indent, n.String())

	case *BinaryExpression:
		fmt.Println(indent + "BinaryExpression")
		fmt.Println(indent+"  Operator:", string(n.Operator))
		fmt.Println(indent + "  Left:")
		Print(n.Left, indent+"    ")
		fmt.Println(indent + "  Right:")
		Print(n.Right, indent+"    ")

	case *CallExpression:
		fmt.Println(indent+"CallExpression:", n.Callee)
		for i, arg := range n.Arguments {
			fmt.Printf(indent+"  Arg[%d]:\n", i)
			Print(arg, indent+"    ")
		}

	case *Identifier:
		fmt.Println(indent+"Identifier:", n.Value)

	case *NumberLiteral:
		fmt.Println(indent+"NumberLiteral:", n.Value)

	default:
		fmt.Printf("%s<unknown node type: %T>\n", indent, n)
	}
}
