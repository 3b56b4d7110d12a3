package dql

import (
	"strings"
)

// Node is a parsed expression that can render itself through a Walker.
type Node interface {
	SQL(w *Walker) (string, error)
}

// FunctionNode is a function call node. Parse consumes the whole call,
// starting at the function name.
type FunctionNode interface {
	Node
	Parse(p *Parser) error
}

// PathExpression is a dotted column reference such as n.status.
type PathExpression struct {
	Parts []string
}

func (e *PathExpression) SQL(*Walker) (string, error) {
	return strings.Join(e.Parts, "."), nil
}

// LiteralKind distinguishes string and numeric literals.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
)

// Literal is a constant. Value is unquoted for strings.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (l *Literal) SQL(*Walker) (string, error) {
	if l.Kind == LiteralNumber {
		return l.Value, nil
	}
	return "'" + strings.ReplaceAll(l.Value, "'", "''") + "'", nil
}

// InputParameter is a named placeholder, rendered as :name and bound later.
type InputParameter struct {
	Name string
}

func (p *InputParameter) SQL(*Walker) (string, error) {
	return ":" + p.Name, nil
}

// UnaryExpression is a signed operand.
type UnaryExpression struct {
	Op      string
	Operand Node
}

func (u *UnaryExpression) SQL(w *Walker) (string, error) {
	operand, err := w.Walk(u.Operand)
	if err != nil {
		return "", err
	}
	return u.Op + operand, nil
}

// BinaryExpression is an arithmetic operation.
type BinaryExpression struct {
	Op          string
	Left, Right Node
}

func (b *BinaryExpression) SQL(w *Walker) (string, error) {
	left, err := w.Walk(b.Left)
	if err != nil {
		return "", err
	}
	right, err := w.Walk(b.Right)
	if err != nil {
		return "", err
	}
	return left + " " + b.Op + " " + right, nil
}

// ParenExpression keeps explicit grouping from the source.
type ParenExpression struct {
	Inner Node
}

func (p *ParenExpression) SQL(w *Walker) (string, error) {
	inner, err := w.Walk(p.Inner)
	if err != nil {
		return "", err
	}
	return "(" + inner + ")", nil
}
