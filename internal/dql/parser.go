package dql

import (
	"github.com/roach88/treeq/internal/qerr"
)

// Parser is a recursive-descent parser over a token stream. Function nodes
// drive it through Match, Lookahead and ArithmeticPrimary while parsing
// their own argument lists.
type Parser struct {
	tokens   []Token
	pos      int
	registry *Registry
}

// NewParser tokenizes src. A nil registry means DefaultRegistry.
func NewParser(src string, reg *Registry) (*Parser, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Parser{tokens: tokens, registry: reg}, nil
}

// Lookahead returns the next unconsumed token.
func (p *Parser) Lookahead() Token {
	return p.peek(0)
}

func (p *Parser) peek(n int) Token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

// Match consumes the next token if it is of kind, and fails with a parse
// error otherwise.
func (p *Parser) Match(kind TokenKind) (Token, error) {
	tok := p.Lookahead()
	if tok.Kind != kind {
		return tok, qerr.ParseError(tok.Pos, "expected %s, got %s", kind, tok.describe())
	}
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok, nil
}

// Parse parses src as a single expression.
func Parse(src string, reg *Registry) (Node, error) {
	p, err := NewParser(src, reg)
	if err != nil {
		return nil, err
	}
	return p.Expression()
}

// Expression parses one arithmetic expression spanning the whole input.
func (p *Parser) Expression() (Node, error) {
	n, err := p.ArithmeticExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.Match(TokenEOF); err != nil {
		return nil, err
	}
	return n, nil
}

// ArithmeticExpression parses term {("+" | "-") term}.
func (p *Parser) ArithmeticExpression() (Node, error) {
	left, err := p.arithmeticTerm()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.Lookahead().Kind
		if kind != TokenPlus && kind != TokenMinus {
			return left, nil
		}
		op := p.next()
		right, err := p.arithmeticTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Op: op.Text, Left: left, Right: right}
	}
}

// arithmeticTerm parses factor {("*" | "/") factor}.
func (p *Parser) arithmeticTerm() (Node, error) {
	left, err := p.arithmeticFactor()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.Lookahead().Kind
		if kind != TokenMultiply && kind != TokenDivide {
			return left, nil
		}
		op := p.next()
		right, err := p.arithmeticFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Op: op.Text, Left: left, Right: right}
	}
}

// arithmeticFactor parses ["+" | "-"] primary.
func (p *Parser) arithmeticFactor() (Node, error) {
	kind := p.Lookahead().Kind
	if kind != TokenPlus && kind != TokenMinus {
		return p.ArithmeticPrimary()
	}
	op := p.next()
	operand, err := p.ArithmeticPrimary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpression{Op: op.Text, Operand: operand}, nil
}

// ArithmeticPrimary parses a literal, parameter, path, function call, or
// parenthesized expression.
func (p *Parser) ArithmeticPrimary() (Node, error) {
	tok := p.Lookahead()
	switch tok.Kind {
	case TokenOpenParen:
		p.next()
		inner, err := p.ArithmeticExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.Match(TokenCloseParen); err != nil {
			return nil, err
		}
		return &ParenExpression{Inner: inner}, nil
	case TokenNumber:
		p.next()
		return &Literal{Kind: LiteralNumber, Value: tok.Text}, nil
	case TokenString:
		p.next()
		return &Literal{Kind: LiteralString, Value: tok.Text}, nil
	case TokenParameter:
		p.next()
		return &InputParameter{Name: tok.Text}, nil
	case TokenIdentifier:
		if p.peek(1).Kind == TokenOpenParen {
			return p.functionCall()
		}
		return p.pathExpression()
	default:
		return nil, qerr.ParseError(tok.Pos, "unexpected %s", tok.describe())
	}
}

func (p *Parser) functionCall() (Node, error) {
	tok := p.Lookahead()
	factory, ok := p.registry.Lookup(tok.Text)
	if !ok {
		return nil, qerr.ParseError(tok.Pos, "unknown function %s", tok.Text)
	}
	fn := factory()
	if err := fn.Parse(p); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) pathExpression() (Node, error) {
	first, err := p.Match(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	path := &PathExpression{Parts: []string{first.Text}}
	for p.Lookahead().Kind == TokenDot {
		p.next()
		part, err := p.Match(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		path.Parts = append(path.Parts, part.Text)
	}
	return path, nil
}

func (p *Parser) next() Token {
	tok := p.Lookahead()
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}
