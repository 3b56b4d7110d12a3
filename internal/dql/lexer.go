package dql

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/roach88/treeq/internal/qerr"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenString
	TokenNumber
	TokenParameter
	TokenOpenParen
	TokenCloseParen
	TokenComma
	TokenDot
	TokenPlus
	TokenMinus
	TokenMultiply
	TokenDivide
)

var tokenNames = map[TokenKind]string{
	TokenEOF:        "end of input",
	TokenIdentifier: "identifier",
	TokenString:     "string",
	TokenNumber:     "number",
	TokenParameter:  "parameter",
	TokenOpenParen:  "'('",
	TokenCloseParen: "')'",
	TokenComma:      "','",
	TokenDot:        "'.'",
	TokenPlus:       "'+'",
	TokenMinus:      "'-'",
	TokenMultiply:   "'*'",
	TokenDivide:     "'/'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

var punctuation = map[rune]TokenKind{
	'(': TokenOpenParen,
	')': TokenCloseParen,
	',': TokenComma,
	'.': TokenDot,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMultiply,
	'/': TokenDivide,
}

// Token is one lexical token. Text holds the identifier, the number as
// written, the unquoted string value, or the parameter name without ':'.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // byte offset into the source
}

func (t Token) describe() string {
	switch t.Kind {
	case TokenIdentifier, TokenNumber:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case TokenString:
		return fmt.Sprintf("string '%s'", t.Text)
	case TokenParameter:
		return fmt.Sprintf("parameter :%s", t.Text)
	default:
		return t.Kind.String()
	}
}

// Tokenize splits src into tokens, always ending with TokenEOF.
func Tokenize(src string) ([]Token, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats

	var scanErr error
	s.Error = func(sc *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = qerr.ParseError(sc.Pos().Offset, "%s", msg)
		}
	}

	var tokens []Token
	for {
		tok := s.Scan()
		if scanErr != nil {
			return nil, scanErr
		}
		pos := s.Position.Offset

		switch tok {
		case scanner.EOF:
			return append(tokens, Token{Kind: TokenEOF, Pos: len(src)}), nil
		case scanner.Ident:
			tokens = append(tokens, Token{Kind: TokenIdentifier, Text: s.TokenText(), Pos: pos})
		case scanner.Int, scanner.Float:
			tokens = append(tokens, Token{Kind: TokenNumber, Text: s.TokenText(), Pos: pos})
		case '\'':
			text, err := scanString(&s, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: text, Pos: pos})
		case ':':
			if !isNameStart(s.Peek()) {
				return nil, qerr.ParseError(pos, "expected parameter name after ':'")
			}
			s.Scan()
			tokens = append(tokens, Token{Kind: TokenParameter, Text: s.TokenText(), Pos: pos})
		default:
			kind, ok := punctuation[tok]
			if !ok {
				return nil, qerr.ParseError(pos, "unexpected character %q", tok)
			}
			tokens = append(tokens, Token{Kind: kind, Text: string(tok), Pos: pos})
		}
	}
}

// scanString reads a single-quoted literal body; '' is an escaped quote.
func scanString(s *scanner.Scanner, start int) (string, error) {
	var b strings.Builder
	for {
		ch := s.Next()
		switch ch {
		case scanner.EOF:
			return "", qerr.ParseError(start, "unterminated string literal")
		case '\'':
			if s.Peek() != '\'' {
				return b.String(), nil
			}
			s.Next()
		}
		b.WriteRune(ch)
	}
}

func isNameStart(ch rune) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}
