package dql

import (
	"strconv"
	"strings"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/qerr"
)

// RankFunctionName is the name RANK is registered under.
const RankFunctionName = "RANK"

// RankFunction returns the 1-based position of Field's value among Values.
//
// Ordinal dialects render the native FIELD() function, which yields 0 when
// nothing matches. CASE dialects render a CASE chain, which yields NULL when
// nothing matches. Callers ordering on RANK see unmatched rows first on one
// family and wherever the engine sorts NULL on the other.
type RankFunction struct {
	Field  Node
	Values []Node
}

// Parse consumes RANK ( field , value { , value } ).
func (r *RankFunction) Parse(p *Parser) error {
	if _, err := p.Match(TokenIdentifier); err != nil {
		return err
	}
	if _, err := p.Match(TokenOpenParen); err != nil {
		return err
	}

	field, err := p.ArithmeticPrimary()
	if err != nil {
		return err
	}
	r.Field = field

	for len(r.Values) < 1 || p.Lookahead().Kind != TokenCloseParen {
		if tok := p.Lookahead(); tok.Kind == TokenCloseParen {
			return qerr.ParseError(tok.Pos, "%s expects at least one value after the field", RankFunctionName)
		}
		if _, err := p.Match(TokenComma); err != nil {
			return err
		}
		value, err := p.ArithmeticPrimary()
		if err != nil {
			return err
		}
		r.Values = append(r.Values, value)
	}

	_, err = p.Match(TokenCloseParen)
	return err
}

// SQL renders the call for w's dialect.
func (r *RankFunction) SQL(w *Walker) (string, error) {
	switch w.Dialect.Family() {
	case dialect.FamilyOrdinal:
		return r.ordinalSQL(w)
	case dialect.FamilyCase:
		return r.caseSQL(w)
	default:
		return "", qerr.NotImplemented("%s is not available for dialect %s", RankFunctionName, w.Dialect)
	}
}

func (r *RankFunction) ordinalSQL(w *Walker) (string, error) {
	args := make([]string, 0, len(r.Values)+1)
	field, err := w.Walk(r.Field)
	if err != nil {
		return "", err
	}
	args = append(args, field)
	for _, v := range r.Values {
		value, err := w.Walk(v)
		if err != nil {
			return "", err
		}
		args = append(args, value)
	}
	return "FIELD(" + strings.Join(args, ", ") + ")", nil
}

func (r *RankFunction) caseSQL(w *Walker) (string, error) {
	field, err := w.Walk(r.Field)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("(CASE")
	for i, v := range r.Values {
		value, err := w.Walk(v)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHEN (")
		b.WriteString(field)
		b.WriteString(") = ")
		b.WriteString(value)
		b.WriteString(" THEN ")
		b.WriteString(strconv.Itoa(i + 1))
	}
	b.WriteString(" END)")
	return b.String(), nil
}
