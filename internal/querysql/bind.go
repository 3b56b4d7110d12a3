package querysql

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/qerr"
)

// Bind rewrites :name placeholders in text into d's placeholder style and
// resolves their values from params.
//
// Named style keeps the text and returns sql.NamedArg values, one per
// distinct name. Question style emits one ? and one argument per occurrence.
// Numbered styles ($n, @pn) number distinct names by first occurrence and
// reuse the number for repeats.
//
// Placeholders inside single-quoted literals and "::" casts are left alone.
// A referenced name with no binding is an INVALID_ARGUMENT error.
func Bind(text string, d dialect.Dialect, params map[string]ir.IRValue) (string, []any, error) {
	style := d.Placeholder()

	var out strings.Builder
	var args []any
	numbers := map[string]int{}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if ch == '\'' {
			end := skipQuoted(text, i)
			out.WriteString(text[i:end])
			i = end - 1
			continue
		}

		if ch != ':' {
			out.WriteByte(ch)
			continue
		}
		if i+1 < len(text) && text[i+1] == ':' {
			out.WriteString("::")
			i++
			continue
		}

		end := i + 1
		for end < len(text) && isNameByte(text[end], end == i+1) {
			end++
		}
		if end == i+1 {
			out.WriteByte(ch)
			continue
		}

		name := text[i+1 : end]
		val, ok := params[name]
		if !ok {
			return "", nil, qerr.InvalidArgument("parameter :%s has no binding", name)
		}
		arg, err := ir.ToParam(val)
		if err != nil {
			return "", nil, fmt.Errorf("parameter :%s: %w", name, err)
		}

		switch style {
		case dialect.PlaceholderQuestion:
			out.WriteByte('?')
			args = append(args, arg)
		case dialect.PlaceholderDollar, dialect.PlaceholderAt:
			n, seen := numbers[name]
			if !seen {
				args = append(args, arg)
				n = len(args)
				numbers[name] = n
			}
			if style == dialect.PlaceholderDollar {
				out.WriteString("$" + strconv.Itoa(n))
			} else {
				out.WriteString("@p" + strconv.Itoa(n))
			}
		default:
			out.WriteString(text[i:end])
			if _, seen := numbers[name]; !seen {
				numbers[name] = len(args)
				args = append(args, sql.Named(name, arg))
			}
		}

		i = end - 1
	}

	return out.String(), args, nil
}

// skipQuoted returns the index just past the single-quoted literal starting
// at start. Doubled quotes ('') are escapes.
func skipQuoted(text string, start int) int {
	for i := start + 1; i < len(text); i++ {
		if text[i] != '\'' {
			continue
		}
		if i+1 < len(text) && text[i+1] == '\'' {
			i++
			continue
		}
		return i + 1
	}
	return len(text)
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	default:
		return false
	}
}
