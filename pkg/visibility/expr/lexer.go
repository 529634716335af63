package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type kind uint8

const (
	kindEOF kind = iota
	kindIdent
	kindString
	kindNumber
	kindTrue
	kindFalse
	kindNull
	kindEq
	kindNeq
	kindAnd
	kindOr
	kindNot
	kindIn
	kindLParen
	kindRParen
	kindLBracket
	kindRBracket
	kindComma
)

type lexeme struct {
	kind kind
	text string
	pos  int
}

func (l lexeme) String() string {
	if l.kind == kindEOF {
		return "end of rule"
	}
	return strconv.Quote(l.text)
}

// scan splits a rule into lexemes. Keywords are case-insensitive.
func scan(src string) ([]lexeme, error) {
	var out []lexeme
	pos := 0
	for pos < len(src) {
		ch := rune(src[pos])
		switch {
		case unicode.IsSpace(ch):
			pos++
		case ch == '(':
			out = append(out, lexeme{kindLParen, "(", pos})
			pos++
		case ch == ')':
			out = append(out, lexeme{kindRParen, ")", pos})
			pos++
		case ch == '[':
			out = append(out, lexeme{kindLBracket, "[", pos})
			pos++
		case ch == ']':
			out = append(out, lexeme{kindRBracket, "]", pos})
			pos++
		case ch == ',':
			out = append(out, lexeme{kindComma, ",", pos})
			pos++
		case strings.HasPrefix(src[pos:], "=="):
			out = append(out, lexeme{kindEq, "==", pos})
			pos += 2
		case strings.HasPrefix(src[pos:], "!="):
			out = append(out, lexeme{kindNeq, "!=", pos})
			pos += 2
		case strings.HasPrefix(src[pos:], "&&"):
			out = append(out, lexeme{kindAnd, "&&", pos})
			pos += 2
		case strings.HasPrefix(src[pos:], "||"):
			out = append(out, lexeme{kindOr, "||", pos})
			pos += 2
		case ch == '!':
			out = append(out, lexeme{kindNot, "!", pos})
			pos++
		case ch == '"' || ch == '\'':
			text, next, err := scanQuoted(src, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, lexeme{kindString, text, pos})
			pos = next
		default:
			start := pos
			for pos < len(src) && isWordByte(src[pos]) {
				pos++
			}
			if start == pos {
				return nil, fmt.Errorf("visibility/expr: unexpected %q at offset %d", src[pos], pos)
			}
			out = append(out, word(src[start:pos], start))
		}
	}
	return append(out, lexeme{kind: kindEOF, pos: len(src)}), nil
}

func scanQuoted(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			i++
			b.WriteByte(src[i])
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("visibility/expr: unterminated string starting at offset %d", start)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' || c == '+' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func word(text string, pos int) lexeme {
	switch strings.ToLower(text) {
	case "true":
		return lexeme{kindTrue, text, pos}
	case "false":
		return lexeme{kindFalse, text, pos}
	case "null", "nil":
		return lexeme{kindNull, text, pos}
	case "in":
		return lexeme{kindIn, text, pos}
	case "and":
		return lexeme{kindAnd, text, pos}
	case "or":
		return lexeme{kindOr, text, pos}
	case "not":
		return lexeme{kindNot, text, pos}
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return lexeme{kindNumber, text, pos}
	}
	return lexeme{kindIdent, text, pos}
}
