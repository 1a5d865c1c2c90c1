package compiler

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokDuration
	tokString
	tokDatetime
	tokParam
	tokPunct
)

type lexeme struct {
	kind tokenKind
	text string
	pos  int
}

// puncts is ordered longest first so that "<->" wins over "<-" and "<".
var puncts = []string{
	"<->", "->", "<-", "<=", ">=", "!=", "==", "&&", "||", "??", "?:", "**", "!~",
	".", "*", ":", ",", "(", ")", "[", "]", "{", "}", "=", "<", ">", "+", "-", "/", "%", "~",
}

var durationUnits = []string{"ns", "us", "µs", "ms", "s", "m", "h", "d", "w", "y"}

func lex(src string) ([]lexeme, error) {
	var toks []lexeme
	rs := []rune(src)
	offset := func(i int) int { return len(string(rs[:i])) }

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '$':
			j := i + 1
			for j < len(rs) && isIdentRune(rs[j]) {
				j++
			}
			if j == i+1 {
				return nil, &SyntaxError{Input: src, Offset: offset(i), Message: "expected parameter name after $"}
			}
			toks = append(toks, lexeme{kind: tokParam, text: string(rs[i+1 : j]), pos: offset(i)})
			i = j

		case r == '"' || r == '\'':
			s, n, err := lexString(src, rs, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, lexeme{kind: tokString, text: s, pos: offset(i)})
			i = n

		case r == '`':
			j := i + 1
			for j < len(rs) && rs[j] != '`' {
				j++
			}
			if j == len(rs) {
				return nil, &SyntaxError{Input: src, Offset: offset(i), Message: "unterminated identifier"}
			}
			toks = append(toks, lexeme{kind: tokIdent, text: string(rs[i+1 : j]), pos: offset(i)})
			i = j + 1

		case unicode.IsDigit(r):
			j := i
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			if j+1 < len(rs) && rs[j] == '.' && unicode.IsDigit(rs[j+1]) {
				j++
				for j < len(rs) && unicode.IsDigit(rs[j]) {
					j++
				}
			}
			kind := tokNumber
			if unit := durationUnit(rs[j:]); unit != "" {
				j += len([]rune(unit))
				kind = tokDuration
			}
			toks = append(toks, lexeme{kind: kind, text: string(rs[i:j]), pos: offset(i)})
			i = j

		case isIdentRune(r):
			j := i
			for j < len(rs) && isIdentRune(rs[j]) {
				j++
			}
			word := string(rs[i:j])
			if word == "d" && j < len(rs) && (rs[j] == '"' || rs[j] == '\'') {
				s, n, err := lexString(src, rs, j)
				if err != nil {
					return nil, err
				}
				toks = append(toks, lexeme{kind: tokDatetime, text: s, pos: offset(i)})
				i = n
				continue
			}
			toks = append(toks, lexeme{kind: tokIdent, text: word, pos: offset(i)})
			i = j

		default:
			rest := string(rs[i:])
			matched := ""
			for _, p := range puncts {
				if strings.HasPrefix(rest, p) {
					matched = p
					break
				}
			}
			if matched == "" {
				return nil, &SyntaxError{Input: src, Offset: offset(i), Message: "unexpected character " + string(r)}
			}
			toks = append(toks, lexeme{kind: tokPunct, text: matched, pos: offset(i)})
			i += len([]rune(matched))
		}
	}
	return append(toks, lexeme{kind: tokEOF, pos: len(src)}), nil
}

func lexString(src string, rs []rune, start int) (string, int, error) {
	quote := rs[start]
	var b strings.Builder
	for j := start + 1; j < len(rs); j++ {
		switch rs[j] {
		case '\\':
			if j+1 < len(rs) {
				j++
				b.WriteRune(rs[j])
			}
		case quote:
			return b.String(), j + 1, nil
		default:
			b.WriteRune(rs[j])
		}
	}
	return "", 0, &SyntaxError{Input: src, Offset: len(string(rs[:start])), Message: "unterminated string"}
}

// durationUnit returns the unit suffix at the start of rs, if the suffix is
// not followed by further identifier characters.
func durationUnit(rs []rune) string {
	for _, u := range durationUnits {
		ur := []rune(u)
		if len(rs) < len(ur) || string(rs[:len(ur)]) != u {
			continue
		}
		if len(rs) > len(ur) && isIdentRune(rs[len(ur)]) {
			continue
		}
		return u
	}
	return ""
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
