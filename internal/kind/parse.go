package kind

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a malformed type expression.
type ParseError struct {
	Input   string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid type %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

// Parse reads a type expression such as "option<record<user>>" or
// "array<object{id: record<org>, name: string}>".
//
// The accepted grammar is the one produced by Kind.String plus the schema
// spellings "set<T>", "array<T, N>", "either<A, B>" and bare "object".
func Parse(s string) (Kind, error) {
	p := &parser{src: s}
	k, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return k, nil
}

// MustParse is Parse for fixtures; it panics on malformed input.
func MustParse(s string) Kind {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Input: p.src, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= 0x80 || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// key reads an object field name, plain or quoted.
func (p *parser) key() (string, error) {
	if p.peek() == '"' {
		end := p.pos + 1
		for end < len(p.src) && p.src[end] != '"' {
			if p.src[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(p.src) {
			return "", p.errorf("unterminated field name")
		}
		name, err := strconv.Unquote(p.src[p.pos : end+1])
		if err != nil {
			return "", p.errorf("bad field name: %v", err)
		}
		p.pos = end + 1
		return name, nil
	}
	name := p.ident()
	if name == "" {
		return "", p.errorf("expected field name")
	}
	return name, nil
}

func (p *parser) union() (Kind, error) {
	first, err := p.single()
	if err != nil {
		return nil, err
	}
	alts := []Kind{first}
	for p.peek() == '|' {
		p.pos++
		next, err := p.single()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return Union(alts...), nil
}

func (p *parser) single() (Kind, error) {
	name := strings.ToLower(p.ident())
	switch name {
	case "":
		return nil, p.errorf("expected type name")
	case "option":
		inner, err := p.oneArg()
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	case "array", "set":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.union()
		if err != nil {
			return nil, err
		}
		if p.peek() == ',' {
			// Length bound; the kind does not carry it.
			p.pos++
			if n := p.ident(); n == "" {
				return nil, p.errorf("expected array length")
			}
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case "either":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		var alts []Kind
		for {
			k, err := p.union()
			if err != nil {
				return nil, err
			}
			alts = append(alts, k)
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return Union(alts...), nil
	case "record":
		if p.peek() != '<' {
			return nil, p.errorf("record requires at least one table")
		}
		p.pos++
		var tables []string
		for {
			t := p.ident()
			if t == "" {
				return nil, p.errorf("expected table name")
			}
			tables = append(tables, t)
			if c := p.peek(); c != '|' && c != ',' {
				break
			}
			p.pos++
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return Rec(tables...), nil
	case "object":
		obj := Object{}
		if p.peek() != '{' {
			return obj, nil
		}
		p.pos++
		for p.peek() != '}' {
			key, err := p.key()
			if err != nil {
				return nil, err
			}
			if err := p.expect(':'); err != nil {
				return nil, err
			}
			v, err := p.union()
			if err != nil {
				return nil, err
			}
			obj[key] = v
			if p.peek() == ',' {
				p.pos++
			}
		}
		p.pos++
		return obj, nil
	case "bool", "boolean":
		return Bool, nil
	case "integer":
		return Int, nil
	default:
		s, ok := ScalarByName(name)
		if !ok {
			return nil, p.errorf("unknown type %q", name)
		}
		return s, nil
	}
}

func (p *parser) oneArg() (Kind, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	k, err := p.union()
	if err != nil {
		return nil, err
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return k, nil
}
