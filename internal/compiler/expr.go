package compiler

import (
	"fmt"
	"strings"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
)

// keywordOps are word operators, normalized to upper case. "NOT IN" and
// "IS NOT" are two-word forms assembled by the parser.
var keywordOps = map[string]bool{
	"IN": true, "INSIDE": true, "NOTINSIDE": true,
	"ANYINSIDE": true, "ALLINSIDE": true, "NONEINSIDE": true,
	"CONTAINS": true, "CONTAINSNOT": true, "CONTAINSANY": true,
	"CONTAINSALL": true, "CONTAINSNONE": true, "IS": true,
}

var comparisonOps = map[string]bool{
	"=": true, "==": true, "!=": true, "<": true, "<=": true,
	">": true, ">=": true, "~": true, "!~": true,
}

// ParseValue parses an expression string.
func ParseValue(src string) (ast.Value, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseTarget parses a statement target. A bare identifier names a table,
// also inside an array of targets.
func ParseTarget(src string) (ast.Value, error) {
	v, err := ParseValue(src)
	if err != nil {
		return nil, err
	}
	return asTarget(v), nil
}

func asTarget(v ast.Value) ast.Value {
	switch e := v.(type) {
	case *ast.Idiom:
		if len(e.Parts) == 1 {
			if f, ok := e.Parts[0].(*ast.Field); ok {
				return &ast.Table{Name: f.Name}
			}
		}
	case *ast.Array:
		items := make([]ast.Value, len(e.Items))
		for i, item := range e.Items {
			items[i] = asTarget(item)
		}
		return &ast.Array{Items: items}
	}
	return v
}

// ParseProjection parses one field list entry, `expr [AS alias]`.
func ParseProjection(src string) (ast.Projection, error) {
	p, err := newParser(src)
	if err != nil {
		return ast.Projection{}, err
	}
	proj, err := p.projection()
	if err != nil {
		return ast.Projection{}, err
	}
	if err := p.expectEOF(); err != nil {
		return ast.Projection{}, err
	}
	return proj, nil
}

// ParseFields parses a field list such as `*, name AS n` or `VALUE name`.
func ParseFields(src string) (ast.Fields, error) {
	p, err := newParser(src)
	if err != nil {
		return ast.Fields{}, err
	}
	var fields ast.Fields
	if p.keyword("VALUE") && p.peekAt(1).kind != tokEOF {
		p.next()
		proj, err := p.projection()
		if err != nil {
			return ast.Fields{}, err
		}
		fields.Single = true
		fields.Items = []ast.Projection{proj}
		return fields, p.expectEOF()
	}
	for {
		if p.punct("*") && (p.peekAt(1).kind == tokEOF || p.peekAt(1).text == ",") {
			p.next()
			fields.Wildcard = true
		} else {
			proj, err := p.projection()
			if err != nil {
				return ast.Fields{}, err
			}
			fields.Items = append(fields.Items, proj)
		}
		if !p.punct(",") {
			break
		}
		p.next()
	}
	return fields, p.expectEOF()
}

func (p *parser) projection() (ast.Projection, error) {
	v, err := p.expr()
	if err != nil {
		return ast.Projection{}, err
	}
	proj := ast.Projection{Expr: v}
	if p.keyword("AS") {
		p.next()
		tok := p.next()
		if tok.kind != tokIdent && tok.kind != tokString {
			return ast.Projection{}, p.errorf(tok, "expected alias after AS")
		}
		proj.Alias = tok.text
	}
	return proj, nil
}

type parser struct {
	src  string
	toks []lexeme
	pos  int
}

func newParser(src string) (*parser, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() lexeme { return p.toks[p.pos] }

func (p *parser) peekAt(n int) lexeme {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() lexeme {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) punct(text string) bool {
	tok := p.peek()
	return tok.kind == tokPunct && tok.text == text
}

func (p *parser) keyword(word string) bool {
	tok := p.peek()
	return tok.kind == tokIdent && strings.EqualFold(tok.text, word)
}

func (p *parser) expect(text string) error {
	if !p.punct(text) {
		return p.errorf(p.peek(), "expected %q", text)
	}
	p.next()
	return nil
}

func (p *parser) expectEOF() error {
	if tok := p.peek(); tok.kind != tokEOF {
		return p.errorf(tok, "unexpected %q", tok.text)
	}
	return nil
}

func (p *parser) errorf(tok lexeme, format string, args ...any) error {
	return &SyntaxError{Input: p.src, Offset: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expr() (ast.Value, error) { return p.or() }

func (p *parser) or() (ast.Value, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") || p.punct("||") {
		op := strings.ToUpper(p.next().text)
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) and() (ast.Value, error) {
	left, err := p.coalesce()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") || p.punct("&&") {
		op := strings.ToUpper(p.next().text)
		right, err := p.coalesce()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) coalesce() (ast.Value, error) {
	left, err := p.compare()
	if err != nil {
		return nil, err
	}
	for p.punct("??") || p.punct("?:") {
		op := p.next().text
		right, err := p.compare()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) compare() (ast.Value, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.compareOp()
		if !ok {
			return left, nil
		}
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

// compareOp consumes a comparison operator if one is next.
func (p *parser) compareOp() (string, bool) {
	tok := p.peek()
	switch tok.kind {
	case tokPunct:
		if comparisonOps[tok.text] {
			p.next()
			return tok.text, true
		}
	case tokIdent:
		word := strings.ToUpper(tok.text)
		if word == "NOT" && strings.EqualFold(p.peekAt(1).text, "IN") {
			p.next()
			p.next()
			return "NOT IN", true
		}
		if keywordOps[word] {
			p.next()
			if word == "IS" && p.keyword("NOT") {
				p.next()
				return "IS NOT", true
			}
			return word, true
		}
	}
	return "", false
}

func (p *parser) additive() (ast.Value, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.punct("+") || p.punct("-") {
		op := p.next().text
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (ast.Value, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.punct("*") || p.punct("/") || p.punct("%") || p.punct("**") {
		op := p.next().text
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (ast.Value, error) {
	if p.punct("-") {
		minus := p.next()
		tok := p.peek()
		if tok.kind != tokNumber && tok.kind != tokDuration {
			return nil, p.errorf(minus, "unary minus only applies to numbers")
		}
		p.next()
		return &ast.Literal{Kind: literalKind(tok.kind), Text: "-" + tok.text}, nil
	}
	return p.primary()
}

func literalKind(k tokenKind) ast.LiteralKind {
	if k == tokDuration {
		return ast.LitDuration
	}
	return ast.LitNumber
}

func (p *parser) primary() (ast.Value, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber, tokDuration:
		p.next()
		return &ast.Literal{Kind: literalKind(tok.kind), Text: tok.text}, nil
	case tokString:
		p.next()
		return &ast.Literal{Kind: ast.LitString, Text: tok.text}, nil
	case tokDatetime:
		p.next()
		return &ast.Literal{Kind: ast.LitDatetime, Text: tok.text}, nil
	case tokParam:
		p.next()
		return p.postfix(&ast.Param{Name: tok.text}, nil)
	case tokIdent:
		return p.identifier()
	case tokPunct:
		switch tok.text {
		case "(":
			p.next()
			inner, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			// Parentheses open a subquery, so $parent is bound inside them.
			return p.postfix(&ast.Subquery{Stmt: &ast.Return{Value: inner}}, nil)
		case "[":
			return p.array()
		case "{":
			return p.object()
		case "->", "<-", "<->":
			return p.postfix(nil, nil)
		case "*":
			p.next()
			return p.postfix(nil, []ast.Part{&ast.All{}})
		}
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of input")
	}
	return nil, p.errorf(tok, "unexpected %q", tok.text)
}

func (p *parser) identifier() (ast.Value, error) {
	tok := p.next()
	switch strings.ToUpper(tok.text) {
	case "TRUE", "FALSE":
		return &ast.Literal{Kind: ast.LitBool, Text: strings.ToLower(tok.text)}, nil
	case "NONE":
		return &ast.Literal{Kind: ast.LitNone, Text: "NONE"}, nil
	case "NULL":
		return &ast.Literal{Kind: ast.LitNull, Text: "NULL"}, nil
	}

	if p.punct("(") {
		return nil, p.errorf(tok, "function call %s() is not supported", tok.text)
	}
	if p.punct(":") {
		p.next()
		id := p.next()
		switch id.kind {
		case tokIdent, tokNumber, tokString:
		default:
			return nil, p.errorf(id, "expected record id after %s:", tok.text)
		}
		return p.postfix(&ast.RecordID{Table: tok.text, ID: id.text}, nil)
	}
	return p.postfix(nil, []ast.Part{&ast.Field{Name: tok.text}})
}

// postfix reads field, wildcard and graph steps. A non-nil base becomes the
// Start part of the resulting idiom, and is returned as is without steps.
func (p *parser) postfix(base ast.Value, parts []ast.Part) (ast.Value, error) {
	if base != nil {
		parts = []ast.Part{&ast.Start{Value: base}}
	}
	for {
		tok := p.peek()
		if tok.kind != tokPunct {
			break
		}
		switch tok.text {
		case ".":
			p.next()
			step := p.next()
			switch {
			case step.kind == tokIdent:
				parts = append(parts, &ast.Field{Name: step.text})
			case step.kind == tokPunct && step.text == "*":
				parts = append(parts, &ast.All{})
			default:
				return nil, p.errorf(step, "expected field name after '.'")
			}
			continue
		case "[":
			if p.peekAt(1).text == "*" && p.peekAt(2).text == "]" {
				p.next()
				p.next()
				p.next()
				parts = append(parts, &ast.All{})
				continue
			}
		case "->", "<-", "<->":
			p.next()
			g, err := p.graph(ast.Direction(tok.text))
			if err != nil {
				return nil, err
			}
			parts = append(parts, g)
			continue
		}
		break
	}

	if base != nil && len(parts) == 1 {
		return base, nil
	}
	return &ast.Idiom{Parts: parts}, nil
}

func (p *parser) graph(dir ast.Direction) (*ast.Graph, error) {
	g := &ast.Graph{Dir: dir}
	if p.punct("(") {
		p.next()
		for {
			tok := p.next()
			if tok.kind != tokIdent {
				return nil, p.errorf(tok, "expected table name in graph step")
			}
			g.Tables = append(g.Tables, tok.text)
			if p.punct(",") {
				p.next()
				continue
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return g, nil
		}
	}
	tok := p.next()
	if tok.kind != tokIdent {
		return nil, p.errorf(tok, "expected table name after %s", dir)
	}
	g.Tables = []string{tok.text}
	return g, nil
}

func (p *parser) array() (ast.Value, error) {
	p.next()
	arr := &ast.Array{}
	for !p.punct("]") {
		item, err := p.expr()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)
		if !p.punct(",") {
			break
		}
		p.next()
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *parser) object() (ast.Value, error) {
	p.next()
	obj := &ast.Object{}
	for !p.punct("}") {
		key := p.next()
		if key.kind != tokIdent && key.kind != tokString {
			return nil, p.errorf(key, "expected object key")
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, ast.ObjectEntry{Key: key.text, Value: v})
		if !p.punct(",") {
			break
		}
		p.next()
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return obj, nil
}
