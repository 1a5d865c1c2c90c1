package ast

import (
	"strings"
)

// Value represents an expression.
//
// This is a sealed interface - only types in this package implement it.
type Value interface {
	valueNode() // Marker method - seals interface to this package
	String() string
}

// Table names a table, e.g. `user` in `SELECT * FROM user`.
type Table struct {
	Name string
}

func (*Table) valueNode() {}

func (t *Table) String() string { return t.Name }

// Array is a list of values, e.g. `[user:john, user:jane]`.
type Array struct {
	Items []Value
}

func (*Array) valueNode() {}

func (a *Array) String() string {
	parts := make([]string, len(a.Items))
	for i, item := range a.Items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Param references a variable, e.g. `$auth`. Name excludes the `$`.
type Param struct {
	Name string
}

func (*Param) valueNode() {}

func (p *Param) String() string { return "$" + p.Name }

// RecordID is a literal record reference, e.g. `user:john`.
type RecordID struct {
	Table string
	ID    string
}

func (*RecordID) valueNode() {}

func (r *RecordID) String() string { return r.Table + ":" + r.ID }

// Idiom is a field path, possibly rooted at a value and possibly containing
// graph traversal steps, e.g. `address.city`, `$before.name`,
// `->memberOf->org.*`.
type Idiom struct {
	Parts []Part
}

func (*Idiom) valueNode() {}

func (i *Idiom) String() string {
	var b strings.Builder
	for n, p := range i.Parts {
		switch p := p.(type) {
		case *Field:
			if n > 0 {
				b.WriteByte('.')
			}
			b.WriteString(p.Name)
		case *All:
			if n > 0 {
				b.WriteByte('.')
			}
			b.WriteByte('*')
		default:
			b.WriteString(p.String())
		}
	}
	return b.String()
}

// LastGraph returns the final part of the idiom if it is a graph step.
func (i *Idiom) LastGraph() (*Graph, bool) {
	if len(i.Parts) == 0 {
		return nil, false
	}
	g, ok := i.Parts[len(i.Parts)-1].(*Graph)
	return g, ok
}

// FieldsOnly reports whether the idiom consists only of Field and All parts.
func (i *Idiom) FieldsOnly() bool {
	for _, p := range i.Parts {
		switch p.(type) {
		case *Field, *All:
		default:
			return false
		}
	}
	return len(i.Parts) > 0
}

// Path builds an idiom of plain field parts.
func Path(names ...string) *Idiom {
	parts := make([]Part, len(names))
	for i, n := range names {
		parts[i] = &Field{Name: n}
	}
	return &Idiom{Parts: parts}
}

// LiteralKind classifies literal constants.
type LiteralKind string

const (
	LitString   LiteralKind = "string"
	LitNumber   LiteralKind = "number"
	LitBool     LiteralKind = "bool"
	LitNone     LiteralKind = "none"
	LitNull     LiteralKind = "null"
	LitDatetime LiteralKind = "datetime"
	LitDuration LiteralKind = "duration"
)

// Literal is a constant. Text holds the source spelling without quotes.
type Literal struct {
	Kind LiteralKind
	Text string
}

func (*Literal) valueNode() {}

func (l *Literal) String() string {
	switch l.Kind {
	case LitString:
		return `"` + l.Text + `"`
	case LitDatetime:
		return `d"` + l.Text + `"`
	default:
		return l.Text
	}
}

// ObjectEntry is one key of an object literal.
type ObjectEntry struct {
	Key   string
	Value Value
}

// Object is an object literal, e.g. `{ position: "Engineer" }`.
type Object struct {
	Entries []ObjectEntry
}

func (*Object) valueNode() {}

func (o *Object) String() string {
	parts := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		parts[i] = e.Key + ": " + e.Value.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Subquery is a parenthesized statement or expression. Evaluating it binds
// $parent to the enclosing row.
type Subquery struct {
	Stmt Statement
}

func (*Subquery) valueNode() {}

func (s *Subquery) String() string {
	if r, ok := s.Stmt.(*Return); ok {
		return "(" + r.Value.String() + ")"
	}
	return "(" + s.Stmt.String() + ")"
}

// Binary is an operator expression, e.g. `workspace = $id`.
type Binary struct {
	Op    string
	Left  Value
	Right Value
}

func (*Binary) valueNode() {}

func (b *Binary) String() string {
	return b.Left.String() + " " + b.Op + " " + b.Right.String()
}

// Part is one segment of an Idiom.
//
// This is a sealed interface - only types in this package implement it.
type Part interface {
	partNode() // Marker method - seals interface to this package
	String() string
}

// Field selects a named field.
type Field struct {
	Name string
}

func (*Field) partNode() {}

func (f *Field) String() string { return f.Name }

// All is the `*` wildcard.
type All struct{}

func (*All) partNode() {}

func (*All) String() string { return "*" }

// Direction of a graph step.
type Direction string

const (
	Out  Direction = "->"
	In   Direction = "<-"
	Both Direction = "<->"
)

// Graph follows edges to the given tables, e.g. `->memberOf`.
type Graph struct {
	Dir    Direction
	Tables []string
}

func (*Graph) partNode() {}

func (g *Graph) String() string {
	if len(g.Tables) == 1 {
		return string(g.Dir) + g.Tables[0]
	}
	return string(g.Dir) + "(" + strings.Join(g.Tables, ", ") + ")"
}

// Start roots an idiom at a value, e.g. the `$before` of `$before.name`.
// It only appears as the first part.
type Start struct {
	Value Value
}

func (*Start) partNode() {}

func (s *Start) String() string { return s.Value.String() }
