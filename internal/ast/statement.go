package ast

import (
	"strings"
)

// Statement is one top-level query statement.
//
// This is a sealed interface - only types in this package implement it.
type Statement interface {
	statementNode() // Marker method - seals interface to this package
	String() string
}

// Projection is one entry of a field list, `expr [AS alias]`.
type Projection struct {
	Expr  Value
	Alias string
}

func (p Projection) String() string {
	if p.Alias == "" {
		return p.Expr.String()
	}
	return p.Expr.String() + " AS " + p.Alias
}

// Fields is a projection list. Wildcard is `*`; Single is `SELECT VALUE`,
// which carries exactly one item.
type Fields struct {
	Wildcard bool
	Single   bool
	Items    []Projection
}

func (f Fields) String() string {
	parts := make([]string, 0, len(f.Items)+1)
	if f.Wildcard {
		parts = append(parts, "*")
	}
	for _, it := range f.Items {
		parts = append(parts, it.String())
	}
	s := strings.Join(parts, ", ")
	if f.Single {
		return "VALUE " + s
	}
	return s
}

// Select is SELECT.
type Select struct {
	Fields Fields
	What   []Value
	Only   bool
	Where  Value
	Limit  Value
	Start  Value
	Fetch  []*Idiom
}

func (*Select) statementNode() {}

func (s *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(s.Fields.String())
	b.WriteString(" FROM ")
	if s.Only {
		b.WriteString("ONLY ")
	}
	b.WriteString(joinValues(s.What))
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.String())
	}
	if s.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(s.Limit.String())
	}
	if s.Start != nil {
		b.WriteString(" START ")
		b.WriteString(s.Start.String())
	}
	if len(s.Fetch) > 0 {
		fetch := make([]Value, len(s.Fetch))
		for i, f := range s.Fetch {
			fetch[i] = f
		}
		b.WriteString(" FETCH ")
		b.WriteString(joinValues(fetch))
	}
	return b.String()
}

// Create is CREATE.
type Create struct {
	What   []Value
	Only   bool
	Data   Data
	Output Output
}

func (*Create) statementNode() {}

func (s *Create) String() string {
	return mutation("CREATE", s.Only, joinValues(s.What), s.Data, nil, s.Output)
}

// Update is UPDATE.
type Update struct {
	What   []Value
	Only   bool
	Data   Data
	Where  Value
	Output Output
}

func (*Update) statementNode() {}

func (s *Update) String() string {
	return mutation("UPDATE", s.Only, joinValues(s.What), s.Data, s.Where, s.Output)
}

// Delete is DELETE.
type Delete struct {
	What   []Value
	Only   bool
	Where  Value
	Output Output
}

func (*Delete) statementNode() {}

func (s *Delete) String() string {
	return mutation("DELETE", s.Only, joinValues(s.What), nil, s.Where, s.Output)
}

// Insert is INSERT INTO.
type Insert struct {
	Into   Value
	Data   Data
	Output Output
}

func (*Insert) statementNode() {}

func (s *Insert) String() string {
	return mutation("INSERT INTO", false, s.Into.String(), s.Data, nil, s.Output)
}

// Relate is RELATE from->kind->with.
type Relate struct {
	Kind   Value
	From   Value
	With   Value
	Data   Data
	Output Output
}

func (*Relate) statementNode() {}

func (s *Relate) String() string {
	target := s.From.String() + "->" + s.Kind.String() + "->" + s.With.String()
	return mutation("RELATE", false, target, s.Data, nil, s.Output)
}

// Let is LET $name = value.
type Let struct {
	Name  string
	Value Value
}

func (*Let) statementNode() {}

func (s *Let) String() string { return "LET $" + s.Name + " = " + s.Value.String() }

// Return is RETURN value.
type Return struct {
	Value Value
}

func (*Return) statementNode() {}

func (s *Return) String() string { return "RETURN " + s.Value.String() }

// Data is a mutation payload.
//
// This is a sealed interface - only types in this package implement it.
type Data interface {
	dataNode() // Marker method - seals interface to this package
	String() string
}

// Content is `CONTENT value`.
type Content struct {
	Value Value
}

func (*Content) dataNode() {}

func (c *Content) String() string { return "CONTENT " + c.Value.String() }

// Assignment is one `field op value` entry of a SET clause.
type Assignment struct {
	Field *Idiom
	Op    string
	Value Value
}

// Set is `SET field = value, ...`.
type Set struct {
	Assignments []Assignment
}

func (*Set) dataNode() {}

func (s *Set) String() string {
	parts := make([]string, len(s.Assignments))
	for i, a := range s.Assignments {
		parts[i] = a.Field.String() + " " + a.Op + " " + a.Value.String()
	}
	return "SET " + strings.Join(parts, ", ")
}

// Output is a RETURN clause of a mutation.
//
// This is a sealed interface - only types in this package implement it.
type Output interface {
	outputNode() // Marker method - seals interface to this package
	String() string
}

// OutputNone is `RETURN NONE`.
type OutputNone struct{}

// OutputNull is `RETURN NULL`.
type OutputNull struct{}

// OutputDiff is `RETURN DIFF`.
type OutputDiff struct{}

// OutputBefore is `RETURN BEFORE`.
type OutputBefore struct{}

// OutputAfter is `RETURN AFTER`.
type OutputAfter struct{}

// OutputFields is `RETURN <fields>`.
type OutputFields struct {
	Fields Fields
}

func (*OutputNone) outputNode()   {}
func (*OutputNull) outputNode()   {}
func (*OutputDiff) outputNode()   {}
func (*OutputBefore) outputNode() {}
func (*OutputAfter) outputNode()  {}
func (*OutputFields) outputNode() {}

func (*OutputNone) String() string     { return "NONE" }
func (*OutputNull) String() string     { return "NULL" }
func (*OutputDiff) String() string     { return "DIFF" }
func (*OutputBefore) String() string   { return "BEFORE" }
func (*OutputAfter) String() string    { return "AFTER" }
func (o *OutputFields) String() string { return o.Fields.String() }

func mutation(verb string, only bool, target string, data Data, where Value, out Output) string {
	var b strings.Builder
	b.WriteString(verb)
	b.WriteByte(' ')
	if only {
		b.WriteString("ONLY ")
	}
	b.WriteString(target)
	if data != nil {
		b.WriteByte(' ')
		b.WriteString(data.String())
	}
	if where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(where.String())
	}
	if out != nil {
		b.WriteString(" RETURN ")
		b.WriteString(out.String())
	}
	return b.String()
}

func joinValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
