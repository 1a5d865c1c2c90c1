package infer

import (
	"strings"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// Eval returns the kind of a value expression in the current scope.
func (s *State) Eval(v ast.Value) (kind.Kind, error) {
	switch e := v.(type) {
	case *ast.Literal:
		return literalKind(e)

	case *ast.Param:
		if k, ok := s.Lookup(e.Name); ok {
			return k, nil
		}
		if k, ok := s.vars[e.Name]; ok {
			return k, nil
		}
		return nil, schema.UnknownParameter(e.Name)

	case *ast.RecordID:
		if _, ok := s.model.Table(e.Table); !ok {
			return nil, schema.UnknownTable(e.Table)
		}
		return kind.Rec(e.Table), nil

	case *ast.Idiom:
		return s.evalIdiom(e)

	case *ast.Array:
		items := make([]kind.Kind, 0, len(e.Items))
		for _, item := range e.Items {
			k, err := s.Eval(item)
			if err != nil {
				return nil, err
			}
			items = append(items, k)
		}
		return kind.ArrayOf(kind.Union(items...)), nil

	case *ast.Object:
		obj := make(kind.Object, len(e.Entries))
		for _, entry := range e.Entries {
			k, err := s.Eval(entry.Value)
			if err != nil {
				return nil, err
			}
			obj[entry.Key] = k
		}
		return obj, nil

	case *ast.Subquery:
		return s.within(s.parentBindings(), func() (kind.Kind, error) {
			return s.Statement(e.Stmt)
		})

	case *ast.Binary:
		return s.evalBinary(e)

	default:
		desc := "<nil>"
		if v != nil {
			desc = v.String()
		}
		return nil, schema.Unsupported(desc, "unsupported expression %s", desc)
	}
}

func literalKind(l *ast.Literal) (kind.Kind, error) {
	switch l.Kind {
	case ast.LitString:
		return kind.String, nil
	case ast.LitNumber:
		return kind.Number, nil
	case ast.LitBool:
		return kind.Bool, nil
	case ast.LitNone, ast.LitNull:
		return kind.Null, nil
	case ast.LitDatetime:
		return kind.Datetime, nil
	case ast.LitDuration:
		return kind.Duration, nil
	default:
		return nil, schema.Unsupported(l.String(), "unsupported literal %s", l)
	}
}

func (s *State) evalIdiom(id *ast.Idiom) (kind.Kind, error) {
	if len(id.Parts) == 0 {
		return nil, schema.Unsupported("", "empty field path")
	}

	parts := id.Parts
	var cur kind.Kind
	if start, ok := parts[0].(*ast.Start); ok {
		k, err := s.Eval(start.Value)
		if err != nil {
			return nil, err
		}
		cur = k
		parts = parts[1:]
	} else {
		row, ok := s.Lookup(string(This))
		if !ok {
			return nil, schema.Unsupported(id.String(), "field path %s outside a row context", id)
		}
		cur = row
	}

	for _, p := range parts {
		var err error
		switch part := p.(type) {
		case *ast.Field:
			cur, err = s.field(cur, part.Name)
		case *ast.All:
			cur, err = s.expand(cur)
		case *ast.Graph:
			cur, err = s.graph(part)
		default:
			err = schema.Unsupported(id.String(), "unsupported path part %s in %s", p, id)
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// field accesses name on k. Optional containers yield an Option around the
// field's own kind, which may itself be optional; projection flattens that.
func (s *State) field(k kind.Kind, name string) (kind.Kind, error) {
	switch v := k.(type) {
	case kind.Object:
		f, ok := v[name]
		if !ok {
			return nil, schema.UnknownField(rowName(v), name)
		}
		return f, nil

	case kind.Record:
		row, err := s.model.SelectFields(v.Tables[0])
		if err != nil {
			return nil, err
		}
		f, ok := row[name]
		if !ok {
			return nil, schema.UnknownField(v.Tables[0], name)
		}
		return f, nil

	case kind.Option:
		inner, err := s.field(v.Inner, name)
		if err != nil {
			return nil, err
		}
		return kind.Option{Inner: inner}, nil

	case kind.Array:
		elem, err := s.field(v.Elem, name)
		if err != nil {
			return nil, err
		}
		return kind.ArrayOf(elem), nil

	case kind.Either:
		var alts []kind.Kind
		nullable := false
		for _, alt := range v.Alts {
			if alt == kind.Null {
				nullable = true
				continue
			}
			f, err := s.field(alt, name)
			if err != nil {
				return nil, err
			}
			alts = append(alts, f)
		}
		out := kind.Union(alts...)
		if nullable {
			return kind.Option{Inner: out}, nil
		}
		return out, nil

	case kind.Scalar:
		if v == kind.Any {
			return kind.Any, nil
		}
	}
	return nil, schema.TypeMismatch(name, "cannot access field %q on %s", name, k)
}

// expand implements `.*`: records become their table's row object.
func (s *State) expand(k kind.Kind) (kind.Kind, error) {
	switch v := k.(type) {
	case kind.Record:
		return s.model.SelectFields(v.Tables[0])
	case kind.Object:
		return v, nil
	case kind.Array:
		elem, err := s.expand(v.Elem)
		if err != nil {
			if schema.CodeOf(err) == schema.ErrCodeTypeMismatch {
				return v, nil
			}
			return nil, err
		}
		return kind.ArrayOf(elem), nil
	case kind.Option:
		inner, err := s.expand(v.Inner)
		if err != nil {
			return nil, err
		}
		return kind.Optional(inner), nil
	case kind.Scalar:
		if v == kind.Any {
			return kind.Any, nil
		}
	}
	return nil, schema.TypeMismatch("*", "cannot expand %s", k)
}

// graph yields the records reached by one traversal step.
func (s *State) graph(g *ast.Graph) (kind.Kind, error) {
	if len(g.Tables) == 0 {
		return nil, schema.Unsupported(g.String(), "graph step without target table")
	}
	for _, t := range g.Tables {
		if _, ok := s.model.Table(t); !ok {
			return nil, schema.UnknownTable(t)
		}
	}
	return kind.ArrayOf(kind.Rec(g.Tables...)), nil
}

func (s *State) evalBinary(b *ast.Binary) (kind.Kind, error) {
	if err := s.inferCondition(b); err != nil {
		return nil, err
	}
	switch op := strings.ToUpper(b.Op); op {
	case "+", "-", "*", "/", "**", "%":
		left, err := s.Eval(b.Left)
		if err != nil {
			return nil, err
		}
		right, err := s.Eval(b.Right)
		if err != nil {
			return nil, err
		}
		if op == "+" && left == kind.String && right == kind.String {
			return kind.String, nil
		}
		return kind.Number, nil
	case "??", "?:":
		left, err := s.Eval(b.Left)
		if err != nil {
			return nil, err
		}
		right, err := s.Eval(b.Right)
		if err != nil {
			return nil, err
		}
		if o, ok := left.(kind.Option); ok {
			left = o.Inner
		}
		return kind.Union(left, right), nil
	default:
		return kind.Bool, nil
	}
}

func rowName(obj kind.Object) string {
	if r, ok := obj["id"].(kind.Record); ok && len(r.Tables) > 0 {
		return r.Tables[0]
	}
	return "object"
}
