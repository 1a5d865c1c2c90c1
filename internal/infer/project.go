package infer

import (
	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// project builds the object a field list produces for row. The caller binds
// the row context ($this and friends) before calling.
func (s *State) project(row kind.Object, fields ast.Fields) (kind.Kind, error) {
	if fields.Single {
		if len(fields.Items) != 1 {
			return nil, schema.Unsupported(fields.String(), "SELECT VALUE takes exactly one expression, got %d", len(fields.Items))
		}
		return s.Eval(fields.Items[0].Expr)
	}

	tree := kind.Object{}
	if fields.Wildcard || len(fields.Items) == 0 {
		tree = row.Clone()
	}

	for _, item := range fields.Items {
		leaf, err := s.Eval(item.Expr)
		if err != nil {
			return nil, err
		}
		parts := projectionKey(item)
		if len(parts) == 1 {
			leaf = kind.Flatten(leaf)
		}
		if err := schema.MergePath(tree, parts, kind.Clone(leaf)); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// projectionKey returns the path a projected expression is stored under.
//
// Aliases win. Plain field paths keep their shape, so `address.city` nests.
// A path rooted at a parameter drops the root (`$this.name` is "name") and a
// bare parameter uses its name (`$before` is "before"). Everything else is
// keyed by its source text, e.g. `123` or `->memberOf->org`.
func projectionKey(p ast.Projection) []ast.Part {
	if p.Alias != "" {
		return []ast.Part{&ast.Field{Name: p.Alias}}
	}

	switch e := p.Expr.(type) {
	case *ast.Idiom:
		if e.FieldsOnly() {
			return e.Parts
		}
		if len(e.Parts) > 0 {
			if start, ok := e.Parts[0].(*ast.Start); ok {
				if param, ok := start.Value.(*ast.Param); ok {
					rest := &ast.Idiom{Parts: e.Parts[1:]}
					if len(rest.Parts) == 0 {
						return []ast.Part{&ast.Field{Name: param.Name}}
					}
					if rest.FieldsOnly() {
						return rest.Parts
					}
				}
			}
		}
	case *ast.Param:
		return []ast.Part{&ast.Field{Name: e.Name}}
	case *ast.Literal:
		return []ast.Part{&ast.Field{Name: e.Text}}
	}
	return []ast.Part{&ast.Field{Name: p.Expr.String()}}
}
