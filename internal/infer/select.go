package infer

import (
	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

func (s *State) inferSelect(sel *ast.Select) (kind.Kind, error) {
	if len(sel.What) == 0 {
		return nil, schema.EmptyTargetSet(sel.String())
	}

	var results []kind.Kind
	for _, what := range sel.What {
		table, err := ResolveTable(what, s)
		if err != nil {
			return nil, err
		}
		row, err := s.model.SelectFields(table)
		if err != nil {
			return nil, err
		}
		if err := s.fetch(row, sel.Fetch); err != nil {
			return nil, err
		}

		bindings := map[string]kind.Kind{string(This): row}
		if outer, ok := s.Lookup(string(This)); ok {
			bindings[string(Parent)] = outer
		}
		k, err := s.within(bindings, func() (kind.Kind, error) {
			if err := s.inferCondition(sel.Where); err != nil {
				return nil, err
			}
			if err := s.inferCount(sel.Limit); err != nil {
				return nil, err
			}
			if err := s.inferCount(sel.Start); err != nil {
				return nil, err
			}
			return s.project(row, sel.Fields)
		})
		if err != nil {
			return nil, err
		}
		results = append(results, k)
	}

	k := kind.Union(results...)
	if sel.Only {
		return k, nil
	}
	return kind.ArrayOf(k), nil
}

// fetch replaces the record links at each path of row with the linked
// table's row object.
func (s *State) fetch(row kind.Object, paths []*ast.Idiom) error {
	for _, path := range paths {
		if !path.FieldsOnly() {
			return schema.Unsupported(path.String(), "FETCH %s: only field paths can be fetched", path)
		}
		tree := row
		for i, p := range path.Parts {
			f, ok := p.(*ast.Field)
			if !ok {
				return schema.Unsupported(path.String(), "FETCH %s: wildcards cannot be fetched", path)
			}
			node, exists := tree[f.Name]
			if !exists {
				return schema.UnknownField(rowName(row), path.String())
			}
			if i == len(path.Parts)-1 {
				linked, err := s.resolveLinks(node)
				if err != nil {
					return err
				}
				tree[f.Name] = linked
				break
			}
			switch n := node.(type) {
			case kind.Object:
				tree = n
			case kind.Option:
				obj, ok := n.Inner.(kind.Object)
				if !ok {
					return schema.TypeMismatch(path.String(), "FETCH %s: %q is %s", path, f.Name, node)
				}
				tree = obj
			default:
				return schema.TypeMismatch(path.String(), "FETCH %s: %q is %s", path, f.Name, node)
			}
		}
	}
	return nil
}

func (s *State) resolveLinks(k kind.Kind) (kind.Kind, error) {
	switch v := k.(type) {
	case kind.Record:
		return s.model.SelectFields(v.Tables[0])
	case kind.Array:
		elem, err := s.resolveLinks(v.Elem)
		if err != nil {
			return nil, err
		}
		return kind.ArrayOf(elem), nil
	case kind.Option:
		inner, err := s.resolveLinks(v.Inner)
		if err != nil {
			return nil, err
		}
		return kind.Optional(inner), nil
	case kind.Either:
		alts := make([]kind.Kind, len(v.Alts))
		for i, alt := range v.Alts {
			r, err := s.resolveLinks(alt)
			if err != nil {
				return nil, err
			}
			alts[i] = r
		}
		return kind.Union(alts...), nil
	default:
		return k, nil
	}
}
