package infer

import (
	"strings"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

var (
	logicalOps  = map[string]bool{"AND": true, "OR": true, "&&": true, "||": true}
	membership  = map[string]bool{"IN": true, "INSIDE": true, "NOT IN": true, "NOTINSIDE": true, "ANYINSIDE": true, "ALLINSIDE": true, "NONEINSIDE": true}
	containment = map[string]bool{"CONTAINS": true, "CONTAINSNOT": true, "CONTAINSANY": true, "CONTAINSALL": true, "CONTAINSNONE": true}
)

// inferCondition records the kinds of free parameters compared against
// other expressions, e.g. `workspace = $id` requires $id: record<workspace>.
func (s *State) inferCondition(v ast.Value) error {
	switch e := v.(type) {
	case nil:
		return nil
	case *ast.Subquery:
		r, ok := e.Stmt.(*ast.Return)
		if !ok {
			_, err := s.Eval(e)
			return err
		}
		// A parenthesized condition still constrains its parameters.
		_, err := s.within(s.parentBindings(), func() (kind.Kind, error) {
			return nil, s.inferCondition(r.Value)
		})
		return err
	case *ast.Binary:
		op := strings.ToUpper(e.Op)
		if logicalOps[op] {
			if err := s.inferCondition(e.Left); err != nil {
				return err
			}
			return s.inferCondition(e.Right)
		}
		if p, ok := e.Right.(*ast.Param); ok && s.free(p.Name) {
			if _, isParam := e.Left.(*ast.Param); isParam {
				return nil
			}
			k, err := s.Eval(e.Left)
			if err != nil {
				return err
			}
			switch {
			case membership[op]:
				k = kind.ArrayOf(k)
			case containment[op]:
				if arr, ok := k.(kind.Array); ok {
					k = arr.Elem
				}
			}
			s.Require(p.Name, k)
			return nil
		}
		if p, ok := e.Left.(*ast.Param); ok && s.free(p.Name) {
			k, err := s.Eval(e.Right)
			if err != nil {
				return err
			}
			if membership[op] {
				if arr, ok := k.(kind.Array); ok {
					k = arr.Elem
				}
			}
			s.Require(p.Name, k)
			return nil
		}
		if err := s.inferCondition(e.Left); err != nil {
			return err
		}
		return s.inferCondition(e.Right)
	}
	return nil
}

// inferCount requires an int for a free LIMIT or START parameter.
func (s *State) inferCount(v ast.Value) error {
	switch e := v.(type) {
	case nil:
		return nil
	case *ast.Param:
		if s.free(e.Name) {
			s.Require(e.Name, kind.Int)
		}
		return nil
	default:
		return s.inferCondition(v)
	}
}
