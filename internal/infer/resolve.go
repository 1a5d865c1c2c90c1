package infer

import (
	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// ResolveTable returns the table a target expression denotes.
//
// Arrays resolve through their first item. Params must be bound to a
// record, an option<record> or an object with a record `id`; the first table
// of the record wins. Idioms must end in a graph step.
func ResolveTable(expr ast.Value, st *State) (string, error) {
	switch v := expr.(type) {
	case *ast.Table:
		return v.Name, nil

	case *ast.Array:
		if len(v.Items) == 0 {
			return "", schema.EmptyTargetSet(v.String())
		}
		return ResolveTable(v.Items[0], st)

	case *ast.Param:
		bound, ok := st.Lookup(v.Name)
		if !ok {
			return "", schema.UnknownParameter(v.Name)
		}
		if table, ok := recordTable(bound); ok {
			return table, nil
		}
		if obj, ok := bound.(kind.Object); ok {
			if r, ok := obj["id"].(kind.Record); ok && len(r.Tables) > 0 {
				return r.Tables[0], nil
			}
		}
		return "", schema.TypeMismatch(v.String(), "expected record type for param %s, got %s", v, bound)

	case *ast.RecordID:
		return v.Table, nil

	case *ast.Idiom:
		if g, ok := v.LastGraph(); ok && len(g.Tables) > 0 {
			return g.Tables[0], nil
		}
		return "", schema.Unsupported(v.String(), "expected graph traversal to end with a target table: %s", v)

	default:
		desc := "<nil>"
		if expr != nil {
			desc = expr.String()
		}
		return "", schema.TypeMismatch(desc, "expected record type, got %s", desc)
	}
}

// recordTable accepts record<t> and option<record<t>>.
func recordTable(k kind.Kind) (string, bool) {
	switch v := k.(type) {
	case kind.Record:
		if len(v.Tables) > 0 {
			return v.Tables[0], true
		}
	case kind.Option:
		if r, ok := v.Inner.(kind.Record); ok && len(r.Tables) > 0 {
			return r.Tables[0], true
		}
	}
	return "", false
}
