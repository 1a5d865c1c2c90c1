package infer

import (
	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// inferRelate infers RELATE. The result is always an array: either endpoint
// may denote several records, creating one edge per pair.
func (s *State) inferRelate(st *ast.Relate) (kind.Kind, error) {
	relation, err := ResolveTable(st.Kind, s)
	if err != nil {
		return nil, err
	}

	var k kind.Kind
	switch out := st.Output.(type) {
	case nil, *ast.OutputAfter:
		k, err = s.relateFields(st, nil)
	case *ast.OutputBefore, *ast.OutputNull, *ast.OutputNone:
		k = kind.Null
	case *ast.OutputFields:
		k, err = s.relateFields(st, &out.Fields)
	case *ast.OutputDiff:
		err = schema.Unsupported(out.String(), "RELATE with RETURN DIFF is not supported")
	default:
		err = schema.Unsupported(out.String(), "unsupported output clause %s for RELATE", out)
	}
	if err != nil {
		return nil, err
	}

	if err := s.inferData(relation, st.Data, contentBatch); err != nil {
		return nil, err
	}

	return kind.ArrayOf(k), nil
}

// relateFields returns the edge object: declared relation fields plus id, in
// and out taken from the resolved endpoints. A field list is projected with
// $this bound to that object.
func (s *State) relateFields(st *ast.Relate, fields *ast.Fields) (kind.Kind, error) {
	relation, err := ResolveTable(st.Kind, s)
	if err != nil {
		return nil, err
	}
	in, err := ResolveTable(st.From, s)
	if err != nil {
		return nil, err
	}
	out, err := ResolveTable(st.With, s)
	if err != nil {
		return nil, err
	}

	edge, err := s.model.SelectFields(relation)
	if err != nil {
		return nil, err
	}
	edge["id"] = kind.Rec(relation)
	edge["in"] = kind.Rec(in)
	edge["out"] = kind.Rec(out)

	if fields == nil {
		return edge, nil
	}

	bindings := map[string]kind.Kind{
		string(This):   edge,
		string(Before): kind.Null,
		string(After):  edge,
	}
	projected, err := s.within(bindings, func() (kind.Kind, error) {
		return s.project(edge, *fields)
	})
	if err != nil {
		return nil, err
	}
	if _, ok := projected.(kind.Object); !ok && !fields.Single {
		return nil, schema.TypeMismatch(fields.String(), "expected object type for relation fields, got %s", projected)
	}
	return projected, nil
}
