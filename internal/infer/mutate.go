package infer

import (
	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// rowStates are the kinds a mutation exposes as $before and $after, and the
// output produced when no RETURN clause is given.
type rowStates struct {
	before kind.Kind
	after  kind.Kind
	dflt   kind.Kind
}

// contentShape selects how a CONTENT parameter is inferred.
type contentShape int

const (
	// contentSingle requires exactly one object.
	contentSingle contentShape = iota

	// contentBatch accepts one object or an array of them.
	contentBatch
)

func (s *State) inferCreate(st *ast.Create) (kind.Kind, error) {
	table, row, err := s.targetRow(st.What, st.String())
	if err != nil {
		return nil, err
	}
	k, err := s.output(st.Output, row, rowStates{before: kind.Null, after: row, dflt: row})
	if err != nil {
		return nil, err
	}
	if err := s.inferData(table, st.Data, contentSingle); err != nil {
		return nil, err
	}
	return wrap(k, st.Only), nil
}

func (s *State) inferUpdate(st *ast.Update) (kind.Kind, error) {
	table, row, err := s.targetRow(st.What, st.String())
	if err != nil {
		return nil, err
	}
	if err := s.inferRowCondition(row, st.Where); err != nil {
		return nil, err
	}
	k, err := s.output(st.Output, row, rowStates{before: row, after: row, dflt: row})
	if err != nil {
		return nil, err
	}
	if err := s.inferData(table, st.Data, contentSingle); err != nil {
		return nil, err
	}
	return wrap(k, st.Only), nil
}

func (s *State) inferDelete(st *ast.Delete) (kind.Kind, error) {
	_, row, err := s.targetRow(st.What, st.String())
	if err != nil {
		return nil, err
	}
	if err := s.inferRowCondition(row, st.Where); err != nil {
		return nil, err
	}
	k, err := s.output(st.Output, row, rowStates{before: row, after: kind.Null, dflt: kind.Null})
	if err != nil {
		return nil, err
	}
	return wrap(k, st.Only), nil
}

func (s *State) inferInsert(st *ast.Insert) (kind.Kind, error) {
	table, err := ResolveTable(st.Into, s)
	if err != nil {
		return nil, err
	}
	row, err := s.model.SelectFields(table)
	if err != nil {
		return nil, err
	}
	k, err := s.output(st.Output, row, rowStates{before: kind.Null, after: row, dflt: row})
	if err != nil {
		return nil, err
	}
	if err := s.inferData(table, st.Data, contentBatch); err != nil {
		return nil, err
	}
	return kind.ArrayOf(k), nil
}

// targetRow resolves the table of a mutation target list and returns its
// row shape. All targets are assumed to share the first target's table.
func (s *State) targetRow(what []ast.Value, desc string) (string, kind.Object, error) {
	if len(what) == 0 {
		return "", nil, schema.EmptyTargetSet(desc)
	}
	table, err := ResolveTable(what[0], s)
	if err != nil {
		return "", nil, err
	}
	row, err := s.model.SelectFields(table)
	if err != nil {
		return "", nil, err
	}
	return table, row, nil
}

func (s *State) inferRowCondition(row kind.Object, where ast.Value) error {
	if where == nil {
		return nil
	}
	_, err := s.within(map[string]kind.Kind{string(This): row}, func() (kind.Kind, error) {
		return nil, s.inferCondition(where)
	})
	return err
}

// output dispatches on a RETURN clause. Field lists are projected over row
// with $this, $before and $after bound.
func (s *State) output(out ast.Output, row kind.Object, states rowStates) (kind.Kind, error) {
	switch o := out.(type) {
	case nil:
		return states.dflt, nil
	case *ast.OutputAfter:
		return states.after, nil
	case *ast.OutputBefore:
		return states.before, nil
	case *ast.OutputNull, *ast.OutputNone:
		return kind.Null, nil
	case *ast.OutputDiff:
		return nil, schema.Unsupported(o.String(), "RETURN DIFF is not supported")
	case *ast.OutputFields:
		bindings := map[string]kind.Kind{
			string(This):   row,
			string(Before): states.before,
			string(After):  states.after,
		}
		return s.within(bindings, func() (kind.Kind, error) {
			return s.project(row, o.Fields)
		})
	default:
		return nil, schema.Unsupported(out.String(), "unsupported output clause %s", out)
	}
}

// inferData records the parameter kinds a mutation payload requires.
// SET assignments are not analyzed.
func (s *State) inferData(table string, data ast.Data, shape contentShape) error {
	content, ok := data.(*ast.Content)
	if !ok {
		return nil
	}

	create, err := s.model.CreateRequiredFields(table)
	if err != nil {
		return err
	}

	switch v := content.Value.(type) {
	case *ast.Param:
		var k kind.Kind = create
		if shape == contentBatch {
			k = kind.Union(create, kind.ArrayOf(create.Clone()))
		}
		s.Require(v.Name, k)
	case *ast.Object:
		return s.inferEntries(table, create, v)
	case *ast.Array:
		if shape != contentBatch {
			return schema.TypeMismatch(v.String(), "CONTENT on %s takes one object, got an array", table)
		}
		for _, item := range v.Items {
			if obj, ok := item.(*ast.Object); ok {
				if err := s.inferEntries(table, create, obj); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// inferEntries requires `{ field: $param }` parameters to have the field's
// declared kind.
func (s *State) inferEntries(table string, create kind.Object, obj *ast.Object) error {
	for _, entry := range obj.Entries {
		p, ok := entry.Value.(*ast.Param)
		if !ok {
			continue
		}
		k, ok := create[entry.Key]
		if !ok {
			if t, _ := s.model.Table(table); t != nil && t.Schemafull {
				return schema.UnknownField(table, entry.Key)
			}
			k = kind.Any
		}
		s.Require(p.Name, k)
	}
	return nil
}

func wrap(k kind.Kind, only bool) kind.Kind {
	if only {
		return k
	}
	return kind.ArrayOf(k)
}
