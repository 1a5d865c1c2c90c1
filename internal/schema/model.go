package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Relation holds the endpoint constraints of a relation table. An empty
// slice leaves that endpoint unconstrained.
type Relation struct {
	In  []string
	Out []string
}

// Table is one table definition.
type Table struct {
	Name       string
	Schemafull bool
	Relation   *Relation
	Fields     kind.Object
}

// IsRelation reports whether the table is a graph edge.
func (t *Table) IsRelation() bool {
	return t.Relation != nil
}

// Model maps table names to definitions.
type Model struct {
	tables map[string]*Table
}

// New returns an empty model.
func New() *Model {
	return &Model{tables: make(map[string]*Table)}
}

// Build applies definitions in order.
//
// Fails with ErrCodeUnknownTable when a field names a table that has not been
// defined earlier in the list. Relation endpoints are not checked: an edge
// may be declared before the tables it connects.
func Build(defs []ast.Definition) (*Model, error) {
	m := New()
	for _, d := range defs {
		switch def := d.(type) {
		case *ast.DefineTable:
			m.DefineTable(def.Name, def.Schemafull)
			if def.Relation != nil {
				if err := m.DefineRelation(def.Name, def.Relation.In, def.Relation.Out); err != nil {
					return nil, err
				}
			}
		case *ast.DefineField:
			if err := m.DefineField(def.Table, def.Path, def.Type); err != nil {
				return nil, err
			}
		default:
			desc := fmt.Sprintf("%T", d)
			return nil, Unsupported(desc, "unsupported definition %s", desc)
		}
	}
	return m, nil
}

// DefineTable registers a table. Redefining a table keeps its fields.
func (m *Model) DefineTable(name string, schemafull bool) *Table {
	if t, ok := m.tables[name]; ok {
		t.Schemafull = schemafull
		return t
	}
	t := &Table{Name: name, Schemafull: schemafull, Fields: kind.Object{}}
	m.tables[name] = t
	return t
}

// DefineRelation marks a defined table as a relation from in to out.
func (m *Model) DefineRelation(table string, in, out []string) error {
	t, ok := m.tables[table]
	if !ok {
		return UnknownTable(table)
	}
	t.Relation = &Relation{In: slices.Clone(in), Out: slices.Clone(out)}
	return nil
}

// DefineField inserts a field kind at a dotted path.
//
// Intermediate segments create nested objects (or descend into existing
// object and option<object> fields). A "*" segment addresses the elements of
// an array field: `tags.*` sets the element kind, `items.*.name` defines a
// field of the element object.
func (m *Model) DefineField(table string, path []string, k kind.Kind) error {
	t, ok := m.tables[table]
	if !ok {
		return UnknownTable(table)
	}
	if len(path) == 0 {
		return Unsupported(table, "empty field path on table %q", table)
	}
	return defineAt(t.Fields, path, k, strings.Join(path, "."))
}

func defineAt(tree kind.Object, path []string, k kind.Kind, full string) error {
	name := path[0]
	if len(path) == 1 {
		return MergePath(tree, []ast.Part{&ast.Field{Name: name}}, k)
	}

	if path[1] == "*" {
		node, exists := tree[name]
		if !exists {
			return TypeMismatch(full, "field %q must be defined as an array before %q", name, full)
		}
		arr, optional, ok := asArray(node)
		if !ok {
			return TypeMismatch(full, "field %q is %s, not an array", name, node)
		}
		if len(path) == 2 {
			arr.Elem = k
		} else {
			elem, ok := containerObject(arr.Elem)
			if !ok {
				return TypeMismatch(full, "elements of %q are %s, not objects", name, arr.Elem)
			}
			if err := defineAt(elem, path[2:], k, full); err != nil {
				return err
			}
			arr.Elem = elem
		}
		if optional {
			tree[name] = kind.Option{Inner: arr}
		} else {
			tree[name] = arr
		}
		return nil
	}

	node, exists := tree[name]
	if !exists {
		node = kind.Object{}
	}
	obj, ok := containerObject(node)
	if !ok {
		return TypeMismatch(full, "field %q is %s, not an object", name, node)
	}
	if _, optional := node.(kind.Option); !optional {
		tree[name] = obj
	}
	return defineAt(obj, path[1:], k, full)
}

// containerObject returns the object a nested definition descends into.
func containerObject(k kind.Kind) (kind.Object, bool) {
	switch v := k.(type) {
	case kind.Object:
		return v, true
	case kind.Option:
		obj, ok := v.Inner.(kind.Object)
		return obj, ok
	case kind.Scalar:
		if v == kind.Any {
			return kind.Object{}, true
		}
	}
	return nil, false
}

func asArray(k kind.Kind) (arr kind.Array, optional, ok bool) {
	switch v := k.(type) {
	case kind.Array:
		return v, false, true
	case kind.Option:
		if a, isArr := v.Inner.(kind.Array); isArr {
			return a, true, true
		}
	}
	return kind.Array{}, false, false
}

// Table looks up a table definition. The returned table must not be modified.
func (m *Model) Table(name string) (*Table, bool) {
	t, ok := m.tables[name]
	return t, ok
}

// Tables returns all table names in sorted order.
func (m *Model) Tables() []string {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SelectFields returns the row shape of a table: declared fields plus
// `id: record<table>`, and `in`/`out` for relations.
func (m *Model) SelectFields(name string) (kind.Object, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, UnknownTable(name)
	}
	fields := t.Fields.Clone()
	fields["id"] = kind.Rec(name)
	if t.Relation != nil {
		fields["in"] = endpoint(t.Relation.In)
		fields["out"] = endpoint(t.Relation.Out)
	}
	return fields, nil
}

// CreateRequiredFields returns the shape content must have to create a row:
// every declared field required and `id` optional.
func (m *Model) CreateRequiredFields(name string) (kind.Object, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, UnknownTable(name)
	}
	fields := t.Fields.Clone()
	fields["id"] = kind.Optional(kind.Rec(name))
	return fields, nil
}

func endpoint(tables []string) kind.Kind {
	if len(tables) == 0 {
		return kind.Any
	}
	return kind.Rec(slices.Clone(tables)...)
}
