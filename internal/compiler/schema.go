package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// CompileSchema reads the `table` struct of a document into schema
// definitions, one DefineTable per table followed by its DefineFields.
//
//	table: user: {
//		schemafull: true
//		fields: {
//			name:           "string"
//			age?:           int
//			"address.city": "option<string>"
//		}
//	}
//	table: memberOf: relation: {"in": "user", out: ["org"]}
func CompileSchema(v cue.Value) ([]ast.Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := lookup(v, "table")
	if !tablesVal.Exists() {
		return nil, nil
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []ast.Definition
	for iter.Next() {
		tableDefs, err := compileTable(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, tableDefs...)
	}
	return defs, nil
}

func compileTable(name string, v cue.Value) ([]ast.Definition, error) {
	table := &ast.DefineTable{Name: name}

	if sf := lookup(v, "schemafull"); sf.Exists() {
		b, err := sf.Bool()
		if err != nil {
			return nil, &CompileError{
				Field:   "table." + name + ".schemafull",
				Message: "schemafull must be a bool",
				Pos:     sf.Pos(),
			}
		}
		table.Schemafull = b
	}

	if rel := lookup(v, "relation"); rel.Exists() {
		def, err := compileRelation(name, rel)
		if err != nil {
			return nil, err
		}
		table.Relation = def
	}

	defs := []ast.Definition{table}

	fieldsVal := lookup(v, "fields")
	if !fieldsVal.Exists() {
		return defs, nil
	}
	iter, err := fieldsVal.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Label()
		k, err := compileKind("table."+name+".fields."+label, iter.Value())
		if err != nil {
			return nil, err
		}
		if iter.IsOptional() {
			k = kind.Optional(k)
		}
		defs = append(defs, &ast.DefineField{
			Table: name,
			Path:  strings.Split(label, "."),
			Type:  k,
		})
	}
	return defs, nil
}

// compileRelation accepts `relation: true` for an unconstrained edge or a
// struct whose `in` and `out` hold a table name or a list of them.
func compileRelation(table string, v cue.Value) (*ast.RelationDef, error) {
	field := "table." + table + ".relation"
	if b, err := v.Bool(); err == nil {
		if !b {
			return nil, nil
		}
		return &ast.RelationDef{}, nil
	}

	def := &ast.RelationDef{}
	var err error
	if def.In, err = tableNames(field+".in", lookup(v, "in")); err != nil {
		return nil, err
	}
	if def.Out, err = tableNames(field+".out", lookup(v, "out")); err != nil {
		return nil, err
	}
	return def, nil
}

func tableNames(field string, v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a table name or a list of table names", Pos: v.Pos()}
	}
	var names []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "table names must be strings", Pos: list.Value().Pos()}
		}
		names = append(names, s)
	}
	return names, nil
}

// compileKind maps a field value to a kind. Concrete strings are type
// expressions; anything else is read from the CUE type.
func compileKind(field string, v cue.Value) (kind.Kind, error) {
	if v.IncompleteKind() == cue.StringKind && v.IsConcrete() {
		s, _ := v.String()
		k, err := kind.Parse(s)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return k, nil
	}

	if op, args := v.Expr(); op == cue.OrOp {
		var alts []kind.Kind
		for _, arg := range args {
			k, err := compileKind(field, arg)
			if err != nil {
				return nil, err
			}
			alts = append(alts, k)
		}
		return kind.Union(alts...), nil
	}

	switch ck := v.IncompleteKind(); ck {
	case cue.TopKind:
		return kind.Any, nil
	case cue.NullKind:
		return kind.Null, nil
	case cue.BoolKind:
		return kind.Bool, nil
	case cue.IntKind:
		return kind.Int, nil
	case cue.FloatKind:
		return kind.Float, nil
	case cue.NumberKind:
		return kind.Number, nil
	case cue.StringKind:
		return kind.String, nil
	case cue.BytesKind:
		return kind.Bytes, nil
	case cue.ListKind:
		elem := v.LookupPath(cue.MakePath(cue.AnyIndex))
		if !elem.Exists() {
			return kind.ArrayOf(kind.Any), nil
		}
		k, err := compileKind(field+"[]", elem)
		if err != nil {
			return nil, err
		}
		return kind.ArrayOf(k), nil
	case cue.StructKind:
		return compileObject(field, v)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported field type %s", ck),
			Pos:     v.Pos(),
		}
	}
}

func compileObject(field string, v cue.Value) (kind.Kind, error) {
	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}
	obj := kind.Object{}
	for iter.Next() {
		k, err := compileKind(field+"."+iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		if iter.IsOptional() {
			k = kind.Optional(k)
		}
		obj[iter.Label()] = k
	}
	return obj, nil
}

// lookup selects a field by name. Names such as `in` need a quoted
// selector, which cue.ParsePath would otherwise reject.
func lookup(v cue.Value, name string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(name)))
}
