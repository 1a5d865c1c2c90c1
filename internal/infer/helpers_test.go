package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

func table(name string) *ast.Table                { return &ast.Table{Name: name} }
func rid(tb, id string) *ast.RecordID             { return &ast.RecordID{Table: tb, ID: id} }
func param(name string) *ast.Param                { return &ast.Param{Name: name} }
func idiom(parts ...ast.Part) *ast.Idiom          { return &ast.Idiom{Parts: parts} }
func fld(name string) *ast.Field                  { return &ast.Field{Name: name} }
func to(tables ...string) *ast.Graph              { return &ast.Graph{Dir: ast.Out, Tables: tables} }
func from(v ast.Value) *ast.Start                 { return &ast.Start{Value: v} }
func list(items ...ast.Value) *ast.Array          { return &ast.Array{Items: items} }
func str(s string) *ast.Literal                   { return &ast.Literal{Kind: ast.LitString, Text: s} }
func num(s string) *ast.Literal                   { return &ast.Literal{Kind: ast.LitNumber, Text: s} }
func eq(l, r ast.Value) *ast.Binary               { return &ast.Binary{Op: "=", Left: l, Right: r} }
func as(v ast.Value, alias string) ast.Projection { return ast.Projection{Expr: v, Alias: alias} }

func items(exprs ...ast.Value) ast.Fields {
	f := ast.Fields{}
	for _, e := range exprs {
		f.Items = append(f.Items, ast.Projection{Expr: e})
	}
	return f
}

func fieldDef(tb, path string, k kind.Kind) *ast.DefineField {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return &ast.DefineField{Table: tb, Path: append(parts, path[start:]), Type: k}
}

// worksAtSchema mirrors a user/company graph joined by an unconstrained
// works_at relation.
func worksAtSchema(withFields bool) []ast.Definition {
	defs := []ast.Definition{
		&ast.DefineTable{Name: "user", Schemafull: true},
		fieldDef("user", "name", kind.String),
		&ast.DefineTable{Name: "company", Schemafull: true},
		fieldDef("company", "name", kind.String),
		&ast.DefineTable{Name: "works_at", Schemafull: true, Relation: &ast.RelationDef{}},
	}
	if withFields {
		defs = append(defs,
			fieldDef("works_at", "start_date", kind.Datetime),
			fieldDef("works_at", "position", kind.String),
		)
	}
	return defs
}

// memberSchema links users to orgs through memberOf.
func memberSchema() []ast.Definition {
	return []ast.Definition{
		&ast.DefineTable{Name: "user", Schemafull: true},
		fieldDef("user", "name", kind.String),
		fieldDef("user", "email", kind.String),
		&ast.DefineTable{Name: "memberOf", Schemafull: true, Relation: &ast.RelationDef{In: []string{"user"}, Out: []string{"org"}}},
		&ast.DefineTable{Name: "org", Schemafull: true},
		fieldDef("org", "name", kind.String),
		fieldDef("org", "revenue", kind.Float),
	}
}

func userSchema() []ast.Definition {
	return []ast.Definition{
		&ast.DefineTable{Name: "user", Schemafull: true},
		fieldDef("user", "name", kind.String),
		fieldDef("user", "age", kind.Int),
		fieldDef("user", "xyz", kind.Rec("abc")),
		&ast.DefineTable{Name: "abc", Schemafull: true},
		fieldDef("abc", "baz", kind.String),
	}
}

func mustModel(t *testing.T, defs []ast.Definition) *schema.Model {
	t.Helper()
	m, err := schema.Build(defs)
	require.NoError(t, err)
	return m
}

func assertKinds(t *testing.T, want []kind.Kind, got []kind.Kind) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, kind.Equal(want[i], got[i]), "statement %d:\nwant %s\ngot  %s", i, want[i], got[i])
	}
}

func assertVars(t *testing.T, want map[string]kind.Kind, got map[string]kind.Kind) {
	t.Helper()
	require.Len(t, got, len(want), "variables: %v", got)
	for name, k := range want {
		require.Contains(t, got, name)
		assert.True(t, kind.Equal(k, got[name]), "$%s:\nwant %s\ngot  %s", name, k, got[name])
	}
}
