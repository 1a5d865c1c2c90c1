package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

func userRow() kind.Object {
	return kind.Object{"id": kind.Rec("user"), "name": kind.String}
}

func simpleUsers() []ast.Definition {
	return []ast.Definition{
		&ast.DefineTable{Name: "user", Schemafull: true},
		fieldDef("user", "name", kind.String),
	}
}

func TestDelete_ReturnBeforeVariable(t *testing.T) {
	stmt := &ast.Delete{
		What:   []ast.Value{table("user")},
		Output: &ast.OutputFields{Fields: items(param("before"))},
	}

	res, err := Infer(simpleUsers(), []ast.Statement{stmt})
	require.NoError(t, err)

	assert.Empty(t, res.Variables, "$before is never required")
	assertKinds(t, []kind.Kind{kind.ArrayOf(kind.Object{"before": userRow()})}, res.ReturnTypes)
}

func TestDelete_ReturnBeforePaths(t *testing.T) {
	stmt := &ast.Delete{
		What: []ast.Value{table("user")},
		Output: &ast.OutputFields{Fields: ast.Fields{Items: []ast.Projection{
			as(idiom(from(param("before")), fld("name")), "alias"),
			as(idiom(from(param("before")), fld("xyz"), fld("baz")), "baz"),
		}}},
	}

	res, err := Infer(userSchema(), []ast.Statement{stmt})
	require.NoError(t, err)

	assert.Empty(t, res.Variables)
	assertKinds(t, []kind.Kind{kind.ArrayOf(kind.Object{"alias": kind.String, "baz": kind.String})}, res.ReturnTypes)
}

func TestDelete_ReturnAfterIsNull(t *testing.T) {
	stmt := &ast.Delete{
		What:   []ast.Value{table("user")},
		Output: &ast.OutputFields{Fields: items(param("after"))},
	}

	res, err := Infer(simpleUsers(), []ast.Statement{stmt})
	require.NoError(t, err)

	assert.Empty(t, res.Variables)
	assertKinds(t, []kind.Kind{kind.ArrayOf(kind.Object{"after": kind.Null})}, res.ReturnTypes)
}

func TestMutation_OutputDispatch(t *testing.T) {
	target := []ast.Value{table("user")}
	tests := []struct {
		name string
		stmt ast.Statement
		want kind.Kind
	}{
		{"create default", &ast.Create{What: target}, kind.ArrayOf(userRow())},
		{"create before", &ast.Create{What: target, Output: &ast.OutputBefore{}}, kind.ArrayOf(kind.Null)},
		{"create only none", &ast.Create{What: target, Only: true, Output: &ast.OutputNone{}}, kind.Null},
		{"update default", &ast.Update{What: []ast.Value{rid("user", "john")}}, kind.ArrayOf(userRow())},
		{"update only before", &ast.Update{What: []ast.Value{rid("user", "john")}, Only: true, Output: &ast.OutputBefore{}}, userRow()},
		{"delete default", &ast.Delete{What: target}, kind.ArrayOf(kind.Null)},
		{"delete before", &ast.Delete{What: target, Output: &ast.OutputBefore{}}, kind.ArrayOf(userRow())},
		{"delete null", &ast.Delete{What: target, Output: &ast.OutputNull{}}, kind.ArrayOf(kind.Null)},
		{"insert default", &ast.Insert{Into: table("user")}, kind.ArrayOf(userRow())},
		{"insert fields", &ast.Insert{Into: table("user"), Output: &ast.OutputFields{Fields: items(ast.Path("name"))}}, kind.ArrayOf(kind.Object{"name": kind.String})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Infer(simpleUsers(), []ast.Statement{tt.stmt})
			require.NoError(t, err)
			assertKinds(t, []kind.Kind{tt.want}, res.ReturnTypes)
		})
	}
}

func TestMutation_Diff(t *testing.T) {
	stmts := []ast.Statement{
		&ast.Create{What: []ast.Value{table("user")}, Output: &ast.OutputDiff{}},
		&ast.Update{What: []ast.Value{table("user")}, Output: &ast.OutputDiff{}},
		&ast.Delete{What: []ast.Value{table("user")}, Output: &ast.OutputDiff{}},
		&ast.Insert{Into: table("user"), Output: &ast.OutputDiff{}},
	}

	for _, stmt := range stmts {
		_, err := Infer(simpleUsers(), []ast.Statement{stmt})
		require.Error(t, err)
		assert.True(t, schema.IsUnsupported(err), "%s: %v", stmt, err)
	}
}

func TestMutation_ContentParameters(t *testing.T) {
	create := kind.Object{"id": kind.Option{Inner: kind.Rec("user")}, "name": kind.String}
	stmts := []ast.Statement{
		&ast.Create{What: []ast.Value{table("user")}, Data: &ast.Content{Value: param("user")}},
		&ast.Update{
			What:  []ast.Value{table("user")},
			Data:  &ast.Content{Value: &ast.Object{Entries: []ast.ObjectEntry{{Key: "name", Value: param("name")}}}},
			Where: eq(ast.Path("id"), param("id")),
		},
		&ast.Insert{Into: table("user"), Data: &ast.Content{Value: param("rows")}},
		&ast.Update{
			What: []ast.Value{table("user")},
			Data: &ast.Set{Assignments: []ast.Assignment{{Field: ast.Path("name"), Op: "=", Value: param("ignored")}}},
		},
	}

	res, err := Infer(simpleUsers(), stmts)
	require.NoError(t, err)

	assertVars(t, map[string]kind.Kind{
		"user": create,
		"name": kind.String,
		"id":   kind.Rec("user"),
		"rows": kind.Either{Alts: []kind.Kind{create, kind.ArrayOf(create)}},
	}, res.Variables)
}

func TestMutation_ContentErrors(t *testing.T) {
	unknownKey := &ast.Create{
		What: []ast.Value{table("user")},
		Data: &ast.Content{Value: &ast.Object{Entries: []ast.ObjectEntry{{Key: "nope", Value: param("x")}}}},
	}
	arrayContent := &ast.Create{
		What: []ast.Value{table("user")},
		Data: &ast.Content{Value: list(&ast.Object{})},
	}

	_, err := Infer(simpleUsers(), []ast.Statement{unknownKey})
	assert.Equal(t, schema.ErrCodeUnknownField, schema.CodeOf(err))

	_, err = Infer(simpleUsers(), []ast.Statement{arrayContent})
	assert.Equal(t, schema.ErrCodeTypeMismatch, schema.CodeOf(err))
}

func TestMutation_SchemalessContentKeys(t *testing.T) {
	defs := []ast.Definition{&ast.DefineTable{Name: "log"}}
	stmt := &ast.Create{
		What: []ast.Value{table("log")},
		Data: &ast.Content{Value: &ast.Object{Entries: []ast.ObjectEntry{{Key: "msg", Value: param("msg")}}}},
	}

	res, err := Infer(defs, []ast.Statement{stmt})
	require.NoError(t, err)

	assertVars(t, map[string]kind.Kind{"msg": kind.Any}, res.Variables)
}

func TestMutation_TargetFromParameter(t *testing.T) {
	stmt := &ast.Update{What: []ast.Value{param("me")}, Only: true}

	res, err := Infer(simpleUsers(), []ast.Statement{stmt},
		WithGlobals(map[string]kind.Kind{"me": kind.Option{Inner: kind.Rec("user")}}))
	require.NoError(t, err)

	assertKinds(t, []kind.Kind{userRow()}, res.ReturnTypes)
	assert.Empty(t, res.Variables)
}
