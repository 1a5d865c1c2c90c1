package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/infer"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

func TestCompileQueries(t *testing.T) {
	v := cuecontext.New().CompileString(`
		queries: [
			{select: "*, ->memberOf->org AS orgs", from: "user", only: true, where: "id = $id", limit: "$n"},
			{create: "user", content: "$user", return: "NONE"},
			{update: "$id", set: {name: "$name"}, where: "age > 3", return: ["id", "name"]},
			{delete: "user:john", return: "before"},
			{insert: "user", content: [{name: "'a'"}]},
			{relate: "memberOf", from: "$user", with: "$org", content: {role: "$role"}, return: "AFTER"},
			{"let": "$x", value: {select: "VALUE name", from: "user"}},
			{return: "$x"},
			{select: [{expr: "name", as: "n"}, "age"], from: ["user", "org"], where: {left: "name", op: "in", right: "$names"}, fetch: "org"},
			{create: "user", only: true, content: {name: "$name", age: 3, active: true, nick: null}},
		]
	`)
	require.NoError(t, v.Err())

	stmts, err := CompileQueries(v)
	require.NoError(t, err)

	want := []string{
		"SELECT *, ->memberOf->org AS orgs FROM ONLY user WHERE id = $id LIMIT $n",
		"CREATE user CONTENT $user RETURN NONE",
		"UPDATE $id SET name = $name WHERE age > 3 RETURN id, name",
		"DELETE user:john RETURN BEFORE",
		`INSERT INTO user CONTENT [{ name: "a" }]`,
		"RELATE $user->memberOf->$org CONTENT { role: $role } RETURN AFTER",
		"LET $x = (SELECT VALUE name FROM user)",
		"RETURN $x",
		"SELECT name AS n, age FROM user, org WHERE name IN $names FETCH org",
		"CREATE ONLY user CONTENT { name: $name, age: 3, active: true, nick: NULL }",
	}
	require.Len(t, stmts, len(want))
	for i, w := range want {
		assert.Equal(t, w, stmts[i].String(), "statement %d", i)
	}
}

func TestCompileQueriesShapes(t *testing.T) {
	v := cuecontext.New().CompileString(`
		queries: [
			{select: "*", from: "user"},
			{select: "name", from: "$id", start: 10},
			{return: {select: "*", from: "user"}},
		]
	`)
	stmts, err := CompileQueries(v)
	require.NoError(t, err)
	require.Len(t, stmts, 3)

	sel, ok := stmts[0].(*ast.Select)
	require.True(t, ok)
	assert.True(t, sel.Fields.Wildcard)
	assert.Equal(t, []ast.Value{&ast.Table{Name: "user"}}, sel.What)

	sel, ok = stmts[1].(*ast.Select)
	require.True(t, ok)
	assert.Equal(t, &ast.Param{Name: "id"}, sel.What[0])
	assert.Equal(t, &ast.Literal{Kind: ast.LitNumber, Text: "10"}, sel.Start)

	ret, ok := stmts[2].(*ast.Return)
	require.True(t, ok)
	sub, ok := ret.Value.(*ast.Subquery)
	require.True(t, ok)
	assert.IsType(t, &ast.Select{}, sub.Stmt)
}

func TestCompileQueriesReturnIsOutputOnMutations(t *testing.T) {
	v := cuecontext.New().CompileString(`
		queries: [{delete: "user", return: "DIFF"}]
	`)
	stmts, err := CompileQueries(v)
	require.NoError(t, err)
	del, ok := stmts[0].(*ast.Delete)
	require.True(t, ok)
	assert.IsType(t, &ast.OutputDiff{}, del.Output)
}

func TestCompileQueriesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown statement", `queries: [{frobnicate: "x"}]`, "queries[0]"},
		{"bad where", `queries: [{select: "*", from: "user", where: "id = "}]`, "queries[0].where"},
		{"missing from", `queries: [{select: "*"}]`, "from is required"},
		{"let without dollar", `queries: [{"let": "x", value: "1"}]`, "parameter name"},
		{"content and set", `queries: [{update: "user", content: "$c", set: {a: "1"}}]`, "mutually exclusive"},
		{"fetch non path", `queries: [{select: "*", from: "user", fetch: "$x"}]`, "field paths"},
		{"value in list", `queries: [{select: ["VALUE name"], from: "user"}]`, "whole field list"},
		{"queries not list", `queries: {a: 1}`, "must be a list"},
		{"binary without right", `queries: [{select: "*", from: "user", where: {left: "a", op: "="}}]`, "right is required"},
		{"only not bool", `queries: [{select: "*", from: "user", only: "yes"}]`, "only must be a bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := cuecontext.New().CompileString(tt.src)
			require.NoError(t, v.Err())
			_, err := CompileQueries(v)
			require.Error(t, err)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileGlobals(t *testing.T) {
	v := cuecontext.New().CompileString(`
		globals: {
			auth:     "record<user>"
			"$token": string
		}
	`)
	globals, err := CompileGlobals(v)
	require.NoError(t, err)
	assert.Equal(t, map[string]kind.Kind{
		"auth":  kind.Rec("user"),
		"token": kind.String,
	}, globals)
}

func TestCompileDocument(t *testing.T) {
	v := cuecontext.New().CompileString(schemaDoc + `
		queries: [{select: "*", from: "user"}]
		globals: auth: "record<user>"
	`)
	doc, err := Compile(v)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Definitions)
	assert.Len(t, doc.Statements, 1)
	assert.Len(t, doc.Globals, 1)
}

func TestCompileParenthesizedFieldBindsParent(t *testing.T) {
	doc, err := Compile(cuecontext.New().CompileString(`
		table: user: {
			schemafull: true
			fields: name: "string"
		}
		queries: [{select: "name, ($parent.name) AS alias", from: "user"}]
	`))
	require.NoError(t, err)
	require.Len(t, doc.Statements, 1)
	assert.Equal(t, "SELECT name, ($parent.name) AS alias FROM user", doc.Statements[0].String())

	res, err := infer.Infer(doc.Definitions, doc.Statements)
	require.NoError(t, err)

	want := kind.ArrayOf(kind.Object{"name": kind.String, "alias": kind.String})
	require.Len(t, res.ReturnTypes, 1)
	assert.True(t, kind.Equal(want, res.ReturnTypes[0]), "got %s", res.ReturnTypes[0])
	assert.Empty(t, res.Variables)
}

func TestCompileParenthesizedConditionInfersParams(t *testing.T) {
	doc, err := Compile(cuecontext.New().CompileString(`
		table: user: {
			schemafull: true
			fields: {
				name: "string"
				age:  "int"
			}
		}
		queries: [{select: "name", from: "user", where: "(age > $min) AND name = $name"}]
	`))
	require.NoError(t, err)

	res, err := infer.Infer(doc.Definitions, doc.Statements)
	require.NoError(t, err)
	assert.Equal(t, map[string]kind.Kind{"min": kind.Int, "name": kind.String}, res.Variables)
}
