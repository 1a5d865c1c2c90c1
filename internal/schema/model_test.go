package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

func graphDefs() []ast.Definition {
	return []ast.Definition{
		&ast.DefineTable{Name: "user", Schemafull: true},
		&ast.DefineField{Table: "user", Path: []string{"name"}, Type: kind.String},
		&ast.DefineField{Table: "user", Path: []string{"email"}, Type: kind.String},
		&ast.DefineTable{Name: "memberOf", Schemafull: true, Relation: &ast.RelationDef{In: []string{"user"}, Out: []string{"org"}}},
		&ast.DefineTable{Name: "org", Schemafull: true},
		&ast.DefineField{Table: "org", Path: []string{"name"}, Type: kind.String},
		&ast.DefineField{Table: "org", Path: []string{"revenue"}, Type: kind.Float},
	}
}

func TestBuild_SelectFields(t *testing.T) {
	m, err := Build(graphDefs())
	require.NoError(t, err)

	user, err := m.SelectFields("user")
	require.NoError(t, err)
	assert.True(t, kind.Equal(kind.Object{
		"id":    kind.Rec("user"),
		"name":  kind.String,
		"email": kind.String,
	}, user), "got %s", user)

	edge, err := m.SelectFields("memberOf")
	require.NoError(t, err)
	assert.True(t, kind.Equal(kind.Object{
		"id":  kind.Rec("memberOf"),
		"in":  kind.Rec("user"),
		"out": kind.Rec("org"),
	}, edge), "got %s", edge)

	assert.Equal(t, []string{"memberOf", "org", "user"}, m.Tables())

	tbl, ok := m.Table("memberOf")
	require.True(t, ok)
	assert.True(t, tbl.IsRelation())
	assert.True(t, tbl.Schemafull)
}

func TestBuild_UnconstrainedRelation(t *testing.T) {
	m, err := Build([]ast.Definition{
		&ast.DefineTable{Name: "works_at", Relation: &ast.RelationDef{}},
	})
	require.NoError(t, err)

	edge, err := m.SelectFields("works_at")
	require.NoError(t, err)
	assert.Equal(t, kind.Any, edge["in"])
	assert.Equal(t, kind.Any, edge["out"])
}

func TestBuild_UnknownTable(t *testing.T) {
	_, err := Build([]ast.Definition{
		&ast.DefineField{Table: "ghost", Path: []string{"name"}, Type: kind.String},
	})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownTable, CodeOf(err))

	m := New()
	_, err = m.SelectFields("ghost")
	assert.Equal(t, ErrCodeUnknownTable, CodeOf(err))
	_, err = m.CreateRequiredFields("ghost")
	assert.Equal(t, ErrCodeUnknownTable, CodeOf(err))
	assert.Equal(t, ErrCodeUnknownTable, CodeOf(m.DefineRelation("ghost", nil, nil)))
}

func TestDefineField_NestedPaths(t *testing.T) {
	tests := []struct {
		name string
		defs [][]any
		want kind.Kind
	}{
		{
			name: "dotted object",
			defs: [][]any{{"address.city", kind.String}, {"address.zip", kind.Int}},
			want: kind.Object{"city": kind.String, "zip": kind.Int},
		},
		{
			name: "declared object then fields",
			defs: [][]any{{"address", kind.Object{}}, {"address.city", kind.String}},
			want: kind.Object{"city": kind.String},
		},
		{
			name: "optional object",
			defs: [][]any{{"address", kind.Optional(kind.Object{})}, {"address.city", kind.String}},
			want: kind.Option{Inner: kind.Object{"city": kind.String}},
		},
		{
			name: "array element",
			defs: [][]any{{"address", kind.ArrayOf(kind.Any)}, {"address.*", kind.String}},
			want: kind.ArrayOf(kind.String),
		},
		{
			name: "array element fields",
			defs: [][]any{{"address", kind.ArrayOf(kind.Object{})}, {"address.*.city", kind.String}},
			want: kind.ArrayOf(kind.Object{"city": kind.String}),
		},
		{
			name: "optional array element",
			defs: [][]any{{"address", kind.Optional(kind.ArrayOf(kind.Any))}, {"address.*", kind.Rec("city")}},
			want: kind.Option{Inner: kind.ArrayOf(kind.Rec("city"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.DefineTable("user", true)
			for _, d := range tt.defs {
				path := splitPath(d[0].(string))
				require.NoError(t, m.DefineField("user", path, d[1].(kind.Kind)))
			}
			fields, err := m.SelectFields("user")
			require.NoError(t, err)
			assert.True(t, kind.Equal(tt.want, fields["address"]), "got %s", fields["address"])
		})
	}
}

func TestDefineField_ShapeErrors(t *testing.T) {
	m := New()
	m.DefineTable("user", true)
	require.NoError(t, m.DefineField("user", []string{"name"}, kind.String))

	err := m.DefineField("user", []string{"name", "first"}, kind.String)
	assert.Equal(t, ErrCodeTypeMismatch, CodeOf(err))

	err = m.DefineField("user", []string{"name", "*"}, kind.String)
	assert.Equal(t, ErrCodeTypeMismatch, CodeOf(err))

	err = m.DefineField("user", []string{"tags", "*"}, kind.String)
	assert.Equal(t, ErrCodeTypeMismatch, CodeOf(err))

	err = m.DefineField("user", nil, kind.String)
	assert.Equal(t, ErrCodeUnsupported, CodeOf(err))
}

func TestCreateRequiredFields(t *testing.T) {
	m := New()
	m.DefineTable("works_at", true)
	require.NoError(t, m.DefineRelation("works_at", nil, nil))
	require.NoError(t, m.DefineField("works_at", []string{"start_date"}, kind.Datetime))
	require.NoError(t, m.DefineField("works_at", []string{"position"}, kind.String))

	fields, err := m.CreateRequiredFields("works_at")
	require.NoError(t, err)
	assert.True(t, kind.Equal(kind.Object{
		"id":         kind.Option{Inner: kind.Rec("works_at")},
		"start_date": kind.Datetime,
		"position":   kind.String,
	}, fields), "got %s", fields)
}

func TestSelectFields_ReturnsCopy(t *testing.T) {
	m := New()
	m.DefineTable("user", true)
	require.NoError(t, m.DefineField("user", []string{"address", "city"}, kind.String))

	fields, err := m.SelectFields("user")
	require.NoError(t, err)
	fields["address"].(kind.Object)["city"] = kind.Int
	delete(fields, "id")

	again, err := m.SelectFields("user")
	require.NoError(t, err)
	assert.Equal(t, kind.String, again["address"].(kind.Object)["city"])
	assert.Contains(t, again, "id")
}

func TestRedefineTableKeepsFields(t *testing.T) {
	m := New()
	m.DefineTable("user", false)
	require.NoError(t, m.DefineField("user", []string{"name"}, kind.String))
	tbl := m.DefineTable("user", true)

	assert.True(t, tbl.Schemafull)
	assert.Contains(t, tbl.Fields, "name")
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("statement 2: %w", UnknownParameter("auth"))

	assert.Equal(t, ErrCodeUnknownParameter, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, "UNKNOWN_PARAMETER: unknown parameter $auth", UnknownParameter("auth").Error())
	assert.True(t, IsUnsupported(fmt.Errorf("x: %w", Unsupported("DIFF", "diff"))))
}

func splitPath(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
