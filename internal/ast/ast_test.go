package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

func TestIdiomString(t *testing.T) {
	tests := []struct {
		name  string
		idiom *Idiom
		want  string
	}{
		{"field path", Path("address", "city"), "address.city"},
		{"wildcard", &Idiom{Parts: []Part{&Field{Name: "tags"}, &All{}}}, "tags.*"},
		{
			"graph",
			&Idiom{Parts: []Part{&Graph{Dir: Out, Tables: []string{"memberOf"}}, &Graph{Dir: Out, Tables: []string{"org"}}}},
			"->memberOf->org",
		},
		{
			"param start",
			&Idiom{Parts: []Part{&Start{Value: &Param{Name: "before"}}, &Field{Name: "name"}}},
			"$before.name",
		},
		{
			"multi table graph",
			&Idiom{Parts: []Part{&Graph{Dir: In, Tables: []string{"a", "b"}}}},
			"<-(a, b)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.idiom.String())
		})
	}
}

func TestIdiomFieldsOnly(t *testing.T) {
	assert.True(t, Path("a", "b").FieldsOnly())
	assert.False(t, (&Idiom{}).FieldsOnly())
	assert.False(t, (&Idiom{Parts: []Part{&Start{Value: &Param{Name: "x"}}}}).FieldsOnly())

	g, ok := (&Idiom{Parts: []Part{&Field{Name: "x"}, &Graph{Dir: Out, Tables: []string{"t"}}}}).LastGraph()
	assert.True(t, ok)
	assert.Equal(t, []string{"t"}, g.Tables)
}

func TestStatementString(t *testing.T) {
	sel := &Select{
		Fields: Fields{Wildcard: true, Items: []Projection{{Expr: Path("name"), Alias: "n"}}},
		What:   []Value{&Table{Name: "user"}},
		Only:   true,
		Where:  &Binary{Op: "=", Left: Path("id"), Right: &Param{Name: "id"}},
		Limit:  &Literal{Kind: LitNumber, Text: "1"},
	}
	assert.Equal(t, "SELECT *, name AS n FROM ONLY user WHERE id = $id LIMIT 1", sel.String())

	rel := &Relate{
		Kind:   &Table{Name: "memberOf"},
		From:   &Param{Name: "user"},
		With:   &Param{Name: "org"},
		Data:   &Content{Value: &Param{Name: "content"}},
		Output: &OutputNone{},
	}
	assert.Equal(t, "RELATE $user->memberOf->$org CONTENT $content RETURN NONE", rel.String())

	del := &Delete{What: []Value{&Table{Name: "user"}}, Output: &OutputBefore{}}
	assert.Equal(t, "DELETE user RETURN BEFORE", del.String())

	sub := &Subquery{Stmt: &Return{Value: Path("name")}}
	assert.Equal(t, "(name)", sub.String())
}

func TestDefinitionString(t *testing.T) {
	tbl := &DefineTable{Name: "memberOf", Schemafull: true, Relation: &RelationDef{In: []string{"user"}, Out: []string{"org"}}}
	assert.Equal(t, "DEFINE TABLE memberOf TYPE RELATION IN user OUT org SCHEMAFULL", tbl.String())

	fld := &DefineField{Table: "user", Path: []string{"address", "city"}, Type: kind.String}
	assert.Equal(t, "DEFINE FIELD address.city ON user TYPE string", fld.String())
}

func TestCheck_Complete(t *testing.T) {
	stmts := []Statement{
		&Select{Fields: Fields{Wildcard: true}, What: []Value{&Table{Name: "user"}}},
		&Create{What: []Value{&Table{Name: "user"}}, Data: &Content{Value: &Param{Name: "u"}}},
	}

	result := Check(stmts)

	assert.True(t, result.Complete)
	assert.Empty(t, result.Gaps)
}

func TestCheck_Gaps(t *testing.T) {
	stmts := []Statement{
		&Update{
			What: []Value{&Table{Name: "user"}},
			Data: &Set{Assignments: []Assignment{{Field: Path("name"), Op: "=", Value: &Param{Name: "name"}}}},
		},
		&Delete{What: []Value{&Table{Name: "user"}}, Output: &OutputDiff{}},
		&Select{
			Fields: Fields{Items: []Projection{{Expr: &Subquery{Stmt: &Insert{Into: &Param{Name: "t"}}}}}},
			What:   []Value{&Table{Name: "user"}},
		},
		nil,
	}

	result := Check(stmts)

	assert.False(t, result.Complete)
	assert.Equal(t, []string{
		"statement 0: SET name: assignment does not contribute parameter types",
		"statement 1: RETURN DIFF is not supported",
		"statement 2: INSERT INTO $t: target is not a table name",
		"statement 3: nil statement",
	}, result.Gaps)
}
