package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

func TestAnalyzeLinksEmpty(t *testing.T) {
	assert.Empty(t, AnalyzeLinks(nil))
}

func TestAnalyzeLinksAcyclic(t *testing.T) {
	defs := []ast.Definition{
		&ast.DefineTable{Name: "user"},
		&ast.DefineField{Table: "user", Path: []string{"org"}, Type: kind.Rec("org")},
		&ast.DefineTable{Name: "org"},
	}
	assert.Empty(t, AnalyzeLinks(defs), "one-way links should produce no cycles")
}

func TestAnalyzeLinksSelfLoop(t *testing.T) {
	defs := []ast.Definition{
		&ast.DefineTable{Name: "user"},
		&ast.DefineField{Table: "user", Path: []string{"friends"}, Type: kind.ArrayOf(kind.Rec("user"))},
	}

	cycles := AnalyzeLinks(defs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"user", "user"}, cycles[0].Path)
	assert.Equal(t, "info", cycles[0].Level)
	assert.Contains(t, cycles[0].Message, "links to itself")
}

func TestAnalyzeLinksTwoTables(t *testing.T) {
	defs := []ast.Definition{
		&ast.DefineTable{Name: "user"},
		&ast.DefineField{Table: "user", Path: []string{"org"}, Type: kind.Optional(kind.Rec("org"))},
		&ast.DefineTable{Name: "org"},
		&ast.DefineField{Table: "org", Path: []string{"owner"}, Type: kind.Object{"who": kind.Rec("user")}},
	}

	cycles := AnalyzeLinks(defs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"org", "user", "org"}, cycles[0].Path)
	assert.Equal(t, "record link cycle: org -> user -> org", cycles[0].Message)
}

func TestAnalyzeLinksThroughRelation(t *testing.T) {
	defs := []ast.Definition{
		&ast.DefineTable{Name: "user"},
		&ast.DefineField{Table: "user", Path: []string{"last"}, Type: kind.Union(kind.Rec("memberOf"), kind.Null)},
		&ast.DefineTable{Name: "org"},
		&ast.DefineTable{Name: "memberOf", Relation: &ast.RelationDef{In: []string{"user"}, Out: []string{"org"}}},
	}

	cycles := AnalyzeLinks(defs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"memberOf", "user", "memberOf"}, cycles[0].Path)
}
