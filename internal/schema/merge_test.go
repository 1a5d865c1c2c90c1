package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

func fields(names ...string) []ast.Part {
	return ast.Path(names...).Parts
}

func TestMergePath_SingleField(t *testing.T) {
	tree := kind.Object{}

	require.NoError(t, MergePath(tree, fields("name"), kind.String))

	assert.True(t, kind.Equal(kind.Object{"name": kind.String}, tree))
}

func TestMergePath_KeepsSiblings(t *testing.T) {
	tree := kind.Object{"id": kind.Rec("user")}

	require.NoError(t, MergePath(tree, fields("address", "city"), kind.String))
	require.NoError(t, MergePath(tree, fields("address", "zip"), kind.Int))

	want := kind.Object{
		"id":      kind.Rec("user"),
		"address": kind.Object{"city": kind.String, "zip": kind.Int},
	}
	assert.True(t, kind.Equal(want, tree), "got %s", tree)
}

func TestMergePath_DoubleOptional(t *testing.T) {
	tree := kind.Object{}
	leaf := kind.Option{Inner: kind.Option{Inner: kind.String}}

	require.NoError(t, MergePath(tree, fields("xyz", "abc"), leaf))

	want := kind.Object{"xyz": kind.Option{Inner: kind.Object{"abc": kind.Option{Inner: kind.String}}}}
	assert.True(t, kind.Equal(want, tree), "got %s", tree)

	var walk func(k kind.Kind)
	walk = func(k kind.Kind) {
		assert.False(t, kind.IsDoubleOptional(k), "double optional in %s", tree)
		switch v := k.(type) {
		case kind.Object:
			for _, f := range v {
				walk(f)
			}
		case kind.Option:
			walk(v.Inner)
		}
	}
	walk(tree)
}

func TestMergePath_Idempotent(t *testing.T) {
	paths := []struct {
		parts []ast.Part
		leaf  kind.Kind
	}{
		{fields("name"), kind.String},
		{fields("address", "city"), kind.String},
		{fields("xyz", "abc"), kind.Option{Inner: kind.Option{Inner: kind.Int}}},
		{[]ast.Part{&ast.All{}, &ast.Field{Name: "orgs"}}, kind.Rec("org")},
	}

	for _, p := range paths {
		tree := kind.Object{}
		require.NoError(t, MergePath(tree, p.parts, p.leaf))
		once := tree.Clone()

		require.NoError(t, MergePath(tree, p.parts, p.leaf))
		assert.True(t, kind.Equal(once, tree), "merging %v twice changed %s to %s", p.parts, once, tree)
	}
}

func TestMergePath_Wildcard(t *testing.T) {
	tree := kind.Object{}

	require.NoError(t, MergePath(tree, []ast.Part{&ast.All{}, &ast.Field{Name: "orgs"}}, kind.Rec("org")))
	require.NoError(t, MergePath(tree, []ast.Part{&ast.All{}}, kind.Int))

	want := kind.Object{
		"orgs": kind.ArrayOf(kind.Rec("org")),
		"*":    kind.ArrayOf(kind.Int),
	}
	assert.True(t, kind.Equal(want, tree), "got %s", tree)
}

func TestMergePath_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		tree  kind.Object
		parts []ast.Part
		leaf  kind.Kind
	}{
		{
			name:  "descend into scalar",
			tree:  kind.Object{"name": kind.String},
			parts: fields("name", "first"),
			leaf:  kind.String,
		},
		{
			name:  "wildcard then dotted path",
			tree:  kind.Object{"xyz": kind.Rec("xyz")},
			parts: fields("xyz", "abc"),
			leaf:  kind.Option{Inner: kind.Option{Inner: kind.String}},
		},
		{
			name:  "plain object under double optional",
			tree:  kind.Object{"xyz": kind.Object{}},
			parts: fields("xyz", "abc"),
			leaf:  kind.Option{Inner: kind.Option{Inner: kind.String}},
		},
		{
			name:  "graph part",
			tree:  kind.Object{},
			parts: []ast.Part{&ast.Graph{Dir: ast.Out, Tables: []string{"memberOf"}}},
			leaf:  kind.Any,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MergePath(tt.tree, tt.parts, tt.leaf)
			require.Error(t, err)
			assert.Equal(t, ErrCodeUnsupported, CodeOf(err))
		})
	}
}

func TestMergePath_EmptyParts(t *testing.T) {
	tree := kind.Object{"a": kind.Int}
	require.NoError(t, MergePath(tree, nil, kind.String))
	assert.Len(t, tree, 1)
}
