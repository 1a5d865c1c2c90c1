package ast

import (
	"strings"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Definition is a schema statement.
//
// This is a sealed interface - only types in this package implement it.
type Definition interface {
	definitionNode() // Marker method - seals interface to this package
	String() string
}

// RelationDef constrains the endpoints of a relation table. Empty slices
// leave the endpoint unconstrained.
type RelationDef struct {
	In  []string
	Out []string
}

// DefineTable is DEFINE TABLE.
type DefineTable struct {
	Name       string
	Schemafull bool
	Relation   *RelationDef
}

func (*DefineTable) definitionNode() {}

func (d *DefineTable) String() string {
	var b strings.Builder
	b.WriteString("DEFINE TABLE ")
	b.WriteString(d.Name)
	if d.Relation != nil {
		b.WriteString(" TYPE RELATION")
		if len(d.Relation.In) > 0 {
			b.WriteString(" IN ")
			b.WriteString(strings.Join(d.Relation.In, " | "))
		}
		if len(d.Relation.Out) > 0 {
			b.WriteString(" OUT ")
			b.WriteString(strings.Join(d.Relation.Out, " | "))
		}
	}
	if d.Schemafull {
		b.WriteString(" SCHEMAFULL")
	}
	return b.String()
}

// DefineField is DEFINE FIELD. Path is the dotted field path split into
// segments; a "*" segment addresses array elements.
type DefineField struct {
	Table string
	Path  []string
	Type  kind.Kind
}

func (*DefineField) definitionNode() {}

func (d *DefineField) String() string {
	return "DEFINE FIELD " + strings.Join(d.Path, ".") + " ON " + d.Table + " TYPE " + d.Type.String()
}
