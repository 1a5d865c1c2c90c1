// Package ast defines the syntax trees consumed by the inference engine.
//
// Trees are produced by an external parser (in this repository, the CUE
// document compiler in internal/compiler) and are read-only for the engine.
//
// SEALED INTERFACES:
//
// Statement, Value, Part, Data, Output and Definition are sealed interfaces
// using the marker method pattern. Only types in this package implement them,
// which keeps type switches in the interpreters exhaustive:
//
//	switch s := stmt.(type) {
//	case *Select:
//	    // infer select
//	case *Relate:
//	    // infer relate
//	default:
//	    // unsupported construct, reported as an inference gap
//	}
//
// STATEMENTS:
//
//	Select   SELECT <fields> FROM [ONLY] <what> [WHERE] [LIMIT] [START] [FETCH]
//	Create   CREATE [ONLY] <what> [CONTENT|SET] [RETURN]
//	Update   UPDATE [ONLY] <what> [CONTENT|SET] [WHERE] [RETURN]
//	Delete   DELETE [ONLY] <what> [WHERE] [RETURN]
//	Insert   INSERT INTO <table> <data> [RETURN]
//	Relate   RELATE <from> -> <kind> -> <with> [CONTENT|SET] [RETURN]
//	Let      LET $name = <value>
//	Return   RETURN <value>
//
// VALUES:
//
// Table, Array, Param, RecordID, Idiom (field paths and graph traversals),
// Literal, Object, Subquery (a parenthesized statement, which opens a
// $parent scope) and Binary (conditions and arithmetic).
//
// SCHEMA:
//
// DefineTable and DefineField mirror DEFINE TABLE / DEFINE FIELD. Relations
// are tables whose DefineTable carries a RelationDef.
package ast
