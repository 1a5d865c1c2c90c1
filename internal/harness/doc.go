// Package harness runs inference scenarios: small schema and query documents
// paired with the return types and parameters they must infer.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: select_users
//	description: "Wildcard select over a schemafull table"
//	files:
//	  - schema.cue
//	  - queries.cue
//	globals:
//	  auth: record<user>
//	assertions:
//	  - type: return_type
//	    index: 0
//	    kind: "array<object{id: record<user>, name: string}>"
//	  - type: variable
//	    name: name
//	    kind: string
//
// Files are resolved relative to the scenario file. A scenario may instead
// carry its document inline under `cue:`.
//
// # Assertion Types
//
//   - return_type: statement Index infers exactly Kind
//   - variable: parameter Name is inferred as Kind
//   - variable_count: exactly Count parameters are inferred
//   - error: inference fails with Code, e.g. UNKNOWN_TABLE
//
// A scenario without an error assertion fails when inference fails.
//
// # Golden Files
//
// RunWithGolden snapshots the inferred kinds under testdata/golden. Kinds are
// rendered in their text form, so the snapshots read like type annotations.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
