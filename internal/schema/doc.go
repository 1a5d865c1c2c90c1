// Package schema holds the table model that inference reads.
//
// A Model is built once from an ordered list of definitions and is read-only
// afterwards, so one Model may be shared by concurrent inference runs. Reads
// that hand kinds to callers (SelectFields, CreateRequiredFields) return deep
// copies; callers may mutate what they receive.
//
// The package also owns the inference error type (Error, ErrorCode) and the
// field-path merge used both for nested field definitions and for query
// projections (MergePath).
package schema
