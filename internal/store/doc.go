// Package store provides a SQLite-backed cache of inference runs.
//
// A run records the inferred return types and required variables of one
// query document against one schema. Runs are keyed by an input hash, so
// re-running inference on unchanged inputs is a lookup.
//
// # Critical Patterns
//
// Content-addressed inputs
//   - input_hash is SHA-256 with domain separation over canonical JSON of
//     the schema source, query source and globals (see InputHash)
//   - UNIQUE(input_hash) makes WriteRun idempotent
//
// Logical ordering
//   - Runs are ordered by seq INTEGER, never by created_at
//   - created_at is display-only (history command)
//
// Deterministic encoding
//   - Kinds are stored as canonical JSON (kind.Marshal) so equal results
//     are byte-identical rows
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
