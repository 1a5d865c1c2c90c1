// Package infer computes the result kind of query statements without
// executing them.
//
// One State is created per run over a batch of statements. It references a
// shared, read-only schema.Model, owns a stack of variable scopes and
// accumulates the parameters the caller must supply (required variables).
// Statements are interpreted strictly in order and the first failure aborts
// the batch: a partially inferred result is never returned.
//
// Row contexts bind ambient variables: a SELECT binds $this to the current
// row and $parent to the enclosing row, mutations bind $before and $after.
// Ambient names and caller globals are never reported as required variables.
package infer
