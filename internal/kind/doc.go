// Package kind provides the inferred-type algebra used by the inference
// engine.
//
// A Kind is a closed tagged union. Scalars (Null, Bool, Int, Float, Decimal,
// Number, String, Datetime, Duration, Uuid, Bytes, Any) are values of the
// Scalar type; composites are Array, Object, Record, Option and Either.
// Kind is a sealed interface: only types in this package implement it, so
// type switches over Kind are exhaustive.
//
// Kinds form trees. Every composite owns its children exclusively; use Clone
// before handing a Kind that is reachable from shared state (for example the
// schema model) to code that mutates Objects in place.
//
// Option never wraps Option when built through Optional. A raw Option{Option{T}}
// literal is still representable because chained optional field access
// produces it transiently; the projector flattens it (see IsDoubleOptional).
package kind
